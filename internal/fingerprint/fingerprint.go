package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"scamshield/internal/models"
)

// DefaultMaxLength caps canonical text before hashing. Inputs that differ
// only beyond the cap fingerprint identically; that collision is accepted.
const DefaultMaxLength = 4000

// Service canonicalizes content and hashes it into a stable fingerprint.
type Service struct {
	maxLength int
}

// NewService creates a fingerprint service with the given canonical length
// cap (runes). Non-positive caps fall back to DefaultMaxLength.
func NewService(maxLength int) *Service {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Service{maxLength: maxLength}
}

// Canonicalize strips NUL and non-printable runes (newline and tab survive),
// trims surrounding whitespace and caps the length. Empty results are
// rejected so downstream layers never score blank content.
func (s *Service) Canonicalize(text string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, text)

	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "", fmt.Errorf("%w: empty text after canonicalization", models.ErrInvalidInput)
	}

	runes := []rune(cleaned)
	if len(runes) > s.maxLength {
		cleaned = string(runes[:s.maxLength])
	}
	return cleaned, nil
}

// Fingerprint returns the canonical form of text and its hex digest.
// Identical canonical text always yields the identical fingerprint.
func (s *Service) Fingerprint(text string) (canonical string, fp string, err error) {
	canonical, err = s.Canonicalize(text)
	if err != nil {
		return "", "", err
	}
	sum := sha256.Sum256([]byte(canonical))
	return canonical, hex.EncodeToString(sum[:]), nil
}
