package promoter

import (
	"regexp"
	"strings"
)

// Candidate entities are phone-number-like and URL-like substrings pulled
// from confirmed scam content.
var (
	phonePattern = regexp.MustCompile(`0\d{1,2}[- ]?\d{3}[- ]?\d{3,4}`)
	urlPattern   = regexp.MustCompile(`(?i)(https?://[^\s]+|www\.[^\s]+|[a-z0-9-]+\.(?:com|net|info|xyz|top|online|shop|app|cc)(?:/[^\s]*)?)`)
)

// extractEntities returns normalized phone and URL candidates found in the
// content, de-duplicated and in order of appearance.
func extractEntities(content string) []string {
	lowered := strings.ToLower(content)

	var out []string
	seen := make(map[string]struct{})
	add := func(entity string) {
		if entity == "" {
			return
		}
		if _, ok := seen[entity]; ok {
			return
		}
		seen[entity] = struct{}{}
		out = append(out, entity)
	}

	for _, match := range phonePattern.FindAllString(lowered, -1) {
		add(normalizePhone(match))
	}
	for _, match := range urlPattern.FindAllString(lowered, -1) {
		add(normalizeURL(match))
	}
	return out
}

func normalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, phone)
}

func normalizeURL(url string) string {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	return strings.TrimRight(url, ".,;:!?)\"'")
}
