package entitylist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Snapshot is an immutable view of the whitelist and blacklist handed to
// each classification call. Request-handling code never mutates it; the
// promotion job publishes a new snapshot instead.
type Snapshot struct {
	Version   uint64
	whitelist []string
	blacklist []string
	whiteSet  map[string]struct{}
	blackSet  map[string]struct{}
}

// MatchWhitelist returns the first whitelist literal contained in the
// lowercased text.
func (s *Snapshot) MatchWhitelist(lowered string) (string, bool) {
	for _, literal := range s.whitelist {
		if strings.Contains(lowered, literal) {
			return literal, true
		}
	}
	return "", false
}

// MatchBlacklist returns the first blacklist literal contained in the
// lowercased text.
func (s *Snapshot) MatchBlacklist(lowered string) (string, bool) {
	for _, literal := range s.blacklist {
		if strings.Contains(lowered, literal) {
			return literal, true
		}
	}
	return "", false
}

// InWhitelist reports exact membership, used as the promotion guard.
func (s *Snapshot) InWhitelist(literal string) bool {
	_, ok := s.whiteSet[strings.ToLower(strings.TrimSpace(literal))]
	return ok
}

// InBlacklist reports exact membership, used for idempotent promotion.
func (s *Snapshot) InBlacklist(literal string) bool {
	_, ok := s.blackSet[strings.ToLower(strings.TrimSpace(literal))]
	return ok
}

// Whitelist returns a copy of the whitelist literals in declaration order.
func (s *Snapshot) Whitelist() []string { return append([]string(nil), s.whitelist...) }

// Blacklist returns a copy of the blacklist literals in declaration order.
func (s *Snapshot) Blacklist() []string { return append([]string(nil), s.blacklist...) }

// Store owns the entity list files and the current snapshot. Reads are
// lock-free after Snapshot(); AppendBlacklist and Reload swap in a new
// snapshot with a bumped version so concurrent readers never observe a
// partially-written list.
type Store struct {
	whitelistPath string
	blacklistPath string
	logger        *zap.Logger

	mu      sync.RWMutex
	current *Snapshot
}

// NewStore loads both list files and returns a ready store. A missing file
// is treated as an empty list so fresh deployments start clean.
func NewStore(whitelistPath, blacklistPath string, logger *zap.Logger) (*Store, error) {
	s := &Store{
		whitelistPath: whitelistPath,
		blacklistPath: blacklistPath,
		logger:        logger,
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot returns the current immutable snapshot.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Reload re-reads both files and publishes a fresh snapshot.
func (s *Store) Reload() error {
	whitelist, err := loadListFile(s.whitelistPath)
	if err != nil {
		return fmt.Errorf("failed to load whitelist: %w", err)
	}
	blacklist, err := loadListFile(s.blacklistPath)
	if err != nil {
		return fmt.Errorf("failed to load blacklist: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	version := uint64(1)
	if s.current != nil {
		version = s.current.Version + 1
	}
	s.current = newSnapshot(version, whitelist, blacklist)
	s.logger.Info("Entity lists loaded",
		zap.Uint64("version", version),
		zap.Int("whitelist", len(whitelist)),
		zap.Int("blacklist", len(blacklist)))
	return nil
}

// AppendBlacklist appends new literals to the blacklist file in one write
// and publishes a new snapshot. Callers are expected to have filtered
// whitelisted and already-blacklisted entries; duplicates are dropped here
// as a second line of defense.
func (s *Store) AppendBlacklist(entries []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fresh []string
	for _, entry := range entries {
		literal := strings.ToLower(strings.TrimSpace(entry))
		if literal == "" {
			continue
		}
		if _, ok := s.current.whiteSet[literal]; ok {
			continue
		}
		if _, ok := s.current.blackSet[literal]; ok {
			continue
		}
		fresh = append(fresh, literal)
	}
	if len(fresh) == 0 {
		return nil
	}

	f, err := os.OpenFile(s.blacklistPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open blacklist for append: %w", err)
	}
	defer f.Close()

	// Single write keeps the append atomic for line-oriented readers.
	if _, err := f.WriteString(strings.Join(fresh, "\n") + "\n"); err != nil {
		return fmt.Errorf("failed to append blacklist entries: %w", err)
	}

	blacklist := append(append([]string(nil), s.current.blacklist...), fresh...)
	s.current = newSnapshot(s.current.Version+1, s.current.whitelist, blacklist)
	s.logger.Info("Blacklist extended",
		zap.Uint64("version", s.current.Version),
		zap.Int("appended", len(fresh)))
	return nil
}

// NewSnapshot builds a standalone snapshot from literal slices, normalizing
// each entry the same way the file loader does.
func NewSnapshot(version uint64, whitelist, blacklist []string) *Snapshot {
	return newSnapshot(version, normalize(whitelist), normalize(blacklist))
}

func normalize(entries []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		literal := strings.ToLower(strings.TrimSpace(entry))
		if literal == "" {
			continue
		}
		if _, ok := seen[literal]; ok {
			continue
		}
		seen[literal] = struct{}{}
		out = append(out, literal)
	}
	return out
}

func newSnapshot(version uint64, whitelist, blacklist []string) *Snapshot {
	snap := &Snapshot{
		Version:   version,
		whitelist: whitelist,
		blacklist: blacklist,
		whiteSet:  make(map[string]struct{}, len(whitelist)),
		blackSet:  make(map[string]struct{}, len(blacklist)),
	}
	for _, literal := range whitelist {
		snap.whiteSet[literal] = struct{}{}
	}
	for _, literal := range blacklist {
		snap.blackSet[literal] = struct{}{}
	}
	return snap
}

// loadListFile reads one lowercase literal per line, skipping blanks and
// "#" comments. Order is preserved, duplicates dropped.
func loadListFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var entries []string
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		entries = append(entries, line)
	}
	return entries, scanner.Err()
}
