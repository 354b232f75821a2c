package entitylist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeList(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestStore(t *testing.T, whitelist, blacklist string) *Store {
	t.Helper()
	dir := t.TempDir()
	wPath := writeList(t, dir, "whitelist.txt", whitelist)
	bPath := writeList(t, dir, "blacklist.txt", blacklist)
	store, err := NewStore(wPath, bPath, zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestLoadSkipsCommentsAndDuplicates(t *testing.T) {
	store := newTestStore(t, "# trusted senders\nkbank.co.th\n\nKBANK.CO.TH\n", "081-111-2222\n")

	snap := store.Snapshot()
	assert.Equal(t, []string{"kbank.co.th"}, snap.Whitelist())
	assert.Equal(t, []string{"081-111-2222"}, snap.Blacklist())
	assert.Equal(t, uint64(1), snap.Version)
}

func TestMatchSubstring(t *testing.T) {
	store := newTestStore(t, "ธนาคารกสิกรไทย\n", "089-123-4567\n")
	snap := store.Snapshot()

	literal, ok := snap.MatchBlacklist("ด่วน โอนเงินด่วน 089-123-4567")
	assert.True(t, ok)
	assert.Equal(t, "089-123-4567", literal)

	_, ok = snap.MatchWhitelist("ข้อความจาก ธนาคารกสิกรไทย ถึงลูกค้า")
	assert.True(t, ok)

	_, ok = snap.MatchBlacklist("ข้อความปกติ")
	assert.False(t, ok)
}

func TestAppendBlacklistBumpsVersion(t *testing.T) {
	store := newTestStore(t, "safe.example.com\n", "bad.example.com\n")
	before := store.Snapshot()

	err := store.AppendBlacklist([]string{"evil.example.xyz", "BAD.example.com", "safe.example.com", " "})
	require.NoError(t, err)

	after := store.Snapshot()
	assert.Equal(t, before.Version+1, after.Version)
	// Whitelisted and already-known literals were dropped.
	assert.Equal(t, []string{"bad.example.com", "evil.example.xyz"}, after.Blacklist())
	assert.True(t, after.InBlacklist("evil.example.xyz"))
	assert.False(t, after.InBlacklist("safe.example.com"))

	// Old snapshot stays untouched for in-flight readers.
	assert.Equal(t, []string{"bad.example.com"}, before.Blacklist())

	// The append survives a reload from disk.
	require.NoError(t, store.Reload())
	assert.Equal(t, []string{"bad.example.com", "evil.example.xyz"}, store.Snapshot().Blacklist())
}

func TestAppendNothingKeepsVersion(t *testing.T) {
	store := newTestStore(t, "", "bad.example.com\n")
	before := store.Snapshot().Version

	require.NoError(t, store.AppendBlacklist([]string{"bad.example.com"}))
	assert.Equal(t, before, store.Snapshot().Version)
}

func TestMissingFilesMeanEmptyLists(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "none-w.txt"), filepath.Join(dir, "none-b.txt"), zap.NewNop())
	require.NoError(t, err)

	snap := store.Snapshot()
	assert.Empty(t, snap.Whitelist())
	assert.Empty(t, snap.Blacklist())
}
