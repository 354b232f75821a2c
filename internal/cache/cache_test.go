package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"scamshield/internal/models"
)

func TestKeyIsNamespacedBySource(t *testing.T) {
	fp := "abc123"
	assert.Equal(t, "ss:verdict:public:abc123", key(models.SourcePublic, fp))
	assert.Equal(t, "ss:verdict:partner:abc123", key(models.SourcePartner, fp))
	assert.NotEqual(t, key(models.SourcePublic, fp), key(models.SourcePartner, fp))
}

func TestUnavailableRedisFailsOpen(t *testing.T) {
	// Nothing listens on this port; get and set must degrade, not error.
	c := New("127.0.0.1:1", "", 0, time.Minute, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	entry, ok := c.Get(ctx, models.SourcePublic, "deadbeef")
	assert.False(t, ok)
	assert.Nil(t, entry)

	// Set must not panic or block past the context.
	c.Set(ctx, models.SourcePublic, &models.CacheEntry{
		RequestID:   "req-1",
		Fingerprint: "deadbeef",
		Outcome:     models.Outcome{Category: "safe"},
		CreatedAt:   time.Now(),
	})

	assert.Error(t, c.Ping(ctx))
}
