package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"scamshield/internal/models"
)

// Key layout: ss:verdict:<source>:<fingerprint>. Entries are namespaced by
// request source because quota accounting differs per source even for
// identical content.
const keyPrefix = "ss:verdict:"

// VerdictCache is the tier-1 fast cache. Every operation fails open: a
// broken or unreachable redis degrades to "always miss" and the pipeline
// carries on.
type VerdictCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a verdict cache against the given redis instance.
func New(addr, password string, db int, ttl time.Duration, logger *zap.Logger) *VerdictCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &VerdictCache{rdb: rdb, ttl: ttl, logger: logger}
}

// Get returns the cached entry for (source, fingerprint), or a miss.
func (c *VerdictCache) Get(ctx context.Context, source, fp string) (*models.CacheEntry, bool) {
	raw, err := c.rdb.Get(ctx, key(source, fp)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("Cache get failed, treating as miss", zap.Error(err))
		return nil, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.logger.Warn("Cache entry unmarshal failed, treating as miss", zap.Error(err))
		return nil, false
	}
	return &entry, true
}

// Set stores the entry best-effort. Last writer wins on identical
// fingerprints; outcomes for the same canonical text are deterministic
// modulo the cascade, which is tolerated.
func (c *VerdictCache) Set(ctx context.Context, source string, entry *models.CacheEntry) {
	raw, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn("Cache entry marshal failed", zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key(source, entry.Fingerprint), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Cache set failed", zap.Error(err))
	}
}

// Ping reports cache reachability for the health endpoint.
func (c *VerdictCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func key(source, fp string) string {
	return keyPrefix + source + ":" + fp
}
