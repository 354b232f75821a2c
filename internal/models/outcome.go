package models

import "time"

// OriginLayer identifies which layer of the pipeline produced an outcome.
type OriginLayer string

const (
	OriginWhitelist OriginLayer = "whitelist"
	OriginBlacklist OriginLayer = "blacklist"
	OriginRule      OriginLayer = "rule"
	OriginCascade   OriginLayer = "cascade"
	OriginCrowd     OriginLayer = "crowd"
)

// Outcome is the classification verdict for one piece of content.
type Outcome struct {
	Category   string      `json:"category"`
	RiskScore  float64     `json:"risk_score"`
	IsScam     bool        `json:"is_scam"`
	Confidence float64     `json:"confidence"`
	Origin     OriginLayer `json:"origin"`
}

// CacheEntry is the verdict payload stored in the fast cache, namespaced by
// request source. It carries the originating request id so public-source
// cache hits stay idempotent.
type CacheEntry struct {
	RequestID   string    `json:"request_id"`
	Fingerprint string    `json:"fingerprint"`
	Outcome     Outcome   `json:"outcome"`
	Reason      string    `json:"reason"`
	Advice      string    `json:"advice"`
	CreatedAt   time.Time `json:"created_at"`
}
