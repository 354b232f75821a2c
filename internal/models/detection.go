package models

import "time"

// Request sources. Partner traffic is billed per request, so cache hits for
// partners still create a DetectionRecord.
const (
	SourcePublic  = "public"
	SourcePartner = "partner"
)

// DetectionRecord is the durable, append-only record of one decision.
// Only the feedback metadata column is ever touched after insert.
type DetectionRecord struct {
	ID           int64       `db:"id" json:"id"`
	RequestID    string      `db:"request_id" json:"request_id"`
	Fingerprint  string      `db:"fingerprint" json:"fingerprint"`
	Source       string      `db:"source" json:"source"`
	Channel      *string     `db:"channel" json:"channel,omitempty"`
	PartnerID    *string     `db:"partner_id" json:"partner_id,omitempty"`
	Category     string      `db:"category" json:"category"`
	RiskScore    float64     `db:"risk_score" json:"risk_score"`
	IsScam       bool        `db:"is_scam" json:"is_scam"`
	Origin       OriginLayer `db:"origin_layer" json:"origin_layer"`
	Reason       string      `db:"reason" json:"reason"`
	Advice       string      `db:"advice" json:"advice"`
	ModelVersion string      `db:"model_version" json:"model_version"`
	Feedback     *string     `db:"feedback" json:"feedback,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
}

// TrainingExample stores the raw content alongside its label for model
// retraining. The label flips at most once, on the first "incorrect"
// feedback; a "verified_" prefix on the label marks human review.
type TrainingExample struct {
	ID        int64     `db:"id" json:"id"`
	RequestID string    `db:"request_id" json:"request_id"`
	Content   string    `db:"content" json:"content"`
	IsScam    bool      `db:"is_scam" json:"is_scam"`
	Label     string    `db:"label" json:"label"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ScamGroup is one fingerprint bucket from the grouped confirmed-scam query
// used by the promotion job.
type ScamGroup struct {
	Fingerprint string `db:"fingerprint" json:"fingerprint"`
	Count       int    `db:"count" json:"count"`
}
