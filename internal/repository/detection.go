package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"scamshield/internal/models"
)

// DetectionRepository handles database operations for detection records and
// the promotion cursor.
type DetectionRepository interface {
	SaveRecord(rec *models.DetectionRecord) error
	GetByRequestID(requestID string) (*models.DetectionRecord, error)
	GetRecentByFingerprint(fp string, since time.Time) (*models.DetectionRecord, error)
	CountScamsByFingerprint(fp string) (int, error)
	GetScamGroupsSince(since time.Time, minCount int) ([]models.ScamGroup, error)
	AppendFeedback(requestID, note string) error
	GetPromotionCursor(name string) (time.Time, error)
	SetPromotionCursor(name string, at time.Time) error
}

type detectionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewDetectionRepository creates a new detection record repository.
func NewDetectionRepository(db *sqlx.DB, logger *zap.Logger) DetectionRepository {
	return &detectionRepository{db: db, logger: logger}
}

func (r *detectionRepository) SaveRecord(rec *models.DetectionRecord) error {
	query := `INSERT INTO detection_records (request_id, fingerprint, source, channel, partner_id, category, risk_score, is_scam, origin_layer, reason, advice, model_version)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id, created_at`
	return r.db.QueryRowx(query, rec.RequestID, rec.Fingerprint, rec.Source, rec.Channel, rec.PartnerID,
		rec.Category, rec.RiskScore, rec.IsScam, rec.Origin, rec.Reason, rec.Advice, rec.ModelVersion).
		Scan(&rec.ID, &rec.CreatedAt)
}

func (r *detectionRepository) GetByRequestID(requestID string) (*models.DetectionRecord, error) {
	var rec models.DetectionRecord
	query := `SELECT id, request_id, fingerprint, source, channel, partner_id, category, risk_score, is_scam, origin_layer, reason, advice, model_version, feedback, created_at
	          FROM detection_records WHERE request_id = $1`
	err := r.db.Get(&rec, query, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: detection record %s", models.ErrNotFound, requestID)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetRecentByFingerprint returns the most recent record for a fingerprint
// inside the recency window, or (nil, nil) when there is none. This backs
// the tier-2 dedup lookup.
func (r *detectionRepository) GetRecentByFingerprint(fp string, since time.Time) (*models.DetectionRecord, error) {
	var rec models.DetectionRecord
	query := `SELECT id, request_id, fingerprint, source, channel, partner_id, category, risk_score, is_scam, origin_layer, reason, advice, model_version, feedback, created_at
	          FROM detection_records
	          WHERE fingerprint = $1 AND created_at >= $2
	          ORDER BY created_at DESC LIMIT 1`
	err := r.db.Get(&rec, query, fp, since)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CountScamsByFingerprint is the crowd signal: how many independent
// decisions confirmed this fingerprint as a scam.
func (r *detectionRepository) CountScamsByFingerprint(fp string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM detection_records WHERE fingerprint = $1 AND is_scam = TRUE`
	if err := r.db.Get(&count, query, fp); err != nil {
		return 0, err
	}
	return count, nil
}

// GetScamGroupsSince returns fingerprints with at least minCount confirmed
// scam records inside the window, most reported first.
func (r *detectionRepository) GetScamGroupsSince(since time.Time, minCount int) ([]models.ScamGroup, error) {
	query := `SELECT fingerprint, COUNT(*) AS count
	          FROM detection_records
	          WHERE is_scam = TRUE AND created_at >= $1
	          GROUP BY fingerprint
	          HAVING COUNT(*) >= $2
	          ORDER BY count DESC`
	rows, err := r.db.Queryx(query, since, minCount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.ScamGroup
	for rows.Next() {
		var g models.ScamGroup
		if err := rows.StructScan(&g); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// AppendFeedback appends one line of feedback metadata to a record. The
// record itself is append-only; this opaque column is the one exception.
func (r *detectionRepository) AppendFeedback(requestID, note string) error {
	query := `UPDATE detection_records
	          SET feedback = COALESCE(feedback || E'\n', '') || $2
	          WHERE request_id = $1`
	res, err := r.db.Exec(query, requestID, note)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: detection record %s", models.ErrNotFound, requestID)
	}
	return nil
}

func (r *detectionRepository) GetPromotionCursor(name string) (time.Time, error) {
	var at time.Time
	query := `SELECT last_scanned_at FROM promotion_cursor WHERE name = $1`
	err := r.db.Get(&at, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return at, nil
}

func (r *detectionRepository) SetPromotionCursor(name string, at time.Time) error {
	query := `INSERT INTO promotion_cursor (name, last_scanned_at) VALUES ($1, $2)
	          ON CONFLICT (name) DO UPDATE SET last_scanned_at = EXCLUDED.last_scanned_at`
	_, err := r.db.Exec(query, name, at)
	return err
}
