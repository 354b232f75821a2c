package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"scamshield/internal/models"
)

// TrainingRepository handles database operations for the training examples
// table.
type TrainingRepository interface {
	SaveExample(ex *models.TrainingExample) error
	GetByRequestID(requestID string) (*models.TrainingExample, error)
	GetContentByFingerprint(fp string) (string, error)
	RelabelExample(id int64, isScam bool, label string) error
	GetStats() (map[string]interface{}, error)
}

type trainingRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewTrainingRepository creates a new training example repository.
func NewTrainingRepository(db *sqlx.DB, logger *zap.Logger) TrainingRepository {
	return &trainingRepository{db: db, logger: logger}
}

func (r *trainingRepository) SaveExample(ex *models.TrainingExample) error {
	query := `INSERT INTO training_examples (request_id, content, is_scam, label)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`
	return r.db.QueryRowx(query, ex.RequestID, ex.Content, ex.IsScam, ex.Label).
		Scan(&ex.ID, &ex.CreatedAt, &ex.UpdatedAt)
}

func (r *trainingRepository) GetByRequestID(requestID string) (*models.TrainingExample, error) {
	var ex models.TrainingExample
	query := `SELECT id, request_id, content, is_scam, label, created_at, updated_at
	          FROM training_examples WHERE request_id = $1`
	err := r.db.Get(&ex, query, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: training example for %s", models.ErrNotFound, requestID)
	}
	if err != nil {
		return nil, err
	}
	return &ex, nil
}

// GetContentByFingerprint returns the raw content of one example whose
// detection record carries the fingerprint. Used by the promotion job to
// recover the text behind a confirmed-scam group.
func (r *trainingRepository) GetContentByFingerprint(fp string) (string, error) {
	var content string
	query := `SELECT te.content
	          FROM training_examples te
	          JOIN detection_records dr ON dr.request_id = te.request_id
	          WHERE dr.fingerprint = $1
	          ORDER BY te.created_at DESC LIMIT 1`
	err := r.db.Get(&content, query, fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: training content for fingerprint %s", models.ErrNotFound, fp)
	}
	if err != nil {
		return "", err
	}
	return content, nil
}

// RelabelExample flips the stored label exactly once per feedback decision.
func (r *trainingRepository) RelabelExample(id int64, isScam bool, label string) error {
	query := `UPDATE training_examples
	          SET is_scam = $1, label = $2, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $3`
	_, err := r.db.Exec(query, isScam, label, id)
	return err
}

// GetStats returns dataset statistics for the admin endpoint.
func (r *trainingRepository) GetStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalCount int
	if err := r.db.Get(&totalCount, "SELECT COUNT(*) FROM training_examples"); err != nil {
		return nil, err
	}
	stats["total_examples"] = totalCount

	var scamCount int
	if err := r.db.Get(&scamCount, "SELECT COUNT(*) FROM training_examples WHERE is_scam = TRUE"); err != nil {
		return nil, err
	}
	stats["scam_examples"] = scamCount
	stats["safe_examples"] = totalCount - scamCount

	var verifiedCount int
	if err := r.db.Get(&verifiedCount, "SELECT COUNT(*) FROM training_examples WHERE label LIKE 'verified_%'"); err != nil {
		return nil, err
	}
	stats["verified_examples"] = verifiedCount

	rows, err := r.db.Queryx(`SELECT label, COUNT(*) AS count FROM training_examples GROUP BY label ORDER BY count DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byLabel := make(map[string]int)
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, err
		}
		byLabel[label] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	stats["by_label"] = byLabel

	return stats, nil
}
