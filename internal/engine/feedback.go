package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"scamshield/internal/metrics"
	"scamshield/internal/models"
	"scamshield/internal/repository"
)

// Feedback types accepted from users.
const (
	FeedbackCorrect   = "correct"
	FeedbackIncorrect = "incorrect"
)

// verifiedPrefix marks a training label as human-reviewed. Once present,
// later feedback appends metadata but never flips the label again
// (first decision wins).
const verifiedPrefix = "verified_"

// FeedbackProcessor applies user corroboration or correction to a past
// decision and retroactively relabels its training example.
type FeedbackProcessor struct {
	detections repository.DetectionRepository
	training   repository.TrainingRepository
	logger     *zap.Logger
}

// NewFeedbackProcessor creates a feedback processor.
func NewFeedbackProcessor(detections repository.DetectionRepository, training repository.TrainingRepository, logger *zap.Logger) *FeedbackProcessor {
	return &FeedbackProcessor{detections: detections, training: training, logger: logger}
}

// Apply records feedback against a detection record. "incorrect" flips the
// linked training example's label and stamps it verified; "correct" only
// stamps it. Returns ErrNotFound when the request id is unknown.
func (p *FeedbackProcessor) Apply(requestID, feedbackType, comment string) error {
	if feedbackType != FeedbackCorrect && feedbackType != FeedbackIncorrect {
		return fmt.Errorf("%w: feedback type %q", models.ErrInvalidInput, feedbackType)
	}

	if _, err := p.detections.GetByRequestID(requestID); err != nil {
		return err
	}

	note := fmt.Sprintf("%s|%s|%s", time.Now().UTC().Format(time.RFC3339), feedbackType, comment)
	if err := p.detections.AppendFeedback(requestID, note); err != nil {
		return err
	}
	metrics.FeedbackTotal.WithLabelValues(feedbackType).Inc()

	example, err := p.training.GetByRequestID(requestID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Training collection was disabled for this decision.
			return nil
		}
		p.logger.Warn("Failed to load training example for feedback",
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil
	}

	if strings.HasPrefix(example.Label, verifiedPrefix) {
		p.logger.Info("Training example already verified, keeping first decision",
			zap.String("request_id", requestID))
		return nil
	}

	isScam := example.IsScam
	if feedbackType == FeedbackIncorrect {
		isScam = !isScam
	}
	if err := p.training.RelabelExample(example.ID, isScam, verifiedPrefix+example.Label); err != nil {
		metrics.PersistFailures.Inc()
		p.logger.Error("Failed to relabel training example",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
	return nil
}
