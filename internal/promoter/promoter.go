package promoter

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"scamshield/internal/entitylist"
	"scamshield/internal/metrics"
	"scamshield/internal/models"
	"scamshield/internal/repository"
)

// cursorName keys the watermark row for this job.
const cursorName = "threat_promotion"

// DefaultReportThreshold is how many confirmed scam reports a fingerprint
// needs before its entities are promoted.
const DefaultReportThreshold = 5

// Promoter mines recently confirmed scams for repeated entities and
// promotes them into the blacklist. It runs as a singleton: one scheduler
// instance drives it, and request-handling code never mutates the lists.
type Promoter struct {
	detections      repository.DetectionRepository
	training        repository.TrainingRepository
	lists           *entitylist.Store
	lookback        time.Duration
	reportThreshold int
	logger          *zap.Logger
}

// NewPromoter creates the promotion job.
func NewPromoter(
	detections repository.DetectionRepository,
	training repository.TrainingRepository,
	lists *entitylist.Store,
	lookback time.Duration,
	reportThreshold int,
	logger *zap.Logger,
) *Promoter {
	if reportThreshold < 1 {
		reportThreshold = DefaultReportThreshold
	}
	if lookback <= 0 {
		lookback = 7 * 24 * time.Hour
	}
	return &Promoter{
		detections:      detections,
		training:        training,
		lists:           lists,
		lookback:        lookback,
		reportThreshold: reportThreshold,
		logger:          logger,
	}
}

// Run starts the periodic promotion loop. The job also runs once at
// startup, like the rest of our background loops.
func (p *Promoter) Run(ctx context.Context, interval time.Duration) {
	p.logger.Info("Promotion job started.", zap.Duration("interval", interval))

	if _, err := p.PromoteThreats(); err != nil {
		p.logger.Error("Promotion run failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Promotion job stopped.")
			return
		case <-ticker.C:
			if _, err := p.PromoteThreats(); err != nil {
				p.logger.Error("Promotion run failed", zap.Error(err))
			}
		}
	}
}

// PromoteThreats scans confirmed scams inside the lookback window, extracts
// repeated phone/URL entities and appends the new ones to the blacklist.
// Whitelisted entities are never promoted; already-blacklisted ones are
// skipped, which makes re-scans idempotent. Returns the newly promoted
// entities.
func (p *Promoter) PromoteThreats() ([]string, error) {
	now := time.Now()
	since := now.Add(-p.lookback)

	// Extend the scan back to the watermark so downtime is re-covered;
	// the skips above keep the overlap harmless.
	if cursor, err := p.detections.GetPromotionCursor(cursorName); err != nil {
		p.logger.Warn("Failed to read promotion cursor, using lookback window", zap.Error(err))
	} else if !cursor.IsZero() && cursor.Before(since) {
		since = cursor
	}

	groups, err := p.detections.GetScamGroupsSince(since, p.reportThreshold)
	if err != nil {
		return nil, err
	}

	snapshot := p.lists.Snapshot()
	var promoted []string
	for _, group := range groups {
		content, err := p.training.GetContentByFingerprint(group.Fingerprint)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				p.logger.Warn("Failed to load content for scam group",
					zap.String("fingerprint", group.Fingerprint),
					zap.Error(err))
			}
			continue
		}

		for _, entity := range extractEntities(content) {
			if snapshot.InWhitelist(entity) {
				p.logger.Info("Skipping whitelisted entity", zap.String("entity", entity))
				continue
			}
			if snapshot.InBlacklist(entity) {
				continue
			}
			promoted = append(promoted, entity)
		}
	}

	if len(promoted) > 0 {
		if err := p.lists.AppendBlacklist(promoted); err != nil {
			return nil, err
		}
		metrics.PromotedEntities.Add(float64(len(promoted)))
		p.logger.Info("Promoted entities into blacklist",
			zap.Strings("entities", promoted),
			zap.Int("groups", len(groups)))
	}

	if err := p.detections.SetPromotionCursor(cursorName, now); err != nil {
		p.logger.Warn("Failed to update promotion cursor", zap.Error(err))
	}
	return promoted, nil
}
