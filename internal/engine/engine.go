package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scamshield/internal/classifier"
	"scamshield/internal/entitylist"
	"scamshield/internal/fingerprint"
	"scamshield/internal/metrics"
	"scamshield/internal/models"
	"scamshield/internal/repository"
)

// Escalator hands uncertain outcomes to the secondary classifier.
type Escalator interface {
	MaybeEscalate(ctx context.Context, outcome models.Outcome, text string, threshold float64) models.Outcome
}

// VerdictCache is the tier-1 fast cache; it must tolerate being entirely
// unavailable.
type VerdictCache interface {
	Get(ctx context.Context, source, fp string) (*models.CacheEntry, bool)
	Set(ctx context.Context, source string, entry *models.CacheEntry)
}

// CrowdSignal applies the crowd-wisdom override on top of an outcome.
type CrowdSignal interface {
	Apply(outcome models.Outcome, fp string) models.Outcome
}

// Persister accepts durable writes as a best-effort side effect so the
// decision path never waits on store latency.
type Persister interface {
	Enqueue(rec *models.DetectionRecord, ex *models.TrainingExample)
}

// Submission is one piece of content to classify.
type Submission struct {
	Text      string
	Channel   string
	Source    string
	PartnerID *string
}

// Verdict is the caller-facing decision.
type Verdict struct {
	RequestID string         `json:"request_id"`
	Outcome   models.Outcome `json:"outcome"`
	Reason    string         `json:"reason"`
	Advice    string         `json:"advice"`
	Cached    bool           `json:"cached"`
}

// Engine runs the layered decision pipeline: dedup, rule classification,
// cascade escalation, crowd override, fusion and persistence.
type Engine struct {
	fingerprints    *fingerprint.Service
	lists           *entitylist.Store
	rules           *classifier.RuleClassifier
	cascade         Escalator
	cache           VerdictCache
	detections      repository.DetectionRepository
	crowd           CrowdSignal
	persister       Persister
	threshold       float64
	dedupWindow     time.Duration
	collectTraining bool
	modelVersion    string
	logger          *zap.Logger
}

// New creates a decision engine.
func New(
	fingerprints *fingerprint.Service,
	lists *entitylist.Store,
	rules *classifier.RuleClassifier,
	cascade Escalator,
	verdictCache VerdictCache,
	detections repository.DetectionRepository,
	crowdSignal CrowdSignal,
	persister Persister,
	threshold float64,
	dedupWindow time.Duration,
	collectTraining bool,
	modelVersion string,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		fingerprints:    fingerprints,
		lists:           lists,
		rules:           rules,
		cascade:         cascade,
		cache:           verdictCache,
		detections:      detections,
		crowd:           crowdSignal,
		persister:       persister,
		threshold:       threshold,
		dedupWindow:     dedupWindow,
		collectTraining: collectTraining,
		modelVersion:    modelVersion,
		logger:          logger,
	}
}

// Submit classifies one submission and returns the verdict. Any single
// layer failing degrades to its safe default; the caller always receives a
// verdict unless the input itself is invalid.
func (e *Engine) Submit(ctx context.Context, sub Submission) (*Verdict, error) {
	source := sub.Source
	if source == "" {
		source = models.SourcePublic
	}
	if source != models.SourcePublic && source != models.SourcePartner {
		return nil, fmt.Errorf("%w: unknown source %q", models.ErrInvalidInput, source)
	}

	canonical, fp, err := e.fingerprints.Fingerprint(sub.Text)
	if err != nil {
		return nil, err
	}

	// Tier 1: fast cache. Partner hits reuse the decision but still record
	// usage, since billing is per request, not per unique decision.
	if entry, ok := e.cache.Get(ctx, source, fp); ok {
		metrics.CacheHits.WithLabelValues("fast").Inc()
		requestID := entry.RequestID
		if source == models.SourcePartner {
			requestID = uuid.NewString()
			e.persister.Enqueue(e.buildRecord(requestID, fp, source, sub, entry.Outcome, entry.Reason, entry.Advice), nil)
		}
		return &Verdict{
			RequestID: requestID,
			Outcome:   entry.Outcome,
			Reason:    entry.Reason,
			Advice:    entry.Advice,
			Cached:    true,
		}, nil
	}

	// Tier 2: durable lookup inside the recency window. A hit re-populates
	// the fast cache but never creates a new record.
	rec, err := e.detections.GetRecentByFingerprint(fp, time.Now().Add(-e.dedupWindow))
	if err != nil {
		e.logger.Warn("Durable dedup lookup failed, running full pipeline", zap.Error(err))
	} else if rec != nil {
		metrics.CacheHits.WithLabelValues("durable").Inc()
		outcome := models.Outcome{
			Category:   rec.Category,
			RiskScore:  rec.RiskScore,
			IsScam:     rec.IsScam,
			Confidence: 0.5 + math.Abs(rec.RiskScore-0.5),
			Origin:     rec.Origin,
		}
		e.cache.Set(ctx, source, &models.CacheEntry{
			RequestID:   rec.RequestID,
			Fingerprint: fp,
			Outcome:     outcome,
			Reason:      rec.Reason,
			Advice:      rec.Advice,
			CreatedAt:   time.Now(),
		})
		return &Verdict{
			RequestID: rec.RequestID,
			Outcome:   outcome,
			Reason:    rec.Reason,
			Advice:    rec.Advice,
			Cached:    true,
		}, nil
	}

	outcome, err := e.rules.Classify(canonical, e.lists.Snapshot(), e.threshold)
	if err != nil {
		return nil, err
	}

	// Whitelist and blacklist short-circuit: no later layer may override
	// them. Everything else goes through cascade and crowd in order.
	if outcome.Origin == models.OriginRule {
		outcome = e.cascade.MaybeEscalate(ctx, outcome, canonical, e.threshold)
		outcome = e.crowd.Apply(outcome, fp)
	}

	reason, advice := explain(outcome)
	requestID := uuid.NewString()

	record := e.buildRecord(requestID, fp, source, sub, outcome, reason, advice)
	var example *models.TrainingExample
	if e.collectTraining {
		example = &models.TrainingExample{
			RequestID: requestID,
			Content:   canonical,
			IsScam:    outcome.IsScam,
			Label:     outcome.Category,
		}
	}
	e.persister.Enqueue(record, example)

	e.cache.Set(ctx, source, &models.CacheEntry{
		RequestID:   requestID,
		Fingerprint: fp,
		Outcome:     outcome,
		Reason:      reason,
		Advice:      advice,
		CreatedAt:   time.Now(),
	})

	metrics.RequestsTotal.WithLabelValues(source, string(outcome.Origin)).Inc()

	return &Verdict{
		RequestID: requestID,
		Outcome:   outcome,
		Reason:    reason,
		Advice:    advice,
	}, nil
}

func (e *Engine) buildRecord(requestID, fp, source string, sub Submission, outcome models.Outcome, reason, advice string) *models.DetectionRecord {
	var channel *string
	if sub.Channel != "" {
		ch := sub.Channel
		channel = &ch
	}
	return &models.DetectionRecord{
		RequestID:    requestID,
		Fingerprint:  fp,
		Source:       source,
		Channel:      channel,
		PartnerID:    sub.PartnerID,
		Category:     outcome.Category,
		RiskScore:    outcome.RiskScore,
		IsScam:       outcome.IsScam,
		Origin:       outcome.Origin,
		Reason:       reason,
		Advice:       advice,
		ModelVersion: e.modelVersion,
	}
}
