package classifier

import (
	"context"
	"time"

	"go.uber.org/zap"

	"scamshield/internal/metrics"
	"scamshield/internal/mlclient"
	"scamshield/internal/models"
)

// Uncertain band: rule scores in this range are too close to the threshold
// to trust, so a secondary classifier gets the final word.
const (
	uncertainLow  = 0.4
	uncertainHigh = 0.6
)

// CategoryParseError tags the conservative fallback for malformed secondary
// classifier responses.
const CategoryParseError = "parse_error"

// SecondaryClassifier is the external capability the cascade escalates to.
// It is best-effort: any failure falls back to the rule outcome.
type SecondaryClassifier interface {
	Classify(ctx context.Context, text string, threshold float64) (*mlclient.Classification, error)
}

// Coordinator decides whether to escalate an uncertain rule outcome to the
// secondary classifier. The cascade is strictly advisory: it never blocks
// the request and never surfaces its own failures.
type Coordinator struct {
	client  SecondaryClassifier
	timeout time.Duration
	logger  *zap.Logger
}

// NewCoordinator creates a cascade coordinator with a per-call deadline.
// A nil client disables escalation entirely.
func NewCoordinator(client SecondaryClassifier, timeout time.Duration, logger *zap.Logger) *Coordinator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Coordinator{client: client, timeout: timeout, logger: logger}
}

// MaybeEscalate invokes the secondary classifier only when the rule outcome
// sits in the uncertain band. On success the secondary outcome fully
// replaces the rule outcome; on any failure the rule outcome is returned
// unchanged.
func (c *Coordinator) MaybeEscalate(ctx context.Context, outcome models.Outcome, text string, threshold float64) models.Outcome {
	if outcome.RiskScore < uncertainLow || outcome.RiskScore > uncertainHigh {
		return outcome
	}
	if c.client == nil {
		return outcome
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.client.Classify(callCtx, text, threshold)
	if err != nil {
		metrics.CascadeCalls.WithLabelValues("error").Inc()
		c.logger.Warn("Secondary classifier failed, keeping rule outcome",
			zap.Float64("rule_score", outcome.RiskScore),
			zap.Error(err))
		return outcome
	}

	if !validClassification(result) {
		metrics.CascadeCalls.WithLabelValues("parse_error").Inc()
		c.logger.Warn("Secondary classifier returned malformed result, using conservative fallback",
			zap.Any("result", result))
		return models.Outcome{
			Category:   CategoryParseError,
			RiskScore:  0.6,
			IsScam:     true,
			Confidence: 0.5,
			Origin:     models.OriginCascade,
		}
	}

	metrics.CascadeCalls.WithLabelValues("ok").Inc()
	return models.Outcome{
		Category:   result.Category,
		RiskScore:  result.RiskScore,
		IsScam:     result.IsScam,
		Confidence: result.Confidence,
		Origin:     models.OriginCascade,
	}
}

func validClassification(r *mlclient.Classification) bool {
	if r == nil || r.Category == "" {
		return false
	}
	if r.RiskScore < 0 || r.RiskScore > 1 {
		return false
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return false
	}
	return true
}
