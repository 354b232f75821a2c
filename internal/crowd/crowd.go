package crowd

import (
	"math"

	"go.uber.org/zap"

	"scamshield/internal/metrics"
	"scamshield/internal/models"
)

// DefaultMinReports is how many independent confirmed-scam records a
// fingerprint needs before the crowd signal overrides the pipeline.
const DefaultMinReports = 2

// crowdRiskFloor is the risk score the crowd signal forces, never lowering
// an already higher score.
const crowdRiskFloor = 0.95

// SignalSource counts confirmed scam decisions sharing a fingerprint.
type SignalSource interface {
	CountScamsByFingerprint(fp string) (int, error)
}

// Aggregator applies the crowd-wisdom override: repeated confirmations of
// the same content raise risk monotonically, regardless of what the rule or
// cascade layer concluded.
type Aggregator struct {
	source     SignalSource
	minReports int
	logger     *zap.Logger
}

// NewAggregator creates a crowd aggregator. minReports below 1 falls back
// to DefaultMinReports.
func NewAggregator(source SignalSource, minReports int, logger *zap.Logger) *Aggregator {
	if minReports < 1 {
		minReports = DefaultMinReports
	}
	return &Aggregator{source: source, minReports: minReports, logger: logger}
}

// Apply raises the outcome when enough confirmed scams share the
// fingerprint. The override only ever raises risk. A failed signal query is
// treated as count=0 (fail open) and logged.
func (a *Aggregator) Apply(outcome models.Outcome, fp string) models.Outcome {
	count, err := a.source.CountScamsByFingerprint(fp)
	if err != nil {
		a.logger.Warn("Crowd signal query failed, skipping override",
			zap.String("fingerprint", fp),
			zap.Error(err))
		return outcome
	}

	if count < a.minReports {
		return outcome
	}

	metrics.CrowdOverrides.Inc()
	outcome.RiskScore = math.Max(outcome.RiskScore, crowdRiskFloor)
	outcome.IsScam = true
	outcome.Origin = models.OriginCrowd
	return outcome
}
