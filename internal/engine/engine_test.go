package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scamshield/internal/classifier"
	"scamshield/internal/crowd"
	"scamshield/internal/entitylist"
	"scamshield/internal/fingerprint"
	"scamshield/internal/models"
)

// --- fakes ---

type fakeDetections struct {
	records      map[string]*models.DetectionRecord
	recent       *models.DetectionRecord
	recentErr    error
	scamCount    int
	scamCountErr error
	feedback     map[string][]string
	cursor       time.Time
}

func newFakeDetections() *fakeDetections {
	return &fakeDetections{
		records:  make(map[string]*models.DetectionRecord),
		feedback: make(map[string][]string),
	}
}

func (f *fakeDetections) SaveRecord(rec *models.DetectionRecord) error {
	rec.ID = int64(len(f.records) + 1)
	rec.CreatedAt = time.Now()
	f.records[rec.RequestID] = rec
	return nil
}

func (f *fakeDetections) GetByRequestID(requestID string) (*models.DetectionRecord, error) {
	rec, ok := f.records[requestID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return rec, nil
}

func (f *fakeDetections) GetRecentByFingerprint(string, time.Time) (*models.DetectionRecord, error) {
	return f.recent, f.recentErr
}

func (f *fakeDetections) CountScamsByFingerprint(string) (int, error) {
	return f.scamCount, f.scamCountErr
}

func (f *fakeDetections) GetScamGroupsSince(time.Time, int) ([]models.ScamGroup, error) {
	return nil, nil
}

func (f *fakeDetections) AppendFeedback(requestID, note string) error {
	if _, ok := f.records[requestID]; !ok {
		return models.ErrNotFound
	}
	f.feedback[requestID] = append(f.feedback[requestID], note)
	return nil
}

func (f *fakeDetections) GetPromotionCursor(string) (time.Time, error) { return f.cursor, nil }

func (f *fakeDetections) SetPromotionCursor(_ string, at time.Time) error {
	f.cursor = at
	return nil
}

type fakeTraining struct {
	examples  map[string]*models.TrainingExample
	relabeled int
}

func newFakeTraining() *fakeTraining {
	return &fakeTraining{examples: make(map[string]*models.TrainingExample)}
}

func (f *fakeTraining) SaveExample(ex *models.TrainingExample) error {
	ex.ID = int64(len(f.examples) + 1)
	f.examples[ex.RequestID] = ex
	return nil
}

func (f *fakeTraining) GetByRequestID(requestID string) (*models.TrainingExample, error) {
	ex, ok := f.examples[requestID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return ex, nil
}

func (f *fakeTraining) GetContentByFingerprint(string) (string, error) { return "", models.ErrNotFound }

func (f *fakeTraining) RelabelExample(id int64, isScam bool, label string) error {
	for _, ex := range f.examples {
		if ex.ID == id {
			ex.IsScam = isScam
			ex.Label = label
			f.relabeled++
			return nil
		}
	}
	return models.ErrNotFound
}

func (f *fakeTraining) GetStats() (map[string]interface{}, error) { return nil, nil }

type fakeCache struct {
	entries map[string]*models.CacheEntry
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*models.CacheEntry)}
}

func (f *fakeCache) Get(_ context.Context, source, fp string) (*models.CacheEntry, bool) {
	entry, ok := f.entries[source+":"+fp]
	return entry, ok
}

func (f *fakeCache) Set(_ context.Context, source string, entry *models.CacheEntry) {
	f.entries[source+":"+entry.Fingerprint] = entry
	f.sets++
}

type fakePersister struct {
	records  []*models.DetectionRecord
	examples []*models.TrainingExample
}

func (f *fakePersister) Enqueue(rec *models.DetectionRecord, ex *models.TrainingExample) {
	f.records = append(f.records, rec)
	if ex != nil {
		f.examples = append(f.examples, ex)
	}
}

type passEscalator struct{}

func (passEscalator) MaybeEscalate(_ context.Context, outcome models.Outcome, _ string, _ float64) models.Outcome {
	return outcome
}

type fixedEscalator struct {
	outcome models.Outcome
	called  int
}

func (f *fixedEscalator) MaybeEscalate(_ context.Context, _ models.Outcome, _ string, _ float64) models.Outcome {
	f.called++
	return f.outcome
}

// --- helpers ---

func testLists(t *testing.T) *entitylist.Store {
	t.Helper()
	dir := t.TempDir()
	wPath := filepath.Join(dir, "whitelist.txt")
	bPath := filepath.Join(dir, "blacklist.txt")
	require.NoError(t, os.WriteFile(wPath, []byte("ธนาคารกสิกรไทย\n"), 0o644))
	require.NoError(t, os.WriteFile(bPath, []byte("089-123-4567\n"), 0o644))
	store, err := entitylist.NewStore(wPath, bPath, zap.NewNop())
	require.NoError(t, err)
	return store
}

func newTestEngine(t *testing.T, det *fakeDetections, verdictCache *fakeCache, esc Escalator, pers *fakePersister) *Engine {
	t.Helper()
	return New(
		fingerprint.NewService(0),
		testLists(t),
		classifier.NewRuleClassifier(),
		esc,
		verdictCache,
		det,
		crowd.NewAggregator(det, 2, zap.NewNop()),
		pers,
		0.5,
		24*time.Hour,
		true,
		"rules-v1",
		zap.NewNop(),
	)
}

// --- tests ---

func TestSubmitFullPipeline(t *testing.T) {
	det := newFakeDetections()
	pers := &fakePersister{}
	verdictCache := newFakeCache()
	eng := newTestEngine(t, det, verdictCache, passEscalator{}, pers)

	v, err := eng.Submit(context.Background(), Submission{
		Text:    "ems แจ้งเตือน: มีค่า delivery fee ค้างชำระ",
		Channel: "sms",
		Source:  models.SourcePublic,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, v.RequestID)
	assert.False(t, v.Cached)
	assert.Equal(t, "parcel", v.Outcome.Category)
	assert.InDelta(t, 0.8, v.Outcome.RiskScore, 1e-9)
	assert.True(t, v.Outcome.IsScam)
	assert.NotEmpty(t, v.Reason)
	assert.NotEmpty(t, v.Advice)

	// One record and one training example queued with the same request id.
	require.Len(t, pers.records, 1)
	require.Len(t, pers.examples, 1)
	assert.Equal(t, v.RequestID, pers.records[0].RequestID)
	assert.Equal(t, v.RequestID, pers.examples[0].RequestID)
	assert.Equal(t, "parcel", pers.examples[0].Label)
	assert.Equal(t, "rules-v1", pers.records[0].ModelVersion)

	// Verdict was written back to the fast cache.
	assert.Equal(t, 1, verdictCache.sets)
}

func TestSubmitInvalidInput(t *testing.T) {
	eng := newTestEngine(t, newFakeDetections(), newFakeCache(), passEscalator{}, &fakePersister{})

	_, err := eng.Submit(context.Background(), Submission{Text: "   "})
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	_, err = eng.Submit(context.Background(), Submission{Text: "hello", Source: "internal"})
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
}

func TestPublicCacheHitIsIdempotent(t *testing.T) {
	det := newFakeDetections()
	pers := &fakePersister{}
	verdictCache := newFakeCache()
	eng := newTestEngine(t, det, verdictCache, passEscalator{}, pers)

	text := "เงินกู้ อนุมัติไว"
	first, err := eng.Submit(context.Background(), Submission{Text: text, Source: models.SourcePublic})
	require.NoError(t, err)

	second, err := eng.Submit(context.Background(), Submission{Text: text, Source: models.SourcePublic})
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.Equal(t, first.RequestID, second.RequestID)
	assert.Equal(t, first.Outcome.Category, second.Outcome.Category)
	assert.Equal(t, first.Outcome.RiskScore, second.Outcome.RiskScore)
	// No extra record for public cache hits.
	assert.Len(t, pers.records, 1)
}

func TestPartnerCacheHitStillRecordsUsage(t *testing.T) {
	det := newFakeDetections()
	pers := &fakePersister{}
	verdictCache := newFakeCache()
	eng := newTestEngine(t, det, verdictCache, passEscalator{}, pers)

	partnerID := "partner-7"
	sub := Submission{Text: "เงินกู้ อนุมัติไว", Source: models.SourcePartner, PartnerID: &partnerID}

	first, err := eng.Submit(context.Background(), sub)
	require.NoError(t, err)
	second, err := eng.Submit(context.Background(), sub)
	require.NoError(t, err)

	assert.True(t, second.Cached)
	// The outcome is reused verbatim but usage is billed per request.
	assert.NotEqual(t, first.RequestID, second.RequestID)
	assert.Equal(t, first.Outcome, second.Outcome)
	require.Len(t, pers.records, 2)
	// Cache-hit usage records carry no training example.
	assert.Len(t, pers.examples, 1)
}

func TestDurableDedupHitRepopulatesCache(t *testing.T) {
	det := newFakeDetections()
	det.recent = &models.DetectionRecord{
		RequestID: "req-prior",
		Category:  "loan",
		RiskScore: 0.8,
		IsScam:    true,
		Origin:    models.OriginRule,
		Reason:    "keyword analysis scored 0.80 for category \"loan\"",
		Advice:    "advice",
	}
	pers := &fakePersister{}
	verdictCache := newFakeCache()
	eng := newTestEngine(t, det, verdictCache, passEscalator{}, pers)

	v, err := eng.Submit(context.Background(), Submission{Text: "เงินกู้ อนุมัติไว", Source: models.SourcePublic})
	require.NoError(t, err)

	assert.True(t, v.Cached)
	assert.Equal(t, "req-prior", v.RequestID)
	assert.Equal(t, "loan", v.Outcome.Category)
	// Fast cache repopulated, but no new record created.
	assert.Equal(t, 1, verdictCache.sets)
	assert.Empty(t, pers.records)
}

func TestDurableLookupFailureFailsOpen(t *testing.T) {
	det := newFakeDetections()
	det.recentErr = errors.New("db down")
	pers := &fakePersister{}
	eng := newTestEngine(t, det, newFakeCache(), passEscalator{}, pers)

	v, err := eng.Submit(context.Background(), Submission{Text: "เงินกู้ อนุมัติไว"})
	require.NoError(t, err)
	assert.False(t, v.Cached)
	assert.Equal(t, "loan", v.Outcome.Category)
}

func TestCascadeResultIsPersisted(t *testing.T) {
	det := newFakeDetections()
	esc := &fixedEscalator{outcome: models.Outcome{
		Category:   "investment",
		RiskScore:  0.9,
		IsScam:     true,
		Confidence: 0.85,
		Origin:     models.OriginCascade,
	}}
	pers := &fakePersister{}
	eng := newTestEngine(t, det, newFakeCache(), esc, pers)

	v, err := eng.Submit(context.Background(), Submission{Text: "เงินกู้ อนุมัติไว"})
	require.NoError(t, err)

	assert.Equal(t, 1, esc.called)
	assert.Equal(t, models.OriginCascade, v.Outcome.Origin)
	require.Len(t, pers.records, 1)
	assert.Equal(t, models.OriginCascade, pers.records[0].Origin)
	assert.Equal(t, "investment", pers.examples[0].Label)
}

func TestCrowdOverrideRaisesRuleOutcome(t *testing.T) {
	det := newFakeDetections()
	det.scamCount = 3
	pers := &fakePersister{}
	eng := newTestEngine(t, det, newFakeCache(), passEscalator{}, pers)

	// Harmless text, but the fingerprint was confirmed as scam 3 times.
	v, err := eng.Submit(context.Background(), Submission{Text: "สวัสดีครับ เจอกันเย็นนี้"})
	require.NoError(t, err)

	assert.True(t, v.Outcome.IsScam)
	assert.Equal(t, 0.95, v.Outcome.RiskScore)
	assert.Equal(t, models.OriginCrowd, v.Outcome.Origin)
}

func TestWhitelistSkipsCascadeAndCrowd(t *testing.T) {
	det := newFakeDetections()
	det.scamCount = 5
	esc := &fixedEscalator{outcome: models.Outcome{Category: "x", RiskScore: 1, IsScam: true, Origin: models.OriginCascade}}
	eng := newTestEngine(t, det, newFakeCache(), esc, &fakePersister{})

	v, err := eng.Submit(context.Background(), Submission{Text: "ธนาคารกสิกรไทย แจ้งยอดบัญชี เงินกู้"})
	require.NoError(t, err)

	assert.Equal(t, 0, esc.called)
	assert.Equal(t, models.OriginWhitelist, v.Outcome.Origin)
	assert.Equal(t, 0.0, v.Outcome.RiskScore)
	assert.False(t, v.Outcome.IsScam)
}

func TestBlacklistShortCircuits(t *testing.T) {
	det := newFakeDetections()
	esc := &fixedEscalator{}
	eng := newTestEngine(t, det, newFakeCache(), esc, &fakePersister{})

	v, err := eng.Submit(context.Background(), Submission{Text: "ด่วน โอนเงินด่วน 089-123-4567"})
	require.NoError(t, err)

	assert.Equal(t, 0, esc.called)
	assert.Equal(t, "blacklisted", v.Outcome.Category)
	assert.Equal(t, 1.0, v.Outcome.RiskScore)
	assert.True(t, v.Outcome.IsScam)
}
