package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-variability/internal/config"
	"github.com/stemsi/exstem-variability/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const examID = "65f1a2b3c4d5e6f708192a00"

// fakeSource serves canned wire documents per environment.
type fakeSource struct {
	mu    sync.Mutex
	docs  map[model.Environment][]any
	errs  map[model.Environment]error
	calls int
}

func (f *fakeSource) FindByExamID(_ context.Context, env model.Environment, _ string) ([]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.errs[env]; err != nil {
		return nil, err
	}
	return f.docs[env], nil
}

// wireGeneration builds a wire document with one question set.
func wireGeneration(deprecated bool, questionIDs ...string) map[string]any {
	questions := make([]any, len(questionIDs))
	for i, id := range questionIDs {
		questions[i] = map[string]any{
			"id":      id,
			"answers": []any{map[string]any{"$oid": "65f1a2b3c4d5e6f7081900" + id}},
		}
	}
	return map[string]any{
		"_id":        map[string]any{"$oid": "65f1a2b3c4d5e6f708192aff"},
		"examId":     map[string]any{"$oid": examID},
		"deprecated": deprecated,
		"version":    float64(1),
		"createdAt":  map[string]any{"$date": map[string]any{"$numberLong": "1709294400000"}},
		"questionSets": []any{
			map[string]any{"id": "set-1", "questions": questions},
		},
	}
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestVariabilityReportComputesBothEnvironments(t *testing.T) {
	src := &fakeSource{docs: map[model.Environment][]any{
		model.EnvironmentStaging: {
			wireGeneration(false, "10", "11", "12"),
			wireGeneration(false, "10", "11", "13"),
		},
	}}
	svc := NewVariabilityService(src, nil, time.Hour, zerolog.Nop())
	svc.now = fixedNow

	report, err := svc.Report(context.Background(), examID)
	require.NoError(t, err)

	assert.Equal(t, examID, report.ExamID)
	assert.Equal(t, fixedNow(), report.GeneratedAt)
	assert.Equal(t, fixedNow().Add(time.Hour), report.ExpiresAt)

	staging := report.Environments[model.EnvironmentStaging]
	assert.Equal(t, 2, staging.TotalGenerations)
	assert.Equal(t, "0.333", staging.QuestionVariability)
	assert.Equal(t, "0.333", staging.AnswerVariability)

	production := report.Environments[model.EnvironmentProduction]
	assert.Equal(t, 0, production.TotalGenerations)
	assert.Equal(t, "-", production.QuestionVariability)
}

func TestVariabilityReportUsesCache(t *testing.T) {
	mr, rdb := newRedis(t)
	src := &fakeSource{docs: map[model.Environment][]any{
		model.EnvironmentProduction: {wireGeneration(true, "10")},
	}}
	svc := NewVariabilityService(src, rdb, 2*time.Hour, zerolog.Nop())
	svc.now = fixedNow

	first, err := svc.Report(context.Background(), examID)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)

	key := config.CacheKey.ExamVariabilityKey(examID)
	require.True(t, mr.Exists(key))
	assert.Equal(t, 2*time.Hour, mr.TTL(key))

	second, err := svc.Report(context.Background(), examID)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls, "second report must come from cache")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, second.Environments[model.EnvironmentProduction].DeprecatedGenerations)
}

func TestVariabilityRefreshRecomputes(t *testing.T) {
	_, rdb := newRedis(t)
	src := &fakeSource{docs: map[model.Environment][]any{}}
	svc := NewVariabilityService(src, rdb, time.Hour, zerolog.Nop())

	_, err := svc.Report(context.Background(), examID)
	require.NoError(t, err)

	src.mu.Lock()
	src.docs[model.EnvironmentStaging] = []any{wireGeneration(false, "10")}
	src.mu.Unlock()

	report, err := svc.Refresh(context.Background(), examID)
	require.NoError(t, err)
	assert.Equal(t, 4, src.calls)
	assert.Equal(t, 1, report.Environments[model.EnvironmentStaging].TotalGenerations)
}

func TestVariabilityCacheFailureIsNotFatal(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()

	src := &fakeSource{}
	svc := NewVariabilityService(src, rdb, time.Hour, zerolog.Nop())

	report, err := svc.Report(context.Background(), examID)
	require.NoError(t, err)
	assert.Len(t, report.Environments, 2)
}

func TestVariabilityCorruptCacheIsDiscarded(t *testing.T) {
	mr, rdb := newRedis(t)
	require.NoError(t, mr.Set(config.CacheKey.ExamVariabilityKey(examID), "{not json"))

	src := &fakeSource{}
	svc := NewVariabilityService(src, rdb, time.Hour, zerolog.Nop())

	_, err := svc.Report(context.Background(), examID)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestVariabilityReportSourceError(t *testing.T) {
	boom := errors.New("connection refused")
	src := &fakeSource{errs: map[model.Environment]error{model.EnvironmentProduction: boom}}
	svc := NewVariabilityService(src, nil, time.Hour, zerolog.Nop())

	_, err := svc.Report(context.Background(), examID)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "Production")
}

func TestVariabilityAnalyze(t *testing.T) {
	svc := NewVariabilityService(&fakeSource{}, nil, time.Hour, zerolog.Nop())

	m, err := svc.Analyze([]any{
		wireGeneration(false, "10", "11", "12"),
		wireGeneration(false, "10", "11", "14"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, m.TotalGenerations)
	assert.Equal(t, "0.333", m.QuestionVariability)

	m, err = svc.Analyze(nil)
	require.NoError(t, err)
	assert.Equal(t, "-", m.AnswerVariability)

	_, err = svc.Analyze([]any{map[string]any{"questionSets": "nope"}})
	assert.ErrorIs(t, err, ErrMalformedGenerations)
}

func TestGenerationListFormats(t *testing.T) {
	src := &fakeSource{docs: map[model.Environment][]any{
		model.EnvironmentStaging: {wireGeneration(false, "10")},
	}}
	svc := NewGenerationService(src, zerolog.Nop())

	wire, err := svc.List(context.Background(), model.EnvironmentStaging, examID, FormatWire)
	require.NoError(t, err)
	require.Len(t, wire, 1)
	assert.Contains(t, wire[0], "_id")

	app, err := svc.List(context.Background(), model.EnvironmentStaging, examID, FormatApplication)
	require.NoError(t, err)
	require.Len(t, app, 1)
	doc := app[0].(map[string]any)
	assert.Equal(t, "65f1a2b3c4d5e6f708192aff", doc["id"])
	assert.Equal(t, examID, doc["examId"])
	assert.Equal(t, time.UnixMilli(1709294400000).UTC(), doc["createdAt"])
	assert.NotContains(t, doc, "_id")
}

func TestGenerationListError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewGenerationService(&fakeSource{errs: map[model.Environment]error{model.EnvironmentStaging: boom}}, zerolog.Nop())

	_, err := svc.List(context.Background(), model.EnvironmentStaging, examID, FormatWire)
	assert.ErrorIs(t, err, boom)
}

func TestPage(t *testing.T) {
	items := []any{1, 2, 3, 4, 5}

	assert.Equal(t, items, Page(items, 1, 0))
	assert.Equal(t, []any{1, 2}, Page(items, 1, 2))
	assert.Equal(t, []any{5}, Page(items, 3, 2))
	assert.Equal(t, []any{}, Page(items, 4, 2))
	assert.Equal(t, []any{1, 2}, Page(items, 0, 2))
}
