package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-variability/internal/config"
	"github.com/stemsi/exstem-variability/internal/model"
	"github.com/stemsi/exstem-variability/internal/serde"
	"github.com/stemsi/exstem-variability/internal/variability"
)

// ErrMalformedGenerations is returned when wire documents do not decode
// into generated exams.
var ErrMalformedGenerations = errors.New("malformed generations")

// Report is the variability of one exam across both environments.
type Report struct {
	ExamID       string                                    `json:"examId"`
	Environments map[model.Environment]variability.Metrics `json:"environments"`
	GeneratedAt  time.Time                                 `json:"generatedAt"`
	ExpiresAt    time.Time                                 `json:"expiresAt"`
}

// VariabilityService computes generation variability reports and caches
// them in Redis.
type VariabilityService struct {
	source GenerationSource
	engine *variability.Engine
	rdb    *redis.Client
	ttl    time.Duration
	now    func() time.Time
	log    zerolog.Logger
}

// NewVariabilityService creates a new VariabilityService. A nil rdb disables
// caching.
func NewVariabilityService(source GenerationSource, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *VariabilityService {
	log = log.With().Str("component", "variability_service").Logger()
	return &VariabilityService{
		source: source,
		engine: variability.NewEngine(variability.WithSink(variability.LogSink(log))),
		rdb:    rdb,
		ttl:    ttl,
		now:    time.Now,
		log:    log,
	}
}

// Report returns the cached report for examID, computing it on a miss.
func (s *VariabilityService) Report(ctx context.Context, examID string) (*Report, error) {
	if cached := s.cached(ctx, examID); cached != nil {
		return cached, nil
	}
	return s.compute(ctx, examID)
}

// Refresh drops any cached report for examID and recomputes it.
func (s *VariabilityService) Refresh(ctx context.Context, examID string) (*Report, error) {
	if s.rdb != nil {
		if err := s.rdb.Del(ctx, config.CacheKey.ExamVariabilityKey(examID)).Err(); err != nil {
			s.log.Warn().Err(err).Str("exam_id", examID).Msg("Failed to drop cached report")
		}
	}
	return s.compute(ctx, examID)
}

// Analyze runs the engine over client supplied wire documents.
func (s *VariabilityService) Analyze(wire []any) (variability.Metrics, error) {
	return s.metrics(wire)
}

func (s *VariabilityService) compute(ctx context.Context, examID string) (*Report, error) {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		errs    []error
		metrics = make(map[model.Environment]variability.Metrics, len(model.Environments))
	)

	// Environments live in separate deployments; fetch them in parallel.
	for _, env := range model.Environments {
		wg.Add(1)
		go func(env model.Environment) {
			defer wg.Done()

			m, err := s.environmentMetrics(ctx, env, examID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", env, err))
				return
			}
			metrics[env] = m
		}(env)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	report := &Report{
		ExamID:       examID,
		Environments: metrics,
		GeneratedAt:  now,
		ExpiresAt:    now.Add(s.ttl),
	}

	s.store(ctx, report)
	return report, nil
}

func (s *VariabilityService) environmentMetrics(ctx context.Context, env model.Environment, examID string) (variability.Metrics, error) {
	docs, err := s.source.FindByExamID(ctx, env, examID)
	if err != nil {
		return variability.Metrics{}, err
	}

	m, err := s.metrics(docs)
	if err != nil {
		return variability.Metrics{}, err
	}

	s.log.Info().
		Str("exam_id", examID).
		Str("environment", string(env)).
		Int("generations", m.TotalGenerations).
		Str("question_variability", m.QuestionVariability).
		Str("answer_variability", m.AnswerVariability).
		Msg("Variability computed")
	return m, nil
}

func (s *VariabilityService) metrics(wire []any) (variability.Metrics, error) {
	gens, err := model.DecodeGeneratedExams(serde.ToApplication(wire))
	if err != nil {
		return variability.Metrics{}, fmt.Errorf("%w: %v", ErrMalformedGenerations, err)
	}
	return s.engine.GenerationMetrics(gens), nil
}

// ─── Cache ──────────────────────────────────────────────────────────────────
// Cache failures never fail a request.

func (s *VariabilityService) cached(ctx context.Context, examID string) *Report {
	if s.rdb == nil {
		return nil
	}

	data, err := s.rdb.Get(ctx, config.CacheKey.ExamVariabilityKey(examID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("exam_id", examID).Msg("Failed to read cached report")
		}
		return nil
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID).Msg("Discarding corrupt cached report")
		return nil
	}
	return &report
}

func (s *VariabilityService) store(ctx context.Context, report *Report) {
	if s.rdb == nil || s.ttl <= 0 {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		s.log.Error().Err(err).Str("exam_id", report.ExamID).Msg("Failed to encode report")
		return
	}

	if err := s.rdb.Set(ctx, config.CacheKey.ExamVariabilityKey(report.ExamID), data, s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("exam_id", report.ExamID).Msg("Failed to cache report")
	}
}
