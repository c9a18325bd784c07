package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-variability/internal/model"
	"github.com/stemsi/exstem-variability/internal/serde"
)

// Format selects the representation generated exams are returned in.
type Format string

const (
	FormatWire        Format = "wire"
	FormatApplication Format = "application"
)

// GenerationSource is the read side of the generated exam store.
type GenerationSource interface {
	FindByExamID(ctx context.Context, env model.Environment, examID string) ([]any, error)
}

// GenerationService lists generated exams per environment.
type GenerationService struct {
	source GenerationSource
	log    zerolog.Logger
}

// NewGenerationService creates a new GenerationService.
func NewGenerationService(source GenerationSource, log zerolog.Logger) *GenerationService {
	return &GenerationService{
		source: source,
		log:    log.With().Str("component", "generation_service").Logger(),
	}
}

// List returns the generations of examID in env, converted to format.
func (s *GenerationService) List(ctx context.Context, env model.Environment, examID string, format Format) ([]any, error) {
	docs, err := s.source.FindByExamID(ctx, env, examID)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}

	s.log.Debug().
		Str("exam_id", examID).
		Str("environment", string(env)).
		Int("count", len(docs)).
		Msg("Generations loaded")

	if format != FormatApplication {
		return docs, nil
	}

	app, _ := serde.ToApplication(docs).([]any)
	return app, nil
}

// Page slices items for 1-based page of size perPage. A non-positive
// perPage returns everything.
func Page(items []any, page, perPage int) []any {
	if perPage <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return []any{}
	}
	end := min(start+perPage, len(items))
	return items[start:end]
}
