package model

import (
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Environment identifies one of the two exam databases.
type Environment string

const (
	EnvironmentStaging    Environment = "Staging"
	EnvironmentProduction Environment = "Production"
)

// Environments lists every environment in display order.
var Environments = []Environment{EnvironmentStaging, EnvironmentProduction}

// ErrUnknownEnvironment is returned for names other than Staging and Production.
var ErrUnknownEnvironment = errors.New("unknown environment")

// ParseEnvironment accepts the canonical names only.
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case EnvironmentStaging, EnvironmentProduction:
		return Environment(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEnvironment, s)
}

// GeneratedExam is one materialized sampling of an exam's questions and
// answers. It is read-only once created.
type GeneratedExam struct {
	ID           string                 `json:"id" mapstructure:"id"`
	ExamID       string                 `json:"examId" mapstructure:"examId"`
	QuestionSets []GeneratedQuestionSet `json:"questionSets" mapstructure:"questionSets"`
	Deprecated   bool                   `json:"deprecated" mapstructure:"deprecated"`
	Version      int                    `json:"version" mapstructure:"version"`
}

// GeneratedQuestionSet groups the questions drawn from one question set.
type GeneratedQuestionSet struct {
	ID        string              `json:"id" mapstructure:"id"`
	Questions []GeneratedQuestion `json:"questions" mapstructure:"questions"`
}

// GeneratedQuestion carries the ids of the answers selected for it.
type GeneratedQuestion struct {
	ID      string   `json:"id" mapstructure:"id"`
	Answers []string `json:"answers" mapstructure:"answers"`
}

// DecodeGeneratedExams decodes normalized (application format) documents.
// Unknown fields such as timestamps are ignored.
func DecodeGeneratedExams(app any) ([]GeneratedExam, error) {
	if app == nil {
		return nil, nil
	}

	var out []GeneratedExam
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &out,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(app); err != nil {
		return nil, fmt.Errorf("decode generated exams: %w", err)
	}
	return out, nil
}
