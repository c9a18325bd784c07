package variability

import (
	"strconv"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-variability/internal/model"
)

// NoData is reported for every variability field when there is nothing to
// compare.
const NoData = "-"

// Dimension names the identifier family being compared.
type Dimension string

const (
	DimensionQuestions Dimension = "questions"
	DimensionAnswers   Dimension = "answers"
)

// Anomaly describes a comparison between identifier sets of unequal length.
// The score is still computed, against the left operand's length.
type Anomaly struct {
	Dimension Dimension
	LeftLen   int
	RightLen  int
}

// Sink receives anomalies. It must be safe for concurrent use if the Engine
// is shared.
type Sink func(Anomaly)

// LogSink reports anomalies as zerolog warnings.
func LogSink(log zerolog.Logger) Sink {
	return func(a Anomaly) {
		log.Warn().
			Str("dimension", string(a.Dimension)).
			Int("left_len", a.LeftLen).
			Int("right_len", a.RightLen).
			Msg("Generations differ in length; variability uses the left length")
	}
}

// Engine computes variability metrics over generated exams.
type Engine struct {
	sink Sink
}

// Option configures an Engine.
type Option func(*Engine)

// WithSink routes anomalies to s. A nil sink discards them.
func WithSink(s Sink) Option {
	return func(e *Engine) {
		e.sink = s
	}
}

// NewEngine creates an Engine that discards anomalies unless a sink is set.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.sink == nil {
		e.sink = func(Anomaly) {}
	}
	return e
}

// Compare is Between with length mismatches reported to the sink.
func (e *Engine) Compare(dim Dimension, a, b []string) float64 {
	if len(a) != len(b) {
		e.sink(Anomaly{Dimension: dim, LeftLen: len(a), RightLen: len(b)})
	}
	return Between(a, b)
}

// Metrics is the per-environment row set shown in the variability table.
type Metrics struct {
	TotalGenerations       int    `json:"totalGenerations"`
	DeprecatedGenerations  int    `json:"deprecatedGenerations"`
	QuestionVariability    string `json:"questionVariability"`
	QuestionVariabilityMax string `json:"questionVariabilityMax"`
	QuestionVariabilityMin string `json:"questionVariabilityMin"`
	AnswerVariability      string `json:"answerVariability"`
	AnswerVariabilityMax   string `json:"answerVariabilityMax"`
	AnswerVariabilityMin   string `json:"answerVariabilityMin"`
}

// EmptyMetrics is the placeholder for an environment without generations.
func EmptyMetrics() Metrics {
	return Metrics{
		QuestionVariability:    NoData,
		QuestionVariabilityMax: NoData,
		QuestionVariabilityMin: NoData,
		AnswerVariability:      NoData,
		AnswerVariabilityMax:   NoData,
		AnswerVariabilityMin:   NoData,
	}
}

// GenerationMetrics rolls up question and answer variability for the
// generations of one exam in one environment. Deprecated generations are
// included in every figure and additionally counted on their own.
func (e *Engine) GenerationMetrics(generations []model.GeneratedExam) Metrics {
	deprecated := 0
	for _, g := range generations {
		if g.Deprecated {
			deprecated++
		}
	}

	if len(generations) == 0 {
		m := EmptyMetrics()
		m.DeprecatedGenerations = deprecated
		return m
	}

	questions := e.summarize(DimensionQuestions, generations, QuestionIDs)
	answers := e.summarize(DimensionAnswers, generations, AnswerIDs)

	return Metrics{
		TotalGenerations:       len(generations),
		DeprecatedGenerations:  deprecated,
		QuestionVariability:    format(questions.Mean),
		QuestionVariabilityMax: format(questions.Max),
		QuestionVariabilityMin: format(questions.Min),
		AnswerVariability:      format(answers.Mean),
		AnswerVariabilityMax:   format(answers.Max),
		AnswerVariabilityMin:   format(answers.Min),
	}
}

func (e *Engine) summarize(dim Dimension, generations []model.GeneratedExam, extract func(model.GeneratedExam) []string) Summary {
	sets := make([][]string, len(generations))
	for i, g := range generations {
		sets[i] = extract(g)
	}

	scores := PairwiseCompare(sets, func(a, b []string) float64 {
		return e.Compare(dim, a, b)
	})
	return Summarize(scores)
}

// QuestionIDs flattens question sets into question ids, in order.
func QuestionIDs(g model.GeneratedExam) []string {
	var ids []string
	for _, set := range g.QuestionSets {
		for _, q := range set.Questions {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

// AnswerIDs flattens question sets and questions into answer ids, in order.
func AnswerIDs(g model.GeneratedExam) []string {
	var ids []string
	for _, set := range g.QuestionSets {
		for _, q := range set.Questions {
			ids = append(ids, q.Answers...)
		}
	}
	return ids
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
