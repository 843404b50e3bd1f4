package evaluation

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrEmptyAnswer is returned when the question or answer is blank.
var ErrEmptyAnswer = errors.New("question and answer are required")

// ErrUnscorable is returned by the mock generator for answers with no words.
var ErrUnscorable = errors.New("answer contains nothing to score")

// RatingMode is the scoring stance passed to the evaluator.
type RatingMode string

const (
	RatingTough   RatingMode = "tough"
	RatingLenient RatingMode = "lenient"
)

// Type selects how much feedback the evaluator produces.
type Type string

const (
	TypeSimple   Type = "simple"
	TypeDetailed Type = "detailed"
)

// ParseRatingMode accepts "tough" or "lenient"; empty means tough.
func ParseRatingMode(s string) (RatingMode, error) {
	switch RatingMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", RatingTough:
		return RatingTough, nil
	case RatingLenient:
		return RatingLenient, nil
	}
	return "", fmt.Errorf("unknown rating mode %q (want tough or lenient)", s)
}

// ParseType accepts "simple" or "detailed"; empty means simple.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case "", TypeSimple:
		return TypeSimple, nil
	case TypeDetailed:
		return TypeDetailed, nil
	}
	return "", fmt.Errorf("unknown evaluation type %q (want simple or detailed)", s)
}

// Evaluation is a scored assessment of one interview answer. The JSON
// shape matches what the model is asked to produce.
type Evaluation struct {
	OverallScore     float64  `json:"overall_score"`
	Clarity          float64  `json:"clarity"`
	Relevance        float64  `json:"relevance"`
	CriticalThinking float64  `json:"critical_thinking"`
	Thoroughness     float64  `json:"thoroughness"`
	Feedback         string   `json:"feedback"`
	Strengths        []string `json:"strengths"`
	Improvements     []string `json:"improvements"`
	KeyPointsMissed  []string `json:"key_points_missed,omitempty"`

	Provider   string     `json:"provider"`
	Type       Type       `json:"type"`
	RatingMode RatingMode `json:"rating_mode"`

	// Fallback is true when the local mock generator produced the result.
	Fallback bool `json:"fallback"`
}

// MaxScore is the top of every score scale.
const MaxScore = 10.0

// normalize clamps scores into [0, MaxScore] rounded to one decimal and
// drops blank list entries.
func (e *Evaluation) normalize() {
	for _, s := range []*float64{&e.OverallScore, &e.Clarity, &e.Relevance, &e.CriticalThinking, &e.Thoroughness} {
		*s = clampScore(*s)
	}
	e.Feedback = strings.TrimSpace(e.Feedback)
	e.Strengths = compact(e.Strengths)
	e.Improvements = compact(e.Improvements)
	e.KeyPointsMissed = compact(e.KeyPointsMissed)
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > MaxScore {
		return MaxScore
	}
	return math.Round(v*10) / 10
}

func compact(items []string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Request is one question/answer pair to evaluate.
type Request struct {
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	RatingMode RatingMode `json:"rating_mode"`
	Type       Type       `json:"type"`
}

// Validate checks required fields and fills defaults for mode and type.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Question) == "" || strings.TrimSpace(r.Answer) == "" {
		return ErrEmptyAnswer
	}
	mode, err := ParseRatingMode(string(r.RatingMode))
	if err != nil {
		return err
	}
	typ, err := ParseType(string(r.Type))
	if err != nil {
		return err
	}
	r.RatingMode, r.Type = mode, typ
	return nil
}

// State is the terminal state of an orchestrated evaluation.
type State string

const (
	// StateComplete means an evaluation was produced, by AI or fallback.
	StateComplete State = "complete"

	// StateFailed means both the AI call and the fallback failed.
	StateFailed State = "failed"

	// StateMissingKeys means no provider has an API key.
	StateMissingKeys State = "missing_keys"
)

// Result is what an orchestrated run hands back to the caller.
type Result struct {
	RunID string `json:"run_id"`
	State State  `json:"state"`

	// Evaluation is nil unless State is StateComplete.
	Evaluation *Evaluation `json:"evaluation,omitempty"`

	// Insights holds AI insights; empty when they failed or timed out,
	// in which case Tips carries static advice instead.
	Insights []string `json:"insights"`
	Tips     []string `json:"tips,omitempty"`

	// Error is a user-facing message for StateFailed and StateMissingKeys.
	Error string `json:"error,omitempty"`

	Duration time.Duration `json:"duration_ns"`
}
