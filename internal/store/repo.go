package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM usage for one model ID.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EvaluationEventData records one run of the evaluation orchestrator.
type EvaluationEventData struct {
	RunID          string
	Question       string
	Answer         string
	RatingMode     string
	EvaluationType string
	State          string
	Provider       string
	Fallback       bool
	OverallScore   float64
	InsightCount   int
	LatencyMs      int64
	ErrorMessage   string
	// Result is the JSON-encoded evaluation, empty when the run failed.
	Result string
}

// EvaluationEvent is a stored evaluation event.
type EvaluationEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	EvaluationEventData
}

// QuizEventData records a submitted quiz.
type QuizEventData struct {
	SessionID      string
	Category       string
	TotalQuestions int
	Answered       int
	Score          int
	DurationSecs   int
}

// QuizEvent is a stored quiz result.
type QuizEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	QuizEventData
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)
	// GetLLMEvent returns a single LLM event, or nil if it doesn't exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)
	// LLMUsageByPurpose aggregates calls and tokens per purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	// LLMUsageByModel aggregates calls and tokens per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)

	// AppendEvaluation records one evaluation run.
	AppendEvaluation(ctx context.Context, data EvaluationEventData) error
	// QueryEvaluations returns evaluation events, newest first.
	QueryEvaluations(ctx context.Context, opts QueryOpts) ([]EvaluationEvent, error)

	// AppendQuizResult records a submitted quiz.
	AppendQuizResult(ctx context.Context, data QuizEventData) error
	// QueryQuizResults returns quiz results, newest first.
	QueryQuizResults(ctx context.Context, opts QueryOpts) ([]QuizEvent, error)
}

// KVRepo is a small string key-value store for API keys, the forced
// provider and the question/response hand-off between screens.
type KVRepo interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set creates or replaces the value for key.
	Set(ctx context.Context, key, value string) error
	// SetAll writes every entry in one transaction; on error none are kept.
	SetAll(ctx context.Context, values map[string]string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns all entries whose key starts with prefix.
	List(ctx context.Context, prefix string) (map[string]string, error)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
