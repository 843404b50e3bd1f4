package evaluation

import "time"

// Config holds orchestration and generation settings.
type Config struct {
	EvaluationTimeout time.Duration
	InsightTimeout    time.Duration
	InsightCount      int

	EvaluationMaxTokens int
	InsightMaxTokens    int
	Temperature         float64
}

// DefaultConfig returns the standard timeouts: 60s for the evaluation,
// 30s for insights, and three insights.
func DefaultConfig() Config {
	return Config{
		EvaluationTimeout:   60 * time.Second,
		InsightTimeout:      30 * time.Second,
		InsightCount:        3,
		EvaluationMaxTokens: 1024,
		InsightMaxTokens:    300,
		Temperature:         0.2,
	}
}
