package evaluation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/prepwise/internal/llm"
)

// Evaluator scores an answer.
type Evaluator interface {
	Evaluate(ctx context.Context, req Request) (*Evaluation, error)
}

// Dispatcher sends a request to the best available provider. It is
// satisfied by *llm.Registry.
type Dispatcher interface {
	GenerateWithBest(ctx context.Context, req llm.Request) (*llm.Response, string, error)
}

// AIEvaluator scores answers with an LLM.
type AIEvaluator struct {
	llm Dispatcher
	cfg Config
}

// NewAIEvaluator creates an evaluator backed by d.
func NewAIEvaluator(d Dispatcher, cfg Config) *AIEvaluator {
	return &AIEvaluator{llm: d, cfg: cfg}
}

func (e *AIEvaluator) Evaluate(ctx context.Context, req Request) (*Evaluation, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeEvaluation)

	resp, provider, err := e.llm.GenerateWithBest(ctx, llm.Request{
		System: buildEvaluationSystemPrompt(req),
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildEvaluationUserMessage(req)},
		},
		Schema:      evaluationSchema(req.Type),
		MaxTokens:   e.cfg.EvaluationMaxTokens,
		Temperature: e.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("ai evaluation: %w", err)
	}

	var ev Evaluation
	if err := json.Unmarshal(resp.Content, &ev); err != nil {
		return nil, fmt.Errorf("parse evaluation response: %w", err)
	}
	ev.normalize()
	ev.Provider = provider
	ev.Type = req.Type
	ev.RatingMode = req.RatingMode
	if req.Type != TypeDetailed {
		ev.KeyPointsMissed = nil
	}
	return &ev, nil
}
