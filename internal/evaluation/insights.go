package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/prepwise/internal/llm"
)

// InsightSource produces short insights about an answer.
type InsightSource interface {
	Insights(ctx context.Context, req Request) ([]string, error)
}

// InsightGenerator asks an LLM for exactly Config.InsightCount insights.
type InsightGenerator struct {
	llm Dispatcher
	cfg Config
}

// NewInsightGenerator creates an insight generator backed by d.
func NewInsightGenerator(d Dispatcher, cfg Config) *InsightGenerator {
	if cfg.InsightCount < 1 {
		cfg.InsightCount = DefaultConfig().InsightCount
	}
	return &InsightGenerator{llm: d, cfg: cfg}
}

type insightsOutput struct {
	Insights []string `json:"insights"`
}

// Insights returns exactly InsightCount non-blank insights or an error.
func (g *InsightGenerator) Insights(ctx context.Context, req Request) ([]string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeInsights)
	n := g.cfg.InsightCount

	resp, _, err := g.llm.GenerateWithBest(ctx, llm.Request{
		System: insightsSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildInsightsUserMessage(req, n)},
		},
		Schema:      InsightsSchema(n),
		MaxTokens:   g.cfg.InsightMaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("insights: %w", err)
	}

	var out insightsOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse insights response: %w", err)
	}

	insights := make([]string, 0, n)
	for _, s := range out.Insights {
		if s = strings.TrimSpace(s); s != "" {
			insights = append(insights, s)
		}
	}
	if len(insights) != n {
		return nil, fmt.Errorf("insights: got %d, want %d", len(insights), n)
	}
	return insights, nil
}
