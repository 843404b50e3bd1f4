package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var evaluationEventFields = []string{
	"id", "sequence", "timestamp", "run_id", "question", "answer",
	"rating_mode", "evaluation_type", "state", "provider", "fallback",
	"overall_score", "insight_count", "latency_ms", "error_message", "result",
}

func (r *eventRepo) AppendEvaluation(ctx context.Context, data EvaluationEventData) error {
	err := r.insertEvent(ctx, tableEvaluationEvents,
		[]string{
			"run_id", "question", "answer", "rating_mode", "evaluation_type",
			"state", "provider", "fallback", "overall_score", "insight_count",
			"latency_ms", "error_message", "result",
		},
		[]any{
			data.RunID, data.Question, data.Answer, data.RatingMode, data.EvaluationType,
			data.State, data.Provider, data.Fallback, data.OverallScore, data.InsightCount,
			data.LatencyMs, data.ErrorMessage, data.Result,
		},
	)
	if err != nil {
		return fmt.Errorf("save evaluation event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryEvaluations(ctx context.Context, opts QueryOpts) ([]EvaluationEvent, error) {
	sel := builder().Select(evaluationEventFields...).From(entsql.Table(tableEvaluationEvents))
	query, args := applyQueryOpts(sel, opts).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query evaluation events: %w", err)
	}
	defer rows.Close()

	var events []EvaluationEvent
	for rows.Next() {
		var e EvaluationEvent
		err := rows.Scan(
			&e.ID, &e.Sequence, &e.Timestamp, &e.RunID, &e.Question, &e.Answer,
			&e.RatingMode, &e.EvaluationType, &e.State, &e.Provider, &e.Fallback,
			&e.OverallScore, &e.InsightCount, &e.LatencyMs, &e.ErrorMessage, &e.Result,
		)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
