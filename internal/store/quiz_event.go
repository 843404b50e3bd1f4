package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendQuizResult(ctx context.Context, data QuizEventData) error {
	err := r.insertEvent(ctx, tableQuizEvents,
		[]string{"session_id", "category", "total_questions", "answered", "score", "duration_secs"},
		[]any{data.SessionID, data.Category, data.TotalQuestions, data.Answered, data.Score, data.DurationSecs},
	)
	if err != nil {
		return fmt.Errorf("save quiz event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryQuizResults(ctx context.Context, opts QueryOpts) ([]QuizEvent, error) {
	sel := builder().Select(
		"id", "sequence", "timestamp", "session_id", "category",
		"total_questions", "answered", "score", "duration_secs",
	).From(entsql.Table(tableQuizEvents))
	query, args := applyQueryOpts(sel, opts).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query quiz events: %w", err)
	}
	defer rows.Close()

	var events []QuizEvent
	for rows.Next() {
		var e QuizEvent
		err := rows.Scan(
			&e.ID, &e.Sequence, &e.Timestamp, &e.SessionID, &e.Category,
			&e.TotalQuestions, &e.Answered, &e.Score, &e.DurationSecs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan quiz event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
