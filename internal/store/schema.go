package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names shared by the repositories.
const (
	tableLLMRequestEvents = "llm_request_events"
	tableEvaluationEvents = "evaluation_events"
	tableQuizEvents       = "quiz_events"
	tableKV               = "kv"
)

// Every event table starts with the same id/sequence/timestamp triple so the
// global sequence counter can order events across tables.
func eventColumns(extra ...*schema.Column) []*schema.Column {
	cols := []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
	}
	return append(cols, extra...)
}

var (
	llmRequestEventsColumns = eventColumns(
		&schema.Column{Name: "provider", Type: field.TypeString},
		&schema.Column{Name: "model", Type: field.TypeString},
		&schema.Column{Name: "purpose", Type: field.TypeString},
		&schema.Column{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: "success", Type: field.TypeBool},
		&schema.Column{Name: "error_message", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		&schema.Column{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	)
	llmRequestEventsTable = &schema.Table{
		Name:       tableLLMRequestEvents,
		Columns:    llmRequestEventsColumns,
		PrimaryKey: []*schema.Column{llmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{llmRequestEventsColumns[2]}},
			{Name: "llmrequestevent_provider", Columns: []*schema.Column{llmRequestEventsColumns[3]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmRequestEventsColumns[5]}},
		},
	}

	evaluationEventsColumns = eventColumns(
		&schema.Column{Name: "run_id", Type: field.TypeString},
		&schema.Column{Name: "question", Type: field.TypeString, Size: 2147483647},
		&schema.Column{Name: "answer", Type: field.TypeString, Size: 2147483647},
		&schema.Column{Name: "rating_mode", Type: field.TypeString},
		&schema.Column{Name: "evaluation_type", Type: field.TypeString},
		&schema.Column{Name: "state", Type: field.TypeString},
		&schema.Column{Name: "provider", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "fallback", Type: field.TypeBool, Default: false},
		&schema.Column{Name: "overall_score", Type: field.TypeFloat64, Default: 0},
		&schema.Column{Name: "insight_count", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: "error_message", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "result", Type: field.TypeString, Size: 2147483647, Default: ""},
	)
	evaluationEventsTable = &schema.Table{
		Name:       tableEvaluationEvents,
		Columns:    evaluationEventsColumns,
		PrimaryKey: []*schema.Column{evaluationEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "evaluationevent_timestamp", Columns: []*schema.Column{evaluationEventsColumns[2]}},
			{Name: "evaluationevent_state", Columns: []*schema.Column{evaluationEventsColumns[8]}},
		},
	}

	quizEventsColumns = eventColumns(
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "category", Type: field.TypeString},
		&schema.Column{Name: "total_questions", Type: field.TypeInt},
		&schema.Column{Name: "answered", Type: field.TypeInt},
		&schema.Column{Name: "score", Type: field.TypeInt},
		&schema.Column{Name: "duration_secs", Type: field.TypeInt},
	)
	quizEventsTable = &schema.Table{
		Name:       tableQuizEvents,
		Columns:    quizEventsColumns,
		PrimaryKey: []*schema.Column{quizEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "quizevent_category", Columns: []*schema.Column{quizEventsColumns[4]}},
		},
	}

	kvColumns = []*schema.Column{
		{Name: "key", Type: field.TypeString, Unique: true},
		{Name: "value", Type: field.TypeString, Size: 2147483647},
		{Name: "updated_at", Type: field.TypeTime},
	}
	kvTable = &schema.Table{
		Name:       tableKV,
		Columns:    kvColumns,
		PrimaryKey: []*schema.Column{kvColumns[0]},
	}

	tables = []*schema.Table{
		llmRequestEventsTable,
		evaluationEventsTable,
		quizEventsTable,
		kvTable,
	}
)

// migrate creates or updates all tables.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
