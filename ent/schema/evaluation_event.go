package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// EvaluationEvent records one orchestrated answer evaluation, including
// runs that failed or found no API key.
type EvaluationEvent struct {
	ent.Schema
}

func (EvaluationEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (EvaluationEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("run_id"),
		field.Text("question"),
		field.Text("answer"),
		field.String("rating_mode").
			Comment("tough or lenient"),
		field.String("evaluation_type").
			Comment("simple or detailed"),
		field.String("state").
			Comment("complete, failed or missing_keys"),
		field.String("provider").
			Default("").
			Comment("Provider that produced the evaluation; mock for the fallback"),
		field.Bool("fallback").
			Default(false),
		field.Float("overall_score").
			Default(0),
		field.Int("insight_count").
			Default(0),
		field.Int64("latency_ms").
			Default(0),
		field.String("error_message").
			Default(""),
		field.Text("result").
			Default("").
			Comment("JSON-encoded result as shown to the user"),
	}
}

func (EvaluationEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("state"),
	}
}
