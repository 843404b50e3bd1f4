package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// QuizEvent records a submitted aptitude quiz.
type QuizEvent struct {
	ent.Schema
}

func (QuizEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (QuizEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id"),
		field.String("category"),
		field.Int("total_questions"),
		field.Int("answered"),
		field.Int("score").
			Comment("Correct answers; unanswered questions count as wrong"),
		field.Int("duration_secs"),
	}
}

func (QuizEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("category"),
	}
}
