package store

import (
	"testing"

	"entgo.io/ent"
	"entgo.io/ent/dialect/sql/schema"

	entschema "github.com/abhisek/prepwise/ent/schema"
)

// entity is the part of an ent schema the migration tables mirror.
type entity interface {
	Fields() []ent.Field
	Mixin() []ent.Mixin
}

func fieldNames(e entity) []string {
	var names []string
	for _, m := range e.Mixin() {
		for _, f := range m.Fields() {
			names = append(names, f.Descriptor().Name)
		}
	}
	for _, f := range e.Fields() {
		names = append(names, f.Descriptor().Name)
	}
	return names
}

func columnNames(t *schema.Table) []string {
	var names []string
	for _, c := range t.Columns {
		if c.Name == "id" {
			continue
		}
		names = append(names, c.Name)
	}
	return names
}

func TestTablesMatchEntSchema(t *testing.T) {
	tests := []struct {
		table  *schema.Table
		entity entity
	}{
		{llmRequestEventsTable, entschema.LLMRequestEvent{}},
		{evaluationEventsTable, entschema.EvaluationEvent{}},
		{quizEventsTable, entschema.QuizEvent{}},
		{kvTable, entschema.KV{}},
	}

	for _, tt := range tests {
		t.Run(tt.table.Name, func(t *testing.T) {
			got := columnNames(tt.table)
			want := fieldNames(tt.entity)
			if len(got) != len(want) {
				t.Fatalf("columns %v, ent fields %v", got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("column %d = %q, ent field %q", i, got[i], want[i])
				}
			}
		})
	}
}
