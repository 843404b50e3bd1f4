package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// KV holds small settings: provider API keys, the forced provider and the
// practice hand-off.
type KV struct {
	ent.Schema
}

func (KV) Fields() []ent.Field {
	return []ent.Field{
		field.String("key").
			Unique().
			Immutable(),
		field.Text("value"),
		field.Time("updated_at"),
	}
}
