package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ReviewEvent records a single graded review for history and accuracy stats.
type ReviewEvent struct {
	ent.Schema
}

func (ReviewEvent) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "review_events"},
	}
}

func (ReviewEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (ReviewEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("user_id").NotEmpty(),
		field.String("collection_id").NotEmpty(),
		field.String("item_id").NotEmpty(),
		field.String("session_id").Optional(),
		field.Int("quality").Min(0).Max(5),
		field.Bool("correct"),
		field.Int("strength_before"),
		field.Int("strength_after"),
		field.Int("interval_days"),
	}
}

func (ReviewEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "collection_id"),
		index.Fields("item_id"),
	}
}
