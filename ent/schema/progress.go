package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Progress holds one learner's spaced repetition state for one item of a
// collection. Status is derived from strength and is not a column.
type Progress struct {
	ent.Schema
}

func (Progress) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "progress"},
	}
}

func (Progress) Fields() []ent.Field {
	return []ent.Field{
		field.String("user_id").NotEmpty(),
		field.String("collection_id").NotEmpty(),
		field.String("item_id").NotEmpty(),
		field.Int("strength").
			Min(0).Max(5).
			Default(0),
		field.Float("ease_factor").
			Min(1.3).
			Default(2.5),
		field.Int("interval_days").
			NonNegative().
			Default(0),
		field.Int("review_count").NonNegative().Default(0),
		field.Int("correct_count").NonNegative().Default(0),
		field.Int("incorrect_count").NonNegative().Default(0),
		field.Time("last_reviewed_at"),
		field.Time("next_review_at"),
		field.Int64("version").
			Default(1).
			Comment("Optimistic concurrency counter, bumped on every write"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

func (Progress) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "collection_id", "item_id").Unique(),
		index.Fields("user_id", "collection_id", "next_review_at"),
	}
}
