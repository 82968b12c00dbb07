package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// TimelineEvent is an append-only per-session event log used for the
// graph-viz live push and for catch-up after a dropped connection, grounded
// on the teacher's pkg/events TimelineEvent/catch-up mechanism
// (ConnectionManager, CatchupQuerier).
type TimelineEvent struct {
	ent.Schema
}

func (TimelineEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("id"),
		field.String("session_id").NotEmpty(),
		field.Int64("seq").Default(0),
		field.String("event_type").NotEmpty(),
		field.Text("payload_json").Optional(),
		field.Time("created_at").Default(time.Now),
	}
}

func (TimelineEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id", "seq"),
	}
}
