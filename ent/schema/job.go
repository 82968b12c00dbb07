package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Job is a durable background-work queue row claimed by the worker pool
// (pkg/queue) using FOR UPDATE SKIP LOCKED, exactly as the teacher's
// AlertSession claiming mechanism (pkg/queue/worker.go). It generalizes
// the teacher's alert-investigation queue to this system's two background
// job kinds: post-processing (spec.md §4.1 post-processing list) and
// ingestion (spec.md §4.2).
type Job struct {
	ent.Schema
}

func (Job) Fields() []ent.Field {
	return []ent.Field{
		field.String("id"),
		field.Enum("kind").
			Values("post_process", "ingest_text", "ingest_file", "ingest_url"),
		field.String("session_id").Optional(),
		field.Text("payload_json"),
		field.Enum("status").
			Values("pending", "in_progress", "completed", "failed").
			Default("pending"),
		field.String("pod_id").Optional(),
		field.Int("attempts").Default(0),
		field.String("error").Optional(),
		field.Time("created_at").Default(time.Now),
		field.Time("started_at").Optional().Nillable(),
		field.Time("completed_at").Optional().Nillable(),
		field.Time("last_heartbeat_at").Optional().Nillable(),
	}
}

func (Job) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status", "created_at"),
		index.Fields("kind"),
	}
}
