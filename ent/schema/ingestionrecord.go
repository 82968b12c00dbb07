package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// IngestionRecord is the bookkeeping row for one ingested artefact: its
// content hash, classification, and outcome counters. It is the durable
// side of the Ingestion Pipeline's re-upload semantics (spec.md §4.2); the
// actual entities/vectors live in the Graph/Vector Stores. Grounded on the
// teacher's AlertSession entity shape (status/timestamps/counters), with
// File-centric fields replacing alert-centric ones.
type IngestionRecord struct {
	ent.Schema
}

func (IngestionRecord) Fields() []ent.Field {
	return []ent.Field{
		field.String("id"),
		field.String("file_hash").NotEmpty(),
		field.String("filename"),
		field.String("mime").Optional(),
		field.Int64("size_bytes").Default(0),
		field.Enum("status").
			Values("pending", "processing", "completed", "failed", "duplicate").
			Default("pending"),
		field.String("source_type").Optional(),
		field.Int("chunks_stored").Default(0),
		field.Int("facts_extracted").Default(0),
		field.String("superseded_file_hash").Optional(),
		field.String("error").Optional(),
		field.Time("created_at").Default(time.Now),
		field.Time("updated_at").Default(time.Now).UpdateDefault(time.Now),
	}
}

func (IngestionRecord) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("file_hash").Unique(),
		index.Fields("filename"),
		index.Fields("status"),
	}
}
