package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// BackupRecord is the bookkeeping row for one Backup Service run (§4.10):
// its snapshot timestamp and the item counts it exported. The Backup
// Service, its retention cleanup and the /backup list endpoint work from
// the snapshot files in the data directory and do not read or write
// these rows.
type BackupRecord struct {
	ent.Schema
}

func (BackupRecord) Fields() []ent.Field {
	return []ent.Field{
		field.String("id"),
		field.String("timestamp").NotEmpty().Comment("timestamp token of the rafiq-backup-<timestamp>.json snapshot file"),
		field.Int("node_count").Default(0),
		field.Int("edge_count").Default(0),
		field.Int("vector_count").Default(0),
		field.Int("memory_key_count").Default(0),
		field.Enum("status").
			Values("completed", "failed").
			Default("completed"),
		field.String("error").Optional(),
		field.Time("created_at").Default(time.Now),
	}
}

func (BackupRecord) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("timestamp").Unique(),
		index.Fields("created_at"),
	}
}
