// Package database owns the orchestrator's private bookkeeping store: chat
// turn audit, tool invocation/LLM interaction logs, ingestion records,
// timeline events, the background job queue, and backup records. It is
// NOT the domain Graph Store (spec.md treats that as an external network
// service) — this is the orchestrator's own operational database, ported
// from the teacher's pkg/database package.
package database

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"log/slog"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/rafiq-ai/rafiq/ent"
)

// Config configures the bookkeeping database connection.
type Config struct {
	DSN             string
	MaxOpenConns    int
	ConnMaxLifetime int64 // seconds
}

// NewClient opens a pgx-backed *ent.Client against cfg.DSN.
func NewClient(cfg Config) (*ent.Client, error) {
	sqlDB, err := stdsql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	client := ent.NewClient(ent.Driver(entsql.OpenDB(dialect.Postgres, sqlDB)))
	slog.Info("bookkeeping database client created")
	return client, nil
}

// RunMigrations applies the ent-managed schema, creating tables/indexes
// that do not yet exist. cmd/rafiq calls this at startup. MigrateUp
// (pkg/database/migrations.go) is the golang-migrate file-based
// alternative; cmd/rafiq does not call it.
func RunMigrations(ctx context.Context, client *ent.Client) error {
	if err := client.Schema.Create(ctx); err != nil {
		return fmt.Errorf("run ent schema migration: %w", err)
	}
	return nil
}
