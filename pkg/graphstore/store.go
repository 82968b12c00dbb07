// Package graphstore is the low-level Cypher transport to the knowledge
// graph (spec.md §2 "Graph Store": "the single source of truth for all
// structured personal data"). It knows nothing about entity types or
// invariants — pkg/graph builds Cypher and hands it here. Structurally
// grounded on tarsy's pkg/mcp.Client: a pooled driver, a single retry with
// jittered backoff on transient failures, and context-scoped per-call
// timeouts — generalized from MCP session recovery to Neo4j's own
// transient-error classification (neo4j-go-driver/v5 is an ecosystem
// addition; no Cypher driver exists anywhere in the retrieval pack).
package graphstore

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/rafiq-ai/rafiq/pkg/config"
)

const (
	operationTimeout = 10 * time.Second
	retryBackoffMin  = 50 * time.Millisecond
	retryBackoffMax  = 250 * time.Millisecond
)

// Store is a pooled handle to the Neo4j driver.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
}

// New dials the graph database. The driver itself pools connections; there
// is no per-session state to manage here.
func New(cfg config.GraphConfig) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("graphstore: new driver: %w", err)
	}
	return &Store{driver: driver, database: cfg.Database}, nil
}

// Record is one returned Cypher row, keyed by the query's RETURN aliases.
type Record map[string]any

// Query runs cypher through the driver's ExecuteQuery (a managed
// transaction with the driver's default writer routing, so it serves both
// reads and MERGE/CREATE writes) and returns all rows.
// One retry is attempted on a transient Neo4j error after a short jittered
// backoff, mirroring the single-retry idiom used for MCP tool calls.
func (s *Store) Query(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	records, err := s.run(ctx, cypher, params)
	if err == nil {
		return records, nil
	}
	if !neo4j.IsRetryable(err) {
		return nil, fmt.Errorf("graphstore: query: %w", err)
	}

	backoff := retryBackoffMin + time.Duration(rand.Int64N(int64(retryBackoffMax-retryBackoffMin)))
	select {
	case <-time.After(backoff):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	records, err = s.run(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("graphstore: query retry failed: %w", err)
	}
	return records, nil
}

func (s *Store) run(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	opCtx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	result, err := neo4j.ExecuteQuery(opCtx, s.driver, cypher, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
	)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(result.Records))
	for _, rec := range result.Records {
		row := make(Record, len(rec.Keys))
		for _, key := range rec.Keys {
			val, _ := rec.Get(key)
			row[key] = val
		}
		records = append(records, row)
	}
	return records, nil
}

// Health probes connectivity, used by the aggregated /health endpoint.
func (s *Store) Health(ctx context.Context) error {
	opCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.driver.VerifyConnectivity(opCtx)
}

// Close shuts down the driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
