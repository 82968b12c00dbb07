// Package memorystore is the three-namespace conversational memory backing
// store (spec.md §4.8: working / daily / core, plus pending-action and
// active-project scratch keys). Grounded on goadesign/goa-ai's use of
// redis/go-redis/v9 as the ecosystem's standard Redis client (no other pack
// repo touches Redis); the per-normalised-name serialization lock is
// grounded structurally on tarsy's per-server reinitMu idiom
// (pkg/mcp/client.go: sync.Map of *sync.Mutex, LoadOrStore keyed by name).
package memorystore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rafiq-ai/rafiq/pkg/config"
)

const (
	workingTTL            = 24 * time.Hour
	dailyTTL              = 7 * 24 * time.Hour
	pendingTTL            = 300 * time.Second
	defaultCompressionCap = 15
	keptAfterCompression  = 4
)

// Store is the pooled Redis client plus the resolution-lock registry.
type Store struct {
	rdb *redis.Client

	// nameLocks serialises entity-resolution read-then-write cycles for the
	// same normalised name (spec.md §5: "concurrent resolution of the same
	// name must serialise, done with a per-normalised-name lock").
	nameLocks sync.Map // string -> *sync.Mutex
}

// New connects to Redis.
func New(cfg config.MemoryConfig) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Store{rdb: rdb}
}

// Turn is one working-memory entry.
type Turn struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	TS      time.Time `json:"ts"`
}

func workingKey(sessionID string) string { return "working:" + sessionID }
func summaryKey(sessionID string) string { return "conversation_summary:" + sessionID }
func dailyKey(sessionID string) string   { return "daily:" + sessionID }
func coreKey(sessionID string) string    { return "core:" + sessionID }
func pendingKey(sessionID string) string { return "pending:" + sessionID }
func activeProjectKey(sessionID string) string { return "active_project:" + sessionID }

// AppendWorkingTurn pushes a turn onto the session's working-memory list
// and refreshes its 24h TTL. Returns the current length so the caller can
// decide whether compression is due.
func (s *Store) AppendWorkingTurn(ctx context.Context, sessionID string, turn Turn) (int64, error) {
	data, err := json.Marshal(turn)
	if err != nil {
		return 0, fmt.Errorf("memorystore: marshal turn: %w", err)
	}
	key := workingKey(sessionID)

	pipe := s.rdb.TxPipeline()
	pushCmd := pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, workingTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("memorystore: append working turn: %w", err)
	}
	return pushCmd.Val(), nil
}

// WorkingTurns returns the full working-memory list for a session, oldest
// first.
func (s *Store) WorkingTurns(ctx context.Context, sessionID string) ([]Turn, error) {
	raw, err := s.rdb.LRange(ctx, workingKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("memorystore: read working turns: %w", err)
	}
	turns := make([]Turn, 0, len(raw))
	for _, item := range raw {
		var t Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			continue
		}
		turns = append(turns, t)
	}
	return turns, nil
}

// CompressionDue reports whether the working memory has grown past the
// configured threshold and needs compress_working_memory to run.
func (s *Store) CompressionDue(ctx context.Context, sessionID string, threshold int) (bool, error) {
	if threshold <= 0 {
		threshold = defaultCompressionCap
	}
	n, err := s.rdb.LLen(ctx, workingKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("memorystore: llen working: %w", err)
	}
	return n > int64(threshold), nil
}

// CompressWorkingMemory keeps only the last keptAfterCompression turns and
// stores summary (produced by the caller, typically via
// llmgateway.Summarise) under conversation_summary:{session} with a 24h
// TTL, per spec.md §4.8.
func (s *Store) CompressWorkingMemory(ctx context.Context, sessionID, summary string) error {
	key := workingKey(sessionID)

	pipe := s.rdb.TxPipeline()
	pipe.LTrim(ctx, key, -keptAfterCompression, -1)
	pipe.Set(ctx, summaryKey(sessionID), summary, workingTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("memorystore: compress working memory: %w", err)
	}
	return nil
}

// ConversationSummary returns the most recent compression summary, if any.
func (s *Store) ConversationSummary(ctx context.Context, sessionID string) (string, error) {
	val, err := s.rdb.Get(ctx, summaryKey(sessionID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("memorystore: read conversation summary: %w", err)
	}
	return val, nil
}

// SetDailySummary writes today's rollup (hash field YYYY-MM-DD) with a
// fresh 7-day TTL on the entry's containing hash.
func (s *Store) SetDailySummary(ctx context.Context, sessionID, date, summary string) error {
	key := dailyKey(sessionID)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, date, summary)
	pipe.Expire(ctx, key, dailyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("memorystore: set daily summary: %w", err)
	}
	return nil
}

// DailySummaries returns the full date->summary hash for a session.
func (s *Store) DailySummaries(ctx context.Context, sessionID string) (map[string]string, error) {
	m, err := s.rdb.HGetAll(ctx, dailyKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("memorystore: read daily summaries: %w", err)
	}
	return m, nil
}

// SetCorePreference writes a permanent user preference/pattern field.
func (s *Store) SetCorePreference(ctx context.Context, sessionID, field, value string) error {
	if err := s.rdb.HSet(ctx, coreKey(sessionID), field, value).Err(); err != nil {
		return fmt.Errorf("memorystore: set core preference: %w", err)
	}
	return nil
}

// CorePreferences returns the permanent preference hash.
func (s *Store) CorePreferences(ctx context.Context, sessionID string) (map[string]string, error) {
	m, err := s.rdb.HGetAll(ctx, coreKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("memorystore: read core preferences: %w", err)
	}
	return m, nil
}

// SetPendingAction stashes a confirmation-awaiting action (delete/cancel)
// for 300s, per spec.md §4.8.
func (s *Store) SetPendingAction(ctx context.Context, sessionID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("memorystore: marshal pending action: %w", err)
	}
	if err := s.rdb.Set(ctx, pendingKey(sessionID), data, pendingTTL).Err(); err != nil {
		return fmt.Errorf("memorystore: set pending action: %w", err)
	}
	return nil
}

// PendingAction fetches and decodes the pending action, if one is still
// live (expiry is resolved lazily by Redis TTL, per spec.md §5).
func (s *Store) PendingAction(ctx context.Context, sessionID string, out any) (bool, error) {
	raw, err := s.rdb.Get(ctx, pendingKey(sessionID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("memorystore: get pending action: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("memorystore: unmarshal pending action: %w", err)
	}
	return true, nil
}

// ClearPendingAction removes a pending action once resolved (confirmed or
// explicitly cancelled).
func (s *Store) ClearPendingAction(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, pendingKey(sessionID)).Err()
}

// SetActiveProject records the session's currently-focused project name.
func (s *Store) SetActiveProject(ctx context.Context, sessionID, projectName string) error {
	return s.rdb.Set(ctx, activeProjectKey(sessionID), projectName, 0).Err()
}

// ActiveProject returns the session's active project name, if any.
func (s *Store) ActiveProject(ctx context.Context, sessionID string) (string, error) {
	val, err := s.rdb.Get(ctx, activeProjectKey(sessionID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("memorystore: get active project: %w", err)
	}
	return val, nil
}

// LockName acquires the per-normalised-name mutex used to serialise entity
// resolution of the same name across concurrent tool calls or ingestion
// extractions (spec.md §5). The returned func releases the lock.
func (s *Store) LockName(normalisedName string) func() {
	muI, _ := s.nameLocks.LoadOrStore(normalisedName, &sync.Mutex{})
	mu := muI.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Health probes connectivity for the aggregated /health endpoint.
func (s *Store) Health(ctx context.Context) error {
	opCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.rdb.Ping(opCtx).Err()
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.rdb.Close()
}
