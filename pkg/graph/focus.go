package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FocusSessionInput is the focus start/complete payload.
type FocusSessionInput struct {
	Task      string
	StartTime time.Time
	EndTime   time.Time
	Completed bool
}

// StartFocusSession creates a FocusSession node linked to its task.
func (s *Service) StartFocusSession(ctx context.Context, task string, start time.Time) (string, error) {
	id := uuid.NewString()
	_, err := s.store.Query(ctx, `
		CREATE (f:FocusSession {id: $id, start_time: $start_time, task: $task, completed: false, created_at: datetime()})`,
		map[string]any{"id": id, "start_time": start.Format(time.RFC3339), "task": nilIfEmpty(task)})
	if err != nil {
		return "", fmt.Errorf("graph: start focus session: %w", err)
	}
	if task != "" {
		if _, err := s.store.Query(ctx, `
			MATCH (f:FocusSession {id: $id}), (t:Task {name: $task})
			MERGE (f)-[:INVOLVES]->(t)`, map[string]any{"id": id, "task": task}); err != nil {
			return "", fmt.Errorf("graph: link focus session to task: %w", err)
		}
	}
	return id, nil
}

// CompleteFocusSession sets end_time, duration_min, and completed=true.
func (s *Service) CompleteFocusSession(ctx context.Context, id string, end time.Time) error {
	rows, err := s.store.Query(ctx, `MATCH (f:FocusSession {id: $id}) RETURN f.start_time AS start_time`,
		map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("graph: complete focus session: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("graph: complete focus session: %s not found", id)
	}
	startRaw, _ := rows[0]["start_time"].(string)
	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		return fmt.Errorf("graph: complete focus session: invalid start_time: %w", err)
	}

	durationMin := int(end.Sub(start).Minutes())
	_, err = s.store.Query(ctx, `
		MATCH (f:FocusSession {id: $id})
		SET f.end_time = $end_time, f.duration_min = $duration_min, f.completed = true`,
		map[string]any{"id": id, "end_time": end.Format(time.RFC3339), "duration_min": durationMin})
	if err != nil {
		return fmt.Errorf("graph: complete focus session: %w", err)
	}
	return nil
}

// FocusStats is the result of get_focus_stats.
type FocusStats struct {
	SessionCount   int
	TotalMinutes   int
	CompletedCount int
}

// QueryFocusStats aggregates focus sessions, optionally scoped to one
// task.
func (s *Service) QueryFocusStats(ctx context.Context, task string) (*FocusStats, error) {
	rows, err := s.store.Query(ctx, `
		MATCH (f:FocusSession)
		WHERE $task = '' OR f.task = $task
		RETURN count(f) AS session_count, sum(coalesce(f.duration_min, 0)) AS total_minutes,
		       sum(CASE WHEN f.completed THEN 1 ELSE 0 END) AS completed_count`,
		map[string]any{"task": task})
	if err != nil {
		return nil, fmt.Errorf("graph: query focus stats: %w", err)
	}
	if len(rows) == 0 {
		return &FocusStats{}, nil
	}
	return &FocusStats{
		SessionCount:   int(toFloat(rows[0]["session_count"])),
		TotalMinutes:   int(toFloat(rows[0]["total_minutes"])),
		CompletedCount: int(toFloat(rows[0]["completed_count"])),
	}, nil
}
