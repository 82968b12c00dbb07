package graph

import (
	"context"
	"fmt"
	"time"
)

// SprintInput is the productivity sprint CRUD payload.
type SprintInput struct {
	Name      string
	StartDate string
	EndDate   string
	Project   string
	Goal      string
	Status    string // active|completed
}

// UpsertSprint MERGEs a Sprint by name, linking BELONGS_TO its project when
// given.
func (s *Service) UpsertSprint(ctx context.Context, in SprintInput) (string, error) {
	if in.Status != "active" && in.Status != "completed" {
		in.Status = "active"
	}
	_, err := s.store.Query(ctx, `
		MERGE (sp:Sprint {name: $name})
		ON CREATE SET sp.created_at = datetime()
		SET sp.start_date = coalesce($start_date, sp.start_date),
		    sp.end_date = coalesce($end_date, sp.end_date),
		    sp.project = coalesce($project, sp.project),
		    sp.goal = coalesce($goal, sp.goal),
		    sp.status = $status,
		    sp.updated_at = datetime()`,
		map[string]any{
			"name":       in.Name,
			"start_date": nilIfEmpty(in.StartDate),
			"end_date":   nilIfEmpty(in.EndDate),
			"project":    nilIfEmpty(in.Project),
			"goal":       nilIfEmpty(in.Goal),
			"status":     in.Status,
		})
	if err != nil {
		return "", fmt.Errorf("graph: upsert sprint: %w", err)
	}
	if in.Project != "" {
		if _, err := s.store.Query(ctx, `
			MATCH (sp:Sprint {name: $name}), (p:Project {name: $project})
			MERGE (sp)-[:BELONGS_TO]->(p)`,
			map[string]any{"name": in.Name, "project": in.Project}); err != nil {
			return "", fmt.Errorf("graph: link sprint to project: %w", err)
		}
	}
	return in.Name, nil
}

// Burndown is the result of query_sprint_burndown: the sprint's total task
// count and its done tasks per day.
type Burndown struct {
	SprintName string
	TotalTasks int
	DoneByDay  map[string]int // ISO date -> tasks done that day (not cumulative)
}

// QuerySprintBurndown counts the sprint's done tasks, bucketed by the day
// they were last updated. Days are not limited to the sprint's date window.
func (s *Service) QuerySprintBurndown(ctx context.Context, sprintName string) (*Burndown, error) {
	rows, err := s.store.Query(ctx, `
		MATCH (t:Task {sprint: $sprint})
		RETURN t.status AS status, t.updated_at AS updated_at`,
		map[string]any{"sprint": sprintName})
	if err != nil {
		return nil, fmt.Errorf("graph: query sprint burndown: %w", err)
	}

	result := &Burndown{SprintName: sprintName, TotalTasks: len(rows), DoneByDay: map[string]int{}}
	for _, r := range rows {
		status, _ := r["status"].(string)
		if status != "done" {
			continue
		}
		updatedAt, _ := r["updated_at"].(string)
		day := updatedAt
		if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
			day = t.Format("2006-01-02")
		}
		result.DoneByDay[day]++
	}
	return result, nil
}

// Velocity is the result of query_sprint_velocity: tasks completed per
// sprint, one row for each sprint of a project.
type Velocity struct {
	Sprint    string
	DoneCount int
}

// QuerySprintVelocity returns done-task counts for every sprint of a
// project, most recent first.
func (s *Service) QuerySprintVelocity(ctx context.Context, project string) ([]Velocity, error) {
	rows, err := s.store.Query(ctx, `
		MATCH (sp:Sprint {project: $project})
		OPTIONAL MATCH (t:Task {sprint: sp.name, status: 'done'})
		RETURN sp.name AS sprint, count(t) AS done_count
		ORDER BY sp.start_date DESC`,
		map[string]any{"project": project})
	if err != nil {
		return nil, fmt.Errorf("graph: query sprint velocity: %w", err)
	}
	out := make([]Velocity, 0, len(rows))
	for _, r := range rows {
		sprint, _ := r["sprint"].(string)
		doneCount := 0
		switch v := r["done_count"].(type) {
		case int64:
			doneCount = int(v)
		case float64:
			doneCount = int(v)
		}
		out = append(out, Velocity{Sprint: sprint, DoneCount: doneCount})
	}
	return out, nil
}
