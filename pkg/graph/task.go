package graph

import (
	"context"
	"fmt"
)

// TaskInput is the manage_tasks create/update payload.
type TaskInput struct {
	Name              string
	Status            string // todo|in_progress|done|cancelled
	Project           string
	Sprint            string
	EstimatedDuration string
	EnergyLevel       string // high|medium|low
	StartTime         string
	EndTime           string
}

var validTaskStatuses = map[string]bool{"todo": true, "in_progress": true, "done": true, "cancelled": true}

// UpsertTask MERGEs a Task by name, linking BELONGS_TO its project and
// sprint when given.
func (s *Service) UpsertTask(ctx context.Context, in TaskInput) (string, error) {
	if in.Status != "" && !validTaskStatuses[in.Status] {
		in.Status = "todo"
	}

	_, err := s.store.Query(ctx, `
		MERGE (t:Task {name: $name})
		ON CREATE SET t.created_at = datetime(), t.status = coalesce($status, 'todo')
		SET t.project = coalesce($project, t.project),
		    t.sprint = coalesce($sprint, t.sprint),
		    t.status = coalesce($status, t.status),
		    t.estimated_duration = coalesce($estimated_duration, t.estimated_duration),
		    t.energy_level = coalesce($energy_level, t.energy_level),
		    t.start_time = coalesce($start_time, t.start_time),
		    t.end_time = coalesce($end_time, t.end_time),
		    t.updated_at = datetime()`,
		map[string]any{
			"name":               in.Name,
			"status":             nilIfEmpty(in.Status),
			"project":            nilIfEmpty(in.Project),
			"sprint":             nilIfEmpty(in.Sprint),
			"estimated_duration": nilIfEmpty(in.EstimatedDuration),
			"energy_level":       nilIfEmpty(in.EnergyLevel),
			"start_time":         nilIfEmpty(in.StartTime),
			"end_time":           nilIfEmpty(in.EndTime),
		})
	if err != nil {
		return "", fmt.Errorf("graph: upsert task: %w", err)
	}

	if in.Project != "" {
		if _, err := s.store.Query(ctx, `
			MATCH (t:Task {name: $name}), (p:Project {name: $project})
			MERGE (t)-[:BELONGS_TO]->(p)`,
			map[string]any{"name": in.Name, "project": in.Project}); err != nil {
			return "", fmt.Errorf("graph: link task to project: %w", err)
		}
	}
	return in.Name, nil
}

// Task is one row of query_tasks.
type Task struct {
	Name    string
	Status  string
	Project string
	Sprint  string
}

// QueryTasks filters tasks by project and/or status; empty strings mean
// unfiltered.
func (s *Service) QueryTasks(ctx context.Context, project, status string) ([]Task, error) {
	cypher := `MATCH (t:Task) WHERE ($project = '' OR t.project = $project) AND ($status = '' OR t.status = $status) RETURN t ORDER BY t.name LIMIT 200`
	rows, err := s.store.Query(ctx, cypher, map[string]any{"project": project, "status": status})
	if err != nil {
		return nil, fmt.Errorf("graph: query tasks: %w", err)
	}
	out := make([]Task, 0, len(rows))
	for _, r := range rows {
		props, _ := r["t"].(map[string]any)
		name, _ := props["name"].(string)
		st, _ := props["status"].(string)
		proj, _ := props["project"].(string)
		sprint, _ := props["sprint"].(string)
		out = append(out, Task{Name: name, Status: st, Project: proj, Sprint: sprint})
	}
	return out, nil
}

// DailyPlan is the result of query_daily_plan: open tasks plus pending
// reminders, bucketed for the chat turn's daily-plan tool.
type DailyPlan struct {
	Tasks     []Task
	Reminders []Reminder
}

// QueryDailyPlan assembles actionable items: tasks in todo or in_progress
// and every pending reminder. Reminders are not filtered by due date, so
// pending reminders due after today are included.
func (s *Service) QueryDailyPlan(ctx context.Context) (*DailyPlan, error) {
	tasks, err := s.QueryTasks(ctx, "", "todo")
	if err != nil {
		return nil, err
	}
	inProgress, err := s.QueryTasks(ctx, "", "in_progress")
	if err != nil {
		return nil, err
	}
	reminders, err := s.QueryReminders(ctx, "pending", "")
	if err != nil {
		return nil, err
	}
	return &DailyPlan{Tasks: append(tasks, inProgress...), Reminders: reminders}, nil
}
