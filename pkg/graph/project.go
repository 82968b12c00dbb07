package graph

import (
	"fmt"

	"context"
)

// ProjectInput is the upsert_project payload.
type ProjectInput struct {
	Name        string
	Status      string
	Priority    string
	Description string
}

// UpsertProject MERGEs a Project node by resolved canonical name.
func (s *Service) UpsertProject(ctx context.Context, in ProjectInput) (string, error) {
	canonical, err := s.ResolveEntityName(ctx, in.Name, "Project")
	if err != nil {
		return "", err
	}

	_, err = s.store.Query(ctx, `
		MERGE (p:Project {name: $name})
		ON CREATE SET p.created_at = datetime(), p.status = coalesce($status, 'active'), p.section_count = 0
		SET p.priority = coalesce($priority, p.priority),
		    p.description = coalesce($description, p.description),
		    p.status = coalesce($status, p.status),
		    p.updated_at = datetime()`,
		map[string]any{
			"name":        canonical,
			"status":      nilIfEmpty(in.Status),
			"priority":    nilIfEmpty(in.Priority),
			"description": nilIfEmpty(in.Description),
		})
	if err != nil {
		return "", fmt.Errorf("graph: upsert project: %w", err)
	}
	return canonical, nil
}

// SectionInput is a tool-only upsert (spec.md §3: "Only created via tool;
// never by auto-extraction").
type SectionInput struct {
	Name    string
	Project string
	Kind    string // phase|topic
	Order   int
}

// UpsertSection creates a Section under Project, bumping the project's
// section_count, per spec.md §3's Project.section_count note.
func (s *Service) UpsertSection(ctx context.Context, in SectionInput) error {
	if in.Kind != "phase" && in.Kind != "topic" {
		in.Kind = "phase"
	}
	_, err := s.store.Query(ctx, `
		MATCH (p:Project {name: $project})
		MERGE (sec:Section {name: $name, project: $project})
		ON CREATE SET sec.created_at = datetime(), p.section_count = coalesce(p.section_count, 0) + 1
		SET sec.kind = $kind, sec.order = $order, sec.updated_at = datetime()
		MERGE (p)-[:HAS_SECTION]->(sec)`,
		map[string]any{
			"project": in.Project,
			"name":    in.Name,
			"kind":    in.Kind,
			"order":   in.Order,
		})
	if err != nil {
		return fmt.Errorf("graph: upsert section: %w", err)
	}
	return nil
}

// ProjectDetails is the flattened result of query_project_details.
type ProjectDetails struct {
	Name        string
	Status      string
	Priority    string
	Description string
	Sections    []string
	TaskCount   int
}

// QueryProjectDetails returns a project's own fields plus its section
// names and task count.
func (s *Service) QueryProjectDetails(ctx context.Context, name string) (*ProjectDetails, error) {
	rows, err := s.store.Query(ctx, `
		MATCH (p:Project {name: $name})
		OPTIONAL MATCH (p)-[:HAS_SECTION]->(sec:Section)
		OPTIONAL MATCH (t:Task {project: $name})
		RETURN p, collect(DISTINCT sec.name) AS sections, count(DISTINCT t) AS task_count`,
		map[string]any{"name": name})
	if err != nil {
		return nil, fmt.Errorf("graph: query project details: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	props, _ := rows[0]["p"].(map[string]any)
	status, _ := props["status"].(string)
	priority, _ := props["priority"].(string)
	description, _ := props["description"].(string)

	var sections []string
	if raw, ok := rows[0]["sections"].([]any); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok && s != "" {
				sections = append(sections, s)
			}
		}
	}

	taskCount := 0
	if tc, ok := rows[0]["task_count"].(int64); ok {
		taskCount = int(tc)
	}

	return &ProjectDetails{
		Name:        name,
		Status:      status,
		Priority:    priority,
		Description: description,
		Sections:    sections,
		TaskCount:   taskCount,
	}, nil
}

// ProjectSummary is one row of query_projects_overview.
type ProjectSummary struct {
	Name     string
	Status   string
	Priority string
}

// QueryProjectsOverview lists every project.
func (s *Service) QueryProjectsOverview(ctx context.Context) ([]ProjectSummary, error) {
	rows, err := s.store.Query(ctx, `MATCH (p:Project) RETURN p.name AS name, p.status AS status, p.priority AS priority ORDER BY p.name`, nil)
	if err != nil {
		return nil, fmt.Errorf("graph: query projects overview: %w", err)
	}
	out := make([]ProjectSummary, 0, len(rows))
	for _, r := range rows {
		name, _ := r["name"].(string)
		status, _ := r["status"].(string)
		priority, _ := r["priority"].(string)
		out = append(out, ProjectSummary{Name: name, Status: status, Priority: priority})
	}
	return out, nil
}

// StalledProject is one project with no task activity in the scheduler's
// configured stale window (spec.md §4.9 smart alerts: "stalled projects —
// no task update in N days").
type StalledProject struct {
	Name          string
	LastTaskUpdate string
}

// StalledProjects returns active projects whose tasks have seen no
// updated_at change in staleDays, or that have no tasks at all since
// creation. Grounded on OldDebts' same-shape "older than N days" query.
func (s *Service) StalledProjects(ctx context.Context, staleDays int) ([]StalledProject, error) {
	rows, err := s.store.Query(ctx, `
		MATCH (p:Project {status: 'active'})
		OPTIONAL MATCH (t:Task)-[:BELONGS_TO]->(p)
		WITH p, max(coalesce(t.updated_at, t.created_at)) AS lastActivity
		WITH p, coalesce(lastActivity, p.created_at) AS lastActivity
		WHERE lastActivity < datetime() - duration({days: $days})
		RETURN p.name AS name, toString(lastActivity) AS last_activity
		ORDER BY lastActivity`,
		map[string]any{"days": staleDays})
	if err != nil {
		return nil, fmt.Errorf("graph: stalled projects: %w", err)
	}
	out := make([]StalledProject, 0, len(rows))
	for _, r := range rows {
		name, _ := r["name"].(string)
		last, _ := r["last_activity"].(string)
		out = append(out, StalledProject{Name: name, LastTaskUpdate: last})
	}
	return out, nil
}

// DeleteProject cascades to the project's tasks, sections, lists, and list
// entries, per spec.md §4.4 lifecycle rules.
func (s *Service) DeleteProject(ctx context.Context, name string) error {
	_, err := s.store.Query(ctx, `
		MATCH (p:Project {name: $name})
		OPTIONAL MATCH (p)-[:HAS_SECTION]->(sec:Section)
		OPTIONAL MATCH (t:Task {project: $name})
		OPTIONAL MATCH (l:List {project: $name})
		OPTIONAL MATCH (l)-[:HAS_ENTRY]->(entry:ListEntry)
		DETACH DELETE p, sec, t, l, entry`,
		map[string]any{"name": name})
	if err != nil {
		return fmt.Errorf("graph: delete project: %w", err)
	}
	return nil
}

// MergeProjects re-links HAS_SECTION and BELONGS_TO edges from source to
// target and deletes source, per spec.md §4.4.
func (s *Service) MergeProjects(ctx context.Context, source, target string) error {
	_, err := s.store.Query(ctx, `
		MATCH (src:Project {name: $source})
		MATCH (tgt:Project {name: $target})
		OPTIONAL MATCH (src)-[:HAS_SECTION]->(sec:Section)
		FOREACH (_ IN CASE WHEN sec IS NOT NULL THEN [1] ELSE [] END |
			MERGE (tgt)-[:HAS_SECTION]->(sec)
		)
		WITH src, tgt
		OPTIONAL MATCH (child)-[r:BELONGS_TO]->(src)
		FOREACH (_ IN CASE WHEN child IS NOT NULL THEN [1] ELSE [] END |
			MERGE (child)-[:BELONGS_TO]->(tgt)
		)
		SET tgt.name_aliases = coalesce(tgt.name_aliases, []) + coalesce(src.name_aliases, []) + src.name
		DETACH DELETE src`,
		map[string]any{"source": source, "target": target})
	if err != nil {
		return fmt.Errorf("graph: merge projects: %w", err)
	}
	return nil
}
