package graph

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ListInput is the manage_lists create payload.
type ListInput struct {
	Name    string
	Type    string // shopping|ideas|checklist|reference
	Project string
}

var validListTypes = map[string]bool{"shopping": true, "ideas": true, "checklist": true, "reference": true}

// UpsertList MERGEs a List by name, linking BELONGS_TO its project when
// given.
func (s *Service) UpsertList(ctx context.Context, in ListInput) (string, error) {
	if !validListTypes[in.Type] {
		in.Type = "checklist"
	}
	_, err := s.store.Query(ctx, `
		MERGE (l:List {name: $name})
		ON CREATE SET l.created_at = datetime(), l.type = $type
		SET l.project = coalesce($project, l.project), l.updated_at = datetime()`,
		map[string]any{"name": in.Name, "type": in.Type, "project": nilIfEmpty(in.Project)})
	if err != nil {
		return "", fmt.Errorf("graph: upsert list: %w", err)
	}
	if in.Project != "" {
		if _, err := s.store.Query(ctx, `
			MATCH (l:List {name: $name}), (p:Project {name: $project})
			MERGE (l)-[:BELONGS_TO]->(p)`,
			map[string]any{"name": in.Name, "project": in.Project}); err != nil {
			return "", fmt.Errorf("graph: link list to project: %w", err)
		}
	}
	return in.Name, nil
}

// ListEntryInput is a tool-only upsert (spec.md §3: "Only created via
// tool").
type ListEntryInput struct {
	List  string
	Text  string
	Order int
}

// AddListEntry creates a ListEntry under List.
func (s *Service) AddListEntry(ctx context.Context, in ListEntryInput) (string, error) {
	id := uuid.NewString()
	_, err := s.store.Query(ctx, `
		MATCH (l:List {name: $list})
		CREATE (e:ListEntry {id: $id, list: $list, text: $text, checked: false, order: $order, created_at: datetime()})
		MERGE (l)-[:HAS_ENTRY]->(e)`,
		map[string]any{"list": in.List, "id": id, "text": in.Text, "order": in.Order})
	if err != nil {
		return "", fmt.Errorf("graph: add list entry: %w", err)
	}
	return id, nil
}

// SetListEntryChecked toggles a list entry's checked state.
func (s *Service) SetListEntryChecked(ctx context.Context, entryID string, checked bool) error {
	if _, err := s.store.Query(ctx, `MATCH (e:ListEntry {id: $id}) SET e.checked = $checked`,
		map[string]any{"id": entryID, "checked": checked}); err != nil {
		return fmt.Errorf("graph: set list entry checked: %w", err)
	}
	return nil
}

// ListWithEntries is the flattened result of reading a list's contents.
type ListWithEntries struct {
	Name    string
	Type    string
	Project string
	Entries []ListEntry
}

// ListEntry is one row of a list's entries.
type ListEntry struct {
	ID      string
	Text    string
	Checked bool
	Order   int
}

// QueryList returns a list with its entries ordered by Order.
func (s *Service) QueryList(ctx context.Context, name string) (*ListWithEntries, error) {
	rows, err := s.store.Query(ctx, `
		MATCH (l:List {name: $name})
		OPTIONAL MATCH (l)-[:HAS_ENTRY]->(e:ListEntry)
		RETURN l, e ORDER BY e.order`,
		map[string]any{"name": name})
	if err != nil {
		return nil, fmt.Errorf("graph: query list: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	listProps, _ := rows[0]["l"].(map[string]any)
	typ, _ := listProps["type"].(string)
	project, _ := listProps["project"].(string)

	result := &ListWithEntries{Name: name, Type: typ, Project: project}
	for _, r := range rows {
		entryProps, ok := r["e"].(map[string]any)
		if !ok || entryProps == nil {
			continue
		}
		id, _ := entryProps["id"].(string)
		text, _ := entryProps["text"].(string)
		checked, _ := entryProps["checked"].(bool)
		order := 0
		switch v := entryProps["order"].(type) {
		case int64:
			order = int(v)
		case float64:
			order = int(v)
		}
		result.Entries = append(result.Entries, ListEntry{ID: id, Text: text, Checked: checked, Order: order})
	}
	return result, nil
}
