package backup

import (
	"context"
	"fmt"
	"strings"
)

// NodeExport is one exported graph node. ElementID is only meaningful
// within the lifetime of a single export/restore pair — it is used
// purely to resolve which nodes an edge connected, not as a durable key.
type NodeExport struct {
	ElementID string         `json:"element_id"`
	Labels    []string       `json:"labels"`
	Props     map[string]any `json:"props"`
}

// EdgeExport is one exported relationship, referencing its endpoints by
// their export-time ElementID.
type EdgeExport struct {
	Type      string         `json:"type"`
	StartID   string         `json:"start_id"`
	EndID     string         `json:"end_id"`
	Props     map[string]any `json:"props"`
}

func (s *Service) exportGraph(ctx context.Context) ([]NodeExport, []EdgeExport, error) {
	nodeRows, err := s.graph.Query(ctx, `MATCH (n) RETURN elementId(n) AS id, labels(n) AS labels, properties(n) AS props`, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("export nodes: %w", err)
	}
	nodes := make([]NodeExport, 0, len(nodeRows))
	for _, row := range nodeRows {
		id, _ := row["id"].(string)
		labels, _ := row["labels"].([]any)
		props, _ := row["props"].(map[string]any)
		nodes = append(nodes, NodeExport{ElementID: id, Labels: toStringSlice(labels), Props: props})
	}

	edgeRows, err := s.graph.Query(ctx, `
		MATCH (a)-[r]->(b)
		RETURN elementId(a) AS start_id, elementId(b) AS end_id, type(r) AS type, properties(r) AS props`, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("export edges: %w", err)
	}
	edges := make([]EdgeExport, 0, len(edgeRows))
	for _, row := range edgeRows {
		startID, _ := row["start_id"].(string)
		endID, _ := row["end_id"].(string)
		typ, _ := row["type"].(string)
		props, _ := row["props"].(map[string]any)
		edges = append(edges, EdgeExport{Type: typ, StartID: startID, EndID: endID, Props: props})
	}

	return nodes, edges, nil
}

// restoreGraph recreates every node (collecting a map from the
// snapshot's ElementID to the freshly created node's new elementId), then
// recreates every edge against that mapping. Labels come from this
// system's own controlled vocabulary (Person, Company, Project, ...), so
// they are safe to interpolate directly into the Cypher label list.
func (s *Service) restoreGraph(ctx context.Context, nodes []NodeExport, edges []EdgeExport) error {
	idMap := make(map[string]string, len(nodes))

	for _, n := range nodes {
		labelClause := labelsToClause(n.Labels)
		rows, err := s.graph.Query(ctx, fmt.Sprintf(`CREATE (n%s) SET n = $props RETURN elementId(n) AS id`, labelClause),
			map[string]any{"props": n.Props})
		if err != nil {
			return fmt.Errorf("restore node %v: %w", n.Labels, err)
		}
		if len(rows) == 0 {
			continue
		}
		newID, _ := rows[0]["id"].(string)
		idMap[n.ElementID] = newID
	}

	for _, e := range edges {
		startID, startOK := idMap[e.StartID]
		endID, endOK := idMap[e.EndID]
		if !startOK || !endOK || e.Type == "" {
			continue
		}
		cypher := fmt.Sprintf(`
			MATCH (a), (b)
			WHERE elementId(a) = $start AND elementId(b) = $end
			CREATE (a)-[r:%s]->(b) SET r = $props`, e.Type)
		if _, err := s.graph.Query(ctx, cypher, map[string]any{"start": startID, "end": endID, "props": e.Props}); err != nil {
			return fmt.Errorf("restore edge %s: %w", e.Type, err)
		}
	}

	return nil
}

func labelsToClause(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	return ":" + strings.Join(labels, ":")
}

func toStringSlice(in []any) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
