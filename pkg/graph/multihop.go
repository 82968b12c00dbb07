package graph

import (
	"context"
	"fmt"
)

const multihopLineCap = 30

// hop3AllowedRelations restricts the third hop to this relation set,
// per spec.md §4.7.
var hop3AllowedRelations = []string{
	"BELONGS_TO", "INVOLVES", "WORKS_AT", "RELATED_TO", "TAGGED_WITH", "STORED_IN", "SIMILAR_TO",
}

// ContextLine is one deduplicated, display-formatted line of multi-hop
// retrieval output.
type ContextLine struct {
	EntityName string
	Relation   string
	Depth      int
	Text       string
}

// QueryEntityContext implements query_entity_context(label, key, value,
// max_hops): hops 1-2 unrestricted, hop 3 restricted to the safe relation
// set, deduplicated and capped at 30 lines (spec.md §4.7).
func (s *Service) QueryEntityContext(ctx context.Context, label, key, value string, maxHops int) ([]ContextLine, error) {
	if maxHops <= 0 || maxHops > s.thresholds.MaxHops {
		maxHops = s.thresholds.MaxHops
	}

	cypher := fmt.Sprintf(`
		MATCH (origin:%s {%s: $value})
		CALL {
			WITH origin
			MATCH p = (origin)-[*1..2]-(near)
			RETURN near, relationships(p) AS rels, length(p) AS depth
			UNION
			WITH origin
			MATCH p = (origin)-[rels*3..3]-(far)
			WHERE type(rels[2]) IN $hop3_relations
			RETURN far AS near, rels, length(p) AS depth
		}
		RETURN DISTINCT near, rels, depth
		LIMIT %d`, label, key, multihopLineCap*4)

	rows, err := s.store.Query(ctx, cypher, map[string]any{
		"value":          value,
		"hop3_relations": hop3AllowedRelations,
	})
	if err != nil {
		return nil, fmt.Errorf("graph: query entity context: %w", err)
	}

	seen := map[string]bool{}
	lines := make([]ContextLine, 0, multihopLineCap)
	for _, r := range rows {
		if len(lines) >= multihopLineCap {
			break
		}
		near, _ := r["near"].(map[string]any)
		if near == nil {
			continue
		}
		name, _ := near["name"].(string)
		if name == "" {
			name, _ = near["id"].(string)
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		nameAr, _ := near["name_ar"].(string)
		depth := 0
		if d, ok := r["depth"].(int64); ok {
			depth = int(d)
		}

		lines = append(lines, ContextLine{
			EntityName: name,
			Depth:      depth,
			Text:       formatContextEntity(name, nameAr, stripInternal(near)),
		})
	}
	return lines, nil
}

// formatContextEntity renders one dedup'd neighbour for LLM-facing
// context, via the §4.5 display helper plus its non-internal properties.
func formatContextEntity(name, nameAr string, props map[string]any) string {
	entity := make(map[string]any, len(props)+2)
	for k, v := range props {
		entity[k] = v
	}
	entity["name"], entity["name_ar"] = name, nameAr
	return FormatContext([]map[string]any{entity})
}
