package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// resolveNamespace builds the entity_name:{label} vector namespace key used
// to scope resolution lookups to entities of one label (spec.md §4.5 step 2).
func resolveNamespace(label string) string { return "entity_name:" + label }

// thresholdFor returns the resolution similarity cutoff for a label
// (Person: 0.85; everything else: the default threshold), per spec.md §4.5
// step 3.
func (s *Service) thresholdFor(label string) float64 {
	if label == "Person" {
		return s.thresholds.PersonResolution
	}
	return s.thresholds.DefaultResolution
}

// ResolveEntityName implements resolve_entity_name(name, label): collapse
// near-duplicate surface forms (e.g. "Mohammed"/"Mohamed"/"محمد") into one
// canonical node name, per spec.md §4.5.
func (s *Service) ResolveEntityName(ctx context.Context, name, label string) (canonical string, err error) {
	norm := normalize(name)

	unlock := s.lockName(norm)
	defer unlock()

	vec, err := s.llm.EmbedOne(ctx, name)
	if err != nil {
		return "", fmt.Errorf("graph: resolve embed: %w", err)
	}

	matches, err := s.vec.Search(ctx, vec, 3, map[string]string{"namespace": resolveNamespace(label)})
	if err != nil {
		return "", fmt.Errorf("graph: resolve search: %w", err)
	}

	threshold := s.thresholdFor(label)
	if len(matches) > 0 && matches[0].Score >= threshold {
		canonical, _ := matches[0].Payload["canonical"].(string)
		if canonical != "" {
			if err := s.addAlias(ctx, label, canonical, name); err != nil {
				return "", err
			}
			return canonical, nil
		}
	}

	// Step 4: case-insensitive CONTAINS fallback over name and name_aliases.
	canonical, found, err := s.containsFallback(ctx, label, name)
	if err != nil {
		return "", err
	}
	if found {
		if err := s.addAlias(ctx, label, canonical, name); err != nil {
			return "", err
		}
		return canonical, nil
	}

	// Step 5: no match — this name becomes canonical; index it.
	if _, err := s.vec.Upsert(ctx, uuid.NewString(), vec, map[string]any{
		"namespace": resolveNamespace(label),
		"canonical": name,
	}); err != nil {
		return "", fmt.Errorf("graph: resolve index: %w", err)
	}
	return name, nil
}

// containsFallback runs a case-insensitive CONTAINS match over name and
// name_aliases for nodes of the given label.
func (s *Service) containsFallback(ctx context.Context, label, name string) (string, bool, error) {
	cypher := fmt.Sprintf(`
		MATCH (n:%s)
		WHERE toLower(n.name) CONTAINS toLower($name)
		   OR any(a IN coalesce(n.name_aliases, []) WHERE toLower(a) CONTAINS toLower($name))
		RETURN n.name AS name LIMIT 1`, label)

	rows, err := s.store.Query(ctx, cypher, map[string]any{"name": name})
	if err != nil {
		return "", false, fmt.Errorf("graph: contains fallback: %w", err)
	}
	if len(rows) == 0 {
		return "", false, nil
	}
	canonical, _ := rows[0]["name"].(string)
	if canonical == "" {
		return "", false, nil
	}
	return canonical, true, nil
}

// addAlias unions the incoming surface form into the canonical node's
// name_aliases set.
func (s *Service) addAlias(ctx context.Context, label, canonical, alias string) error {
	if normalize(alias) == normalize(canonical) {
		return nil
	}
	cypher := fmt.Sprintf(`
		MATCH (n:%s {name: $canonical})
		SET n.name_aliases = CASE
			WHEN $alias IN coalesce(n.name_aliases, []) THEN n.name_aliases
			ELSE coalesce(n.name_aliases, []) + $alias
		END`, label)
	_, err := s.store.Query(ctx, cypher, map[string]any{"canonical": canonical, "alias": alias})
	if err != nil {
		return fmt.Errorf("graph: add alias: %w", err)
	}
	return nil
}

// normalize lowercases and trims whitespace for alias/lock-key comparisons.
func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
