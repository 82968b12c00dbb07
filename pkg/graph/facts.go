package graph

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rafiq-ai/rafiq/pkg/llmgateway"
)

// UpsertFromFacts routes each extracted fact to its typed upsert method by
// EntityType, links EXTRACTED_FROM to the File node when fileHash is given,
// and creates generic RELATED_TO edges for RelatesTo/Relation pairs
// (spec.md §4.4: "generic upsert_from_facts(facts, file_hash?)").
func (s *Service) UpsertFromFacts(ctx context.Context, facts []llmgateway.ExtractedFact, fileHash string) ([]string, error) {
	canonical := make([]string, 0, len(facts))

	for _, f := range facts {
		name, err := s.upsertOneFact(ctx, f)
		if err != nil {
			return canonical, fmt.Errorf("graph: upsert fact %q: %w", f.Name, err)
		}
		if name == "" {
			continue
		}
		canonical = append(canonical, name)

		if fileHash != "" {
			if err := s.linkExtractedFrom(ctx, factLabel(f.EntityType), name, fileHash); err != nil {
				return canonical, err
			}
		}
		if f.RelatesTo != "" && f.Relation != "" {
			if err := s.linkRelated(ctx, factLabel(f.EntityType), name, f.Relation, f.RelatesTo); err != nil {
				return canonical, err
			}
		}
	}
	return canonical, nil
}

// factLabel maps the extraction prompt's entity_type vocabulary onto graph
// node labels.
func factLabel(entityType string) string {
	switch strings.ToLower(entityType) {
	case "person":
		return "Person"
	case "company":
		return "Company"
	case "project":
		return "Project"
	case "task":
		return "Task"
	case "expense":
		return "Expense"
	case "debt":
		return "Debt"
	case "reminder":
		return "Reminder"
	case "knowledge":
		return "Knowledge"
	case "item", "inventory":
		return "Item"
	case "list":
		return "List"
	case "sprint":
		return "Sprint"
	default:
		return "Entity"
	}
}

func (s *Service) upsertOneFact(ctx context.Context, f llmgateway.ExtractedFact) (string, error) {
	p := f.Properties
	switch strings.ToLower(f.EntityType) {
	case "person":
		return s.UpsertPerson(ctx, PersonInput{
			Name:             f.Name,
			NameAr:           f.NameAr,
			Company:          getString(p, "company"),
			DateOfBirth:      getString(p, "date_of_birth"),
			DateOfBirthHijri: getString(p, "date_of_birth_hijri"),
			IDNumber:         getString(p, "id_number"),
		})
	case "company":
		return s.UpsertCompany(ctx, f.Name)
	case "project":
		return s.UpsertProject(ctx, ProjectInput{
			Name:        f.Name,
			Status:      getString(p, "status"),
			Priority:    getString(p, "priority"),
			Description: getString(p, "description"),
		})
	case "task":
		return s.UpsertTask(ctx, TaskInput{
			Name:              f.Name,
			Status:            getString(p, "status"),
			Project:           getString(p, "project"),
			Sprint:            getString(p, "sprint"),
			EstimatedDuration: getString(p, "estimated_duration"),
			EnergyLevel:       getString(p, "energy_level"),
			StartTime:         getString(p, "start_time"),
			EndTime:           getString(p, "end_time"),
		})
	case "expense":
		return s.UpsertExpense(ctx, ExpenseInput{
			Amount:   getFloat(p, "amount"),
			Currency: getString(p, "currency"),
			Category: getString(p, "category"),
			Vendor:   f.Name,
			Date:     getString(p, "date"),
		})
	case "debt":
		return s.RecordDebt(ctx, DebtInput{
			Person:    f.Name,
			Amount:    getFloat(p, "amount"),
			Currency:  getString(p, "currency"),
			Direction: getString(p, "direction"),
			Reason:    getString(p, "reason"),
		})
	case "reminder":
		return "", fmt.Errorf("reminders require a due_date and are not created from free-text extraction")
	case "knowledge":
		var refs []string
		if r := getString(p, "reference_numbers"); r != "" {
			refs = []string{r}
		}
		return s.UpsertKnowledge(ctx, KnowledgeInput{
			Title:            f.Name,
			Content:          getString(p, "content"),
			Topic:            getString(p, "topic"),
			Category:         getString(p, "category"),
			ReferenceNumbers: refs,
		})
	case "item", "inventory":
		return s.UpsertItem(ctx, ItemInput{
			Name:        f.Name,
			Quantity:    int(getFloat(p, "quantity")),
			Location:    getString(p, "location"),
			Category:    getString(p, "category"),
			Brand:       getString(p, "brand"),
			Condition:   getString(p, "condition"),
			Barcode:     getString(p, "barcode"),
			BarcodeType: getString(p, "barcode_type"),
		})
	case "list":
		return s.UpsertList(ctx, ListInput{
			Name:    f.Name,
			Type:    getString(p, "type"),
			Project: getString(p, "project"),
		})
	case "sprint":
		return s.UpsertSprint(ctx, SprintInput{
			Name:    f.Name,
			Project: getString(p, "project"),
			Goal:    getString(p, "goal"),
			Status:  getString(p, "status"),
		})
	default:
		return s.upsertGenericEntity(ctx, f)
	}
}

// upsertGenericEntity handles any entity_type the extraction prompt emits
// that has no dedicated node type, preserving its raw properties as JSON
// scalars (spec.md §4.4: "nested maps are JSON-stringified").
func (s *Service) upsertGenericEntity(ctx context.Context, f llmgateway.ExtractedFact) (string, error) {
	name, err := s.ResolveEntityName(ctx, f.Name, "Entity")
	if err != nil {
		return "", err
	}
	props := map[string]any{}
	for k, v := range f.Properties {
		props[k] = v
	}
	_, err = s.store.Query(ctx, `
		MERGE (e:Entity {name: $name})
		ON CREATE SET e.created_at = datetime()
		SET e += $props, e.name_ar = coalesce($name_ar, e.name_ar), e.updated_at = datetime()`,
		map[string]any{"name": name, "props": props, "name_ar": nilIfEmpty(f.NameAr)})
	if err != nil {
		return "", err
	}
	return name, nil
}

func (s *Service) linkExtractedFrom(ctx context.Context, label, name, fileHash string) error {
	cypher := fmt.Sprintf(`
		MATCH (n:%s {name: $name}), (f:File {file_hash: $hash})
		MERGE (n)-[:EXTRACTED_FROM]->(f)`, label)
	if _, err := s.store.Query(ctx, cypher, map[string]any{"name": name, "hash": fileHash}); err != nil {
		return fmt.Errorf("graph: link extracted_from: %w", err)
	}
	return nil
}

func (s *Service) linkRelated(ctx context.Context, label, name, relation, relatesTo string) error {
	rel := strings.ToUpper(strings.ReplaceAll(relation, " ", "_"))
	if rel == "" {
		rel = "RELATED_TO"
	}
	cypher := fmt.Sprintf(`
		MATCH (a:%s {name: $name})
		MERGE (b:Entity {name: $related})
		ON CREATE SET b.created_at = datetime()
		MERGE (a)-[:%s]->(b)`, label, rel)
	if _, err := s.store.Query(ctx, cypher, map[string]any{"name": name, "related": relatesTo}); err != nil {
		return fmt.Errorf("graph: link related: %w", err)
	}
	return nil
}

func getString(props map[string]string, key string) string {
	if props == nil {
		return ""
	}
	return props[key]
}

func getFloat(props map[string]string, key string) float64 {
	if props == nil {
		return 0
	}
	f, _ := strconv.ParseFloat(props[key], 64)
	return f
}
