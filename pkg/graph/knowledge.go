package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// KnowledgeInput is the store_note / upsert_knowledge payload.
type KnowledgeInput struct {
	Title            string
	Content          string
	Topic            string
	Category         string // auto-categorised by keyword heuristic if empty
	ReferenceNumbers []string
}

// categoryKeywords is the Open-Question-resolved keyword heuristic for
// Arabic category auto-classification (spec.md §3: "Auto-categorised by
// keyword heuristic if missing"; decision recorded in DESIGN.md). Checked
// in order; first match wins.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"مالية", []string{"فاتورة", "راتب", "بنك", "حساب", "ضريبة", "invoice", "salary", "bank", "tax"}},
	{"صحة", []string{"طبيب", "دواء", "مستشفى", "تحليل", "doctor", "medicine", "hospital", "clinic"}},
	{"عمل", []string{"اجتماع", "مشروع", "عقد", "عميل", "meeting", "project", "contract", "client"}},
	{"تعليم", []string{"دورة", "شهادة", "جامعة", "course", "certificate", "university", "degree"}},
	{"سفر", []string{"تذكرة", "فندق", "جواز", "تأشيرة", "flight", "hotel", "passport", "visa"}},
	{"عائلة", []string{"زوجة", "ابن", "ابنة", "عائلة", "family", "wife", "son", "daughter"}},
}

// classifyCategory implements the keyword heuristic, falling back to عام
// (general) per the documented Open Question resolution.
func classifyCategory(title, content string) string {
	haystack := strings.ToLower(title + " " + content)
	for _, rule := range categoryKeywords {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, strings.ToLower(kw)) {
				return rule.category
			}
		}
	}
	return "عام"
}

// UpsertKnowledge creates a Knowledge node, auto-categorising and linking
// to its Topic when given.
func (s *Service) UpsertKnowledge(ctx context.Context, in KnowledgeInput) (string, error) {
	category := in.Category
	if category == "" {
		category = classifyCategory(in.Title, in.Content)
	}

	id := uuid.NewString()
	_, err := s.store.Query(ctx, `
		CREATE (k:Knowledge {
			id: $id, title: $title, content: $content, topic: $topic,
			category: $category, reference_numbers: $reference_numbers,
			created_at: datetime(), updated_at: datetime()
		})`,
		map[string]any{
			"id":                id,
			"title":             in.Title,
			"content":           in.Content,
			"topic":             nilIfEmpty(in.Topic),
			"category":          category,
			"reference_numbers": in.ReferenceNumbers,
		})
	if err != nil {
		return "", fmt.Errorf("graph: upsert knowledge: %w", err)
	}

	if in.Topic != "" {
		if _, err := s.UpsertTopic(ctx, in.Topic); err != nil {
			return "", err
		}
	}

	if err := s.TagEntity(ctx, "Knowledge", id, category); err != nil {
		return "", err
	}
	return id, nil
}

// UpsertTopic resolves and MERGEs a Topic node.
func (s *Service) UpsertTopic(ctx context.Context, name string) (string, error) {
	canonical, err := s.ResolveEntityName(ctx, name, "Topic")
	if err != nil {
		return "", err
	}
	_, err = s.store.Query(ctx, `MERGE (t:Topic {name: $name}) ON CREATE SET t.created_at = datetime()`,
		map[string]any{"name": canonical})
	if err != nil {
		return "", fmt.Errorf("graph: upsert topic: %w", err)
	}
	return canonical, nil
}

// tagAliases is the English→Arabic canonicalisation table for smart tags
// (spec.md §4.6 "_TAG_ALIASES").
var tagAliases = map[string]string{
	"work":     "عمل",
	"personal": "شخصي",
	"urgent":   "عاجل",
	"finance":  "مالية",
	"health":   "صحة",
	"family":   "عائلة",
	"travel":   "سفر",
	"learning": "تعليم",
}

// UpsertTag resolves a tag name through the alias table then vector-dedups
// at the configured threshold (spec.md §4.6).
func (s *Service) UpsertTag(ctx context.Context, name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if arabic, ok := tagAliases[key]; ok {
		name = arabic
	}

	vec, err := s.llm.EmbedOne(ctx, name)
	if err != nil {
		return "", fmt.Errorf("graph: embed tag: %w", err)
	}
	matches, err := s.vec.Search(ctx, vec, 1, map[string]string{"namespace": "tag"})
	if err != nil {
		return "", fmt.Errorf("graph: search tag dedup: %w", err)
	}
	if len(matches) > 0 && matches[0].Score >= s.thresholds.TagDedup {
		if canonical, ok := matches[0].Payload["canonical"].(string); ok && canonical != "" {
			name = canonical
		}
	} else {
		if _, err := s.vec.Upsert(ctx, uuid.NewString(), vec, map[string]any{"namespace": "tag", "canonical": name}); err != nil {
			return "", fmt.Errorf("graph: index tag: %w", err)
		}
	}

	if _, err := s.store.Query(ctx, `MERGE (t:Tag {name: $name}) ON CREATE SET t.created_at = datetime()`,
		map[string]any{"name": name}); err != nil {
		return "", fmt.Errorf("graph: upsert tag: %w", err)
	}
	return name, nil
}

// TagEntity resolves tagName and creates a TAGGED_WITH edge from the entity
// identified by (label, id) to the tag.
func (s *Service) TagEntity(ctx context.Context, label, entityID, tagName string) error {
	tag, err := s.UpsertTag(ctx, tagName)
	if err != nil {
		return err
	}
	cypher := fmt.Sprintf(`
		MATCH (e:%s {id: $entity_id}), (t:Tag {name: $tag})
		MERGE (e)-[:TAGGED_WITH]->(t)`, label)
	if _, err := s.store.Query(ctx, cypher, map[string]any{"entity_id": entityID, "tag": tag}); err != nil {
		return fmt.Errorf("graph: tag entity: %w", err)
	}
	return nil
}

// Knowledge is one row of query_knowledge.
type Knowledge struct {
	ID       string
	Title    string
	Content  string
	Topic    string
	Category string
}

// QueryKnowledge filters by topic and/or category ("" = unfiltered).
func (s *Service) QueryKnowledge(ctx context.Context, topic, category string) ([]Knowledge, error) {
	rows, err := s.store.Query(ctx, `
		MATCH (k:Knowledge)
		WHERE ($topic = '' OR k.topic = $topic) AND ($category = '' OR k.category = $category)
		RETURN k ORDER BY k.created_at DESC LIMIT 100`,
		map[string]any{"topic": topic, "category": category})
	if err != nil {
		return nil, fmt.Errorf("graph: query knowledge: %w", err)
	}
	out := make([]Knowledge, 0, len(rows))
	for _, r := range rows {
		props, _ := r["k"].(map[string]any)
		id, _ := props["id"].(string)
		title, _ := props["title"].(string)
		content, _ := props["content"].(string)
		topicVal, _ := props["topic"].(string)
		category, _ := props["category"].(string)
		out = append(out, Knowledge{ID: id, Title: title, Content: content, Topic: topicVal, Category: category})
	}
	return out, nil
}
