package llmgateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractedFact is one {entity, relationship} unit produced by fact
// extraction, matching the Graph Service's generic
// upsert_from_facts(facts, file_hash?) input shape (spec.md §4.4).
type ExtractedFact struct {
	EntityType string            `json:"entity_type"` // Person, Company, Project, Task, Knowledge, Location, ...
	Name       string            `json:"name"`
	NameAr     string            `json:"name_ar,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	RelatesTo  string            `json:"relates_to,omitempty"`
	Relation   string            `json:"relation,omitempty"`
}

// extractionPrompt is the fact-extraction system prompt, grounded in style
// on the entity-extraction prompt pattern from the retrieval pack
// (typed categories, JSON-only output, worked examples) and adapted to
// this system's entity label set (spec.md §3).
const extractionPrompt = `You are a fact extraction engine for a bilingual (Arabic/English) personal knowledge base.
Given a text chunk, extract entities and the relationships between them.

ENTITY TYPES (use exactly these values):
- Person, Company, Project, Task, Knowledge, Location, Item, Idea, Topic

Only extract types in the AUTO_EXTRACT_SAFE set {Person, Company, Knowledge, Location} unless
the chunk explicitly names a Project, Task, Item, Idea, or Topic as a stored fact, not a to-do.
Never output Section or ListEntry entities — those are created only by explicit tool calls.

Return a JSON object with exactly one key:
  "facts": array of {"entity_type": string, "name": string, "name_ar": string (optional),
                      "properties": object of string->string (optional),
                      "relates_to": string (optional), "relation": string (optional)}

Rules:
- "name" is the canonical English form; "name_ar" preserves the Arabic surface form when present.
- If there are no facts, return {"facts": []}.
- Do NOT include any text outside the JSON object.`

// ExtractFacts extracts structured facts from a chunk, per spec.md §4.2
// step 4: "Extract structured facts (entities + relationships) from the
// larger chunk. NER hints (Arabic) are prepended as `[NER hints: …]`."
func (c *Client) ExtractFacts(ctx context.Context, chunk string, nerHints []string) ([]ExtractedFact, error) {
	prompt := chunk
	if len(nerHints) > 0 {
		prompt = fmt.Sprintf("[NER hints: %s]\n%s", strings.Join(nerHints, ", "), chunk)
	}

	res, err := c.Chat(ctx, []Message{
		{Role: RoleSystem, Content: extractionPrompt},
		{Role: RoleUser, Content: prompt},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("extract facts: %w", err)
	}

	var parsed struct {
		Facts []ExtractedFact `json:"facts"`
	}
	text := stripJSONFence(res.Text)
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("extract facts: %w: %w", ErrMalformedExtraction, err)
	}
	return parsed.Facts, nil
}

// stripJSONFence removes a ```json ... ``` or ``` ... ``` fence some models
// wrap JSON replies in, despite being told not to.
func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
