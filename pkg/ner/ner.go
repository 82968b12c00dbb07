// Package ner is a thin, lazily-initialised Arabic named-entity recognizer
// built on the LLM Gateway's chat transport (spec.md §2: LLM Gateway row
// names "think/reflect" and extraction; §4.2 step 4 names "NER hints
// (Arabic)"). There is no standalone NER model anywhere in the retrieval
// pack, so this reuses the chat completion the same way
// pkg/llmgateway/extract.go does, scoped to a narrower "just the names"
// output consumed as a hint prefix rather than full structured facts.
package ner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rafiq-ai/rafiq/pkg/llmgateway"
)

// Recognizer extracts a flat list of named entities (person/place/org
// surface forms, Arabic or English) from a text chunk.
type Recognizer struct {
	client *llmgateway.Client
}

// New builds a Recognizer over an existing LLM Gateway client. The
// recognizer holds no state of its own and is cheap to construct lazily
// on first use.
func New(client *llmgateway.Client) *Recognizer {
	return &Recognizer{client: client}
}

const nerPrompt = `Extract every named entity (people, organisations, places) mentioned in the
following Arabic or English text. Reply with a JSON object: {"entities": array of strings},
using the surface form as it appears in the text. If none, reply {"entities": []}.
Do not include any text outside the JSON object.`

// Hints returns the flat entity-name list used as a "[NER hints: ...]"
// prefix ahead of fact extraction (spec.md §4.2 step 4).
func (r *Recognizer) Hints(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	res, err := r.client.Chat(ctx, []llmgateway.Message{
		{Role: llmgateway.RoleSystem, Content: nerPrompt},
		{Role: llmgateway.RoleUser, Content: text},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("ner: %w", err)
	}

	var parsed struct {
		Entities []string `json:"entities"`
	}
	if err := json.Unmarshal([]byte(stripFence(res.Text)), &parsed); err != nil {
		return nil, fmt.Errorf("ner: malformed reply: %w", err)
	}
	return parsed.Entities, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
