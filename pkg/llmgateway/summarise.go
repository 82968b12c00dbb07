package llmgateway

import (
	"context"
	"fmt"
	"strings"
)

// SummaryKind selects the summarisation register: a chunk's surrounding
// context (ingestion contextual enrichment) versus a bundle of the day's
// chat turns (memory service daily rollup).
type SummaryKind int

const (
	// SummaryKindChunkContext enriches one ingestion chunk with a short
	// preceding-context blurb, per spec.md §4.2 step 3.
	SummaryKindChunkContext SummaryKind = iota
	// SummaryKindDailyMemory condenses a day's working-memory entries into
	// the daily-memory namespace, per spec.md §4.8.
	SummaryKindDailyMemory
)

func (k SummaryKind) instruction() string {
	switch k {
	case SummaryKindChunkContext:
		return "Write a single short sentence (in English) situating the following chunk within its surrounding document, so the chunk remains understandable in isolation. Do not repeat the chunk itself, only the context sentence."
	case SummaryKindDailyMemory:
		return "Summarise the following day's conversation turns into a short paragraph of durable facts and open threads worth remembering tomorrow. Omit small talk. Write in English."
	default:
		return "Summarise the following text concisely."
	}
}

// Summarise produces a short summary of text in the given register.
// Grounded on the Gateway's Chat transport; used by the Ingestion Pipeline
// (chunk-context enrichment) and the Memory Service (daily rollups).
func (c *Client) Summarise(ctx context.Context, kind SummaryKind, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	res, err := c.Chat(ctx, []Message{
		{Role: RoleSystem, Content: kind.instruction()},
		{Role: RoleUser, Content: text},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("summarise: %w", err)
	}
	return strings.TrimSpace(res.Text), nil
}
