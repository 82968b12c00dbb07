package llmgateway

import (
	"context"
	"fmt"
	"strings"
)

// Classify picks one label from candidates for text, used by the Smart
// Router's LLM fallback (spec.md §4.6: "no match falls back to an LLM
// classify call") and by the File Processor's image classifier (§4.3).
func (c *Client) Classify(ctx context.Context, text string, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("classify: no candidates")
	}

	instruction := fmt.Sprintf(
		"Classify the following message into exactly one of these labels: %s.\nReply with the label only, nothing else.",
		strings.Join(candidates, ", "),
	)

	res, err := c.Chat(ctx, []Message{
		{Role: RoleSystem, Content: instruction},
		{Role: RoleUser, Content: text},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}

	label := strings.TrimSpace(res.Text)
	for _, cand := range candidates {
		if strings.EqualFold(label, cand) {
			return cand, nil
		}
	}
	// Model drifted from the candidate set; fall back to the first
	// candidate rather than propagate an unrecognised label upstream.
	return candidates[0], nil
}
