package llmgateway

import (
	"context"
	"fmt"
	"strings"
)

// Translate converts text between Arabic and English. direction is either
// "ar-en" or "en-ar". Storage language is English (spec.md §4.2 step 1);
// the original text is always kept by the caller for NER.
func (c *Client) Translate(ctx context.Context, text, direction string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	var instruction string
	switch direction {
	case "ar-en":
		instruction = "Translate the following Arabic text to English. Preserve names, numbers, and dates exactly. Reply with the translation only, no commentary."
	case "en-ar":
		instruction = "Translate the following English text to Arabic. Preserve names, numbers, and dates exactly. Reply with the translation only, no commentary."
	default:
		return "", fmt.Errorf("translate: unknown direction %q", direction)
	}

	res, err := c.Chat(ctx, []Message{
		{Role: RoleSystem, Content: instruction},
		{Role: RoleUser, Content: text},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	return strings.TrimSpace(res.Text), nil
}
