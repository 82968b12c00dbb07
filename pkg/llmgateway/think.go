package llmgateway

import (
	"context"
	"fmt"
	"strings"
)

// thinkPrompt drives the Gateway's internal reflection call (spec.md §2
// LLM Gateway row: "think/reflect"): a silent reasoning step whose answer
// is never shown to the user. Neither the orchestrator nor the Router
// calls Think.
const thinkPrompt = `You are the internal reasoning step of a personal assistant.
You are given the assistant's recent context and a question to reason about silently.
Answer the question directly and concisely, in one or two sentences. Do not address the user;
this reasoning is never shown to them.`

// Think runs a short, non-conversational reasoning call over context for
// question, returning its plain-text conclusion. It never calls tools.
func (c *Client) Think(ctx context.Context, situationContext, question string) (string, error) {
	prompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", situationContext, question)

	res, err := c.Chat(ctx, []Message{
		{Role: RoleSystem, Content: thinkPrompt},
		{Role: RoleUser, Content: prompt},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("think: %w", err)
	}
	return strings.TrimSpace(res.Text), nil
}
