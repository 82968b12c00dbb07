package llmgateway

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
)

// Role identifies a chat message's author, mirroring the four roles the
// Tool-Calling Orchestrator composes (spec.md §4.1 step 2).
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of the conversation sent to the model.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall // assistant messages that requested tool calls
	ToolCallID string     // tool messages: which call this is a result for
}

// Usage reports token accounting for one LLM call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// ChatResult is the outcome of a one-shot tool-calling chat call.
type ChatResult struct {
	Text         string
	ToolCalls    []ToolCall
	Usage        Usage
	FinishReason string
}

func (c *Client) buildParams(messages []Message, tools []ToolSchema) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:       c.chatModel,
		Temperature: openai.Float(c.temperature),
	}
	if len(tools) > 0 {
		params.Tools = buildToolParams(tools)
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case RoleUser:
			msgs = append(msgs, openai.UserMessage(m.Content))
		case RoleAssistant:
			am := openai.AssistantMessage(m.Content)
			for _, tc := range m.ToolCalls {
				am.OfAssistant.ToolCalls = append(am.OfAssistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: tc.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      tc.Name,
							Arguments: tc.Arguments,
						},
					},
				})
			}
			msgs = append(msgs, am)
		case RoleTool:
			msgs = append(msgs, openai.ToolMessage(m.Content, m.ToolCallID))
		}
	}
	params.Messages = msgs
	return params
}

// Chat runs a single (non-streaming) tool-calling chat completion. Timeout
// is the caller's responsibility via ctx (spec.md §5: 60s default per
// LLM call).
func (c *Client) Chat(ctx context.Context, messages []Message, tools []ToolSchema) (*ChatResult, error) {
	params := c.buildParams(messages, tools)

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: empty choices")
	}

	choice := resp.Choices[0]
	result := &ChatResult{
		Text:         choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
		},
	}
	for _, tc := range choice.Message.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return result, nil
}

// StreamEventType discriminates StreamEvent payloads.
type StreamEventType string

const (
	StreamToken    StreamEventType = "token"
	StreamToolCall StreamEventType = "tool_call"
	StreamDone     StreamEventType = "done"
	StreamError    StreamEventType = "error"
)

// StreamEvent is one increment of a streaming chat completion, mirroring
// the teacher's pkg/llm/client.go ThinkingChunk channel-based streaming
// idiom, generalized to this system's NDJSON event vocabulary (spec.md
// §6 "meta|token|tool_call|done").
type StreamEvent struct {
	Type      StreamEventType
	Token     string
	ToolCalls []ToolCall
	Usage     Usage
	Err       error
}

// ChatStream streams a tool-calling completion. It returns a channel that
// is closed after a StreamDone, StreamToolCall or StreamError event. The caller is
// expected to terminate on a StreamToolCall event, execute the tools, and
// issue a fresh ChatStream call with the appended conversation (spec.md
// §9: streaming tool-call interruption restarts with the full
// conversation).
func (c *Client) ChatStream(ctx context.Context, messages []Message, tools []ToolSchema) <-chan StreamEvent {
	out := make(chan StreamEvent, 16)

	go func() {
		defer close(out)

		params := c.buildParams(messages, tools)
		stream := c.api.Chat.Completions.NewStreaming(ctx, params)
		defer stream.Close()

		acc := openai.ChatCompletionAccumulator{}

		for stream.Next() {
			chunk := stream.Current()
			acc.AddChunk(chunk)

			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta
			if delta.Content != "" {
				select {
				case out <- StreamEvent{Type: StreamToken, Token: delta.Content}:
				case <-ctx.Done():
					out <- StreamEvent{Type: StreamError, Err: ctx.Err()}
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			out <- StreamEvent{Type: StreamError, Err: fmt.Errorf("stream chat completion: %w", err)}
			return
		}

		if len(acc.Choices) > 0 {
			var calls []ToolCall
			for _, tc := range acc.Choices[0].Message.ToolCalls {
				calls = append(calls, ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: tc.Function.Arguments})
			}
			if len(calls) > 0 {
				out <- StreamEvent{Type: StreamToolCall, ToolCalls: calls}
				return
			}
		}

		out <- StreamEvent{
			Type: StreamDone,
			Usage: Usage{
				PromptTokens:     int(acc.Usage.PromptTokens),
				CompletionTokens: int(acc.Usage.CompletionTokens),
			},
		}
	}()

	return out
}
