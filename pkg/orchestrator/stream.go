package orchestrator

import (
	"context"
	"fmt"

	"github.com/rafiq-ai/rafiq/pkg/llmgateway"
)

// StreamEventType mirrors llmgateway.StreamEventType for the orchestrator's
// own NDJSON vocabulary (spec.md §6: "meta|token|tool_call|done").
type StreamEventType = llmgateway.StreamEventType

// StreamEvent is one increment of a streamed chat turn.
type StreamEvent struct {
	Type      StreamEventType
	Token     string
	ToolsUsed []string
	Done      *Reply
	Err       error
}

// RunStream streams one chat turn. On a tool-call interrupt it executes
// the requested tools, appends the results, and restarts a fresh
// streaming call with the full conversation so far — per spec.md §9
// "streaming tool-call interruption restarts with the full conversation."
// The iteration cap and forced-text-reply-on-last-iteration behavior
// mirror loop() exactly; only the text-token delivery differs.
func (o *Orchestrator) RunStream(ctx context.Context, sessionID, userMessage string) <-chan StreamEvent {
	out := make(chan StreamEvent, 32)

	go func() {
		defer close(out)

		messages, err := o.buildMessages(ctx, sessionID, userMessage)
		if err != nil {
			out <- StreamEvent{Type: llmgateway.StreamError, Err: fmt.Errorf("orchestrator: build messages: %w", err)}
			return
		}

		var trace []toolOutcome
		max := o.maxIterations()

		for iter := 1; iter <= max; iter++ {
			tools := o.catalog.Schemas()
			forced := iter == max
			if forced {
				tools = nil
			}

			var finalText string
			var toolCalls []llmgateway.ToolCall
			streamErr := error(nil)

			for ev := range o.llm.ChatStream(ctx, messages, tools) {
				switch ev.Type {
				case llmgateway.StreamToken:
					finalText += ev.Token
					out <- StreamEvent{Type: llmgateway.StreamToken, Token: ev.Token}
				case llmgateway.StreamToolCall:
					toolCalls = ev.ToolCalls
				case llmgateway.StreamError:
					streamErr = ev.Err
				}
			}

			if streamErr != nil {
				reply := o.fallbackReply(ctx, trace, streamErr)
				o.postProcess(ctx, sessionID, userMessage, reply, trace)
				out <- StreamEvent{Type: llmgateway.StreamDone, Done: reply}
				return
			}

			if len(toolCalls) == 0 || forced {
				reply := &Reply{Text: finalText}
				for _, t := range trace {
					reply.ToolsUsed = append(reply.ToolsUsed, t.call.Name)
					if IsWriteTool(t.call.Name) {
						reply.WriteOccurred = true
					}
				}
				o.postProcess(ctx, sessionID, userMessage, reply, trace)
				out <- StreamEvent{Type: llmgateway.StreamDone, Done: reply, ToolsUsed: reply.ToolsUsed}
				return
			}

			calls := stableOrder(o.catalog, toolCalls)
			outcomes := o.dispatch(ctx, calls)
			trace = append(trace, outcomes...)

			messages = append(messages, llmgateway.Message{Role: llmgateway.RoleAssistant, Content: finalText, ToolCalls: calls})
			for _, res := range outcomes {
				messages = append(messages, llmgateway.Message{
					Role:       llmgateway.RoleTool,
					Content:    marshalResult(res.result),
					ToolCallID: res.call.ID,
				})
			}
		}
	}()

	return out
}
