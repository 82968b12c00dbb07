package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rafiq-ai/rafiq/pkg/config"
	"github.com/rafiq-ai/rafiq/pkg/graph"
	"github.com/rafiq-ai/rafiq/pkg/llmgateway"
	"github.com/rafiq-ai/rafiq/pkg/memorystore"
	"github.com/rafiq-ai/rafiq/pkg/ner"
)

// Orchestrator runs the AwaitLLM/DispatchTools/AwaitTools/Done loop over
// the tool catalog for one chat turn, then runs post-processing against
// the Memory Store and Graph Service.
type Orchestrator struct {
	llm     *llmgateway.Client
	catalog *Catalog
	mem     *memorystore.Store
	graph   *graph.Service
	ner     *ner.Recognizer
	cfg     config.Config
}

// New wires an Orchestrator.
func New(llm *llmgateway.Client, catalog *Catalog, mem *memorystore.Store, graphSvc *graph.Service, nerRecognizer *ner.Recognizer, cfg config.Config) *Orchestrator {
	return &Orchestrator{llm: llm, catalog: catalog, mem: mem, graph: graphSvc, ner: nerRecognizer, cfg: cfg}
}

// Reply is one chat turn's outcome.
type Reply struct {
	Text          string
	ToolsUsed     []string
	Fallback      bool // set when the LLM loop failed and a synthesized reply was returned instead
	WriteOccurred bool
}

// Run executes one turn of the loop for a session and then performs
// post-processing (working-memory append, auto-extraction, periodic
// summaries, auto-dismiss). Post-processing failures are logged but never
// turn the reply into an error — the user already has their answer.
func (o *Orchestrator) Run(ctx context.Context, sessionID, userMessage string) (*Reply, error) {
	messages, err := o.buildMessages(ctx, sessionID, userMessage)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build messages: %w", err)
	}

	reply, toolTrace, err := o.loop(ctx, messages)
	if err != nil {
		reply = o.fallbackReply(ctx, toolTrace, err)
	}

	o.postProcess(ctx, sessionID, userMessage, reply, toolTrace)
	return reply, nil
}

// ConversationSummary returns the session's current rolling summary, for
// the REST surface's GET /chat/summary (spec.md §6). Empty string if no
// compression has happened yet.
func (o *Orchestrator) ConversationSummary(ctx context.Context, sessionID string) (string, error) {
	return o.mem.ConversationSummary(ctx, sessionID)
}

// toolOutcome is one executed call's result, kept for fallback synthesis
// and post-processing even when the loop as a whole errors out.
type toolOutcome struct {
	call   llmgateway.ToolCall
	result toolResult
}

// maxIterations returns the configured tool-calling iteration cap, per
// spec.md §4.1 ("3-iteration cap with forced text reply on the 3rd").
func (o *Orchestrator) maxIterations() int {
	if o.cfg.LLM.MaxToolIterations > 0 {
		return o.cfg.LLM.MaxToolIterations
	}
	return 3
}

// loop runs the AwaitLLM -> DispatchTools -> AwaitTools cycle, forcing a
// text-only reply on the final iteration (spec.md §4.1).
func (o *Orchestrator) loop(ctx context.Context, messages []llmgateway.Message) (*Reply, []toolOutcome, error) {
	var trace []toolOutcome
	max := o.maxIterations()

	for iter := 1; iter <= max; iter++ {
		tools := o.catalog.Schemas()
		forced := iter == max
		if forced {
			tools = nil // force a text conclusion per spec.md §4.1
		}

		res, err := o.llm.Chat(ctx, messages, tools)
		if err != nil {
			return nil, trace, fmt.Errorf("llm chat (iteration %d): %w", iter, err)
		}

		if len(res.ToolCalls) == 0 || forced {
			reply := &Reply{Text: res.Text}
			for _, t := range trace {
				reply.ToolsUsed = append(reply.ToolsUsed, t.call.Name)
				if IsWriteTool(t.call.Name) {
					reply.WriteOccurred = true
				}
			}
			return reply, trace, nil
		}

		calls := stableOrder(o.catalog, res.ToolCalls)
		outcomes := o.dispatch(ctx, calls)
		trace = append(trace, outcomes...)

		messages = append(messages, llmgateway.Message{Role: llmgateway.RoleAssistant, Content: res.Text, ToolCalls: calls})
		for _, out := range outcomes {
			messages = append(messages, llmgateway.Message{
				Role:       llmgateway.RoleTool,
				Content:    marshalResult(out.result),
				ToolCallID: out.call.ID,
			})
		}
	}

	// Unreachable: the forced-reply branch above always returns by the
	// last iteration, but keep a safe fallback for max <= 0 misconfiguration.
	return &Reply{Text: ""}, trace, nil
}

// dispatch runs calls concurrently and returns outcomes in the same
// (already catalog-ordered) sequence as calls, for deterministic
// tool-result merging (spec.md §5).
func (o *Orchestrator) dispatch(ctx context.Context, calls []llmgateway.ToolCall) []toolOutcome {
	outcomes := make([]toolOutcome, len(calls))
	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		i, call := i, call
		g.Go(func() error {
			outcomes[i] = toolOutcome{call: call, result: o.catalog.Dispatch(gctx, call.Name, call.Arguments)}
			return nil
		})
	}
	_ = g.Wait() // Dispatch never returns a Go error; failures are carried in toolResult
	return outcomes
}

// stableOrder sorts the model's requested tool calls into catalog
// definition order before dispatch, so parallel execution merges back
// deterministically regardless of the order the model listed them in.
func stableOrder(c *Catalog, calls []llmgateway.ToolCall) []llmgateway.ToolCall {
	out := make([]llmgateway.ToolCall, len(calls))
	copy(out, calls)
	sort.SliceStable(out, func(i, j int) bool { return c.Order(out[i].Name) < c.Order(out[j].Name) })
	return out
}

func marshalResult(r toolResult) string {
	data, err := json.Marshal(r)
	if err != nil {
		return `{"ok":false,"error":"failed to encode tool result"}`
	}
	return string(data)
}

// systemPromptHeader opens the Arabic-first system prompt; buildMessages
// appends the rest per spec.md §4.1 step 1: current date/time in the
// user's timezone, memory excerpts, and the active project name when one
// is set.
const systemPromptHeader = `أنت رفيق، مساعد شخصي ثنائي اللغة (عربي/إنجليزي) يدير قاعدة معرفة ورسم بياني شخصي للمستخدم.
أجب بالعربية ما لم يكتب المستخدم بالإنجليزية. استخدم الأدوات المتاحة عند الحاجة إلى بيانات أو لتنفيذ إجراء، ولا تخترع معلومات غير موجودة في الأدوات أو الذاكرة.`

func (o *Orchestrator) buildMessages(ctx context.Context, sessionID, userMessage string) ([]llmgateway.Message, error) {
	now := time.Now().UTC().Add(time.Duration(o.cfg.TimezoneOffsetHours) * time.Hour)

	prompt := systemPromptHeader + fmt.Sprintf("\n\nالتاريخ والوقت الحاليان: %s", now.Format("2006-01-02 15:04"))

	if active, err := o.mem.ActiveProject(ctx, sessionID); err == nil && active != "" {
		prompt += fmt.Sprintf("\nالمشروع النشط حالياً: %s", active)
	}
	if summary, err := o.mem.ConversationSummary(ctx, sessionID); err == nil && summary != "" {
		prompt += fmt.Sprintf("\n\nملخص المحادثة السابقة: %s", summary)
	}
	if core, err := o.mem.CorePreferences(ctx, sessionID); err == nil && len(core) > 0 {
		prompt += "\n\nتفضيلات ثابتة معروفة عن المستخدم:"
		for k, v := range core {
			prompt += fmt.Sprintf("\n- %s: %s", k, v)
		}
	}

	messages := []llmgateway.Message{{Role: llmgateway.RoleSystem, Content: prompt}}

	turns, err := o.mem.WorkingTurns(ctx, sessionID)
	if err != nil {
		turns = nil // working memory is best-effort context, never a hard failure
	}
	for _, t := range turns {
		role := llmgateway.RoleUser
		if t.Role == "assistant" {
			role = llmgateway.RoleAssistant
		}
		messages = append(messages, llmgateway.Message{Role: role, Content: t.Content})
	}

	messages = append(messages, llmgateway.Message{Role: llmgateway.RoleUser, Content: userMessage})
	return messages, nil
}
