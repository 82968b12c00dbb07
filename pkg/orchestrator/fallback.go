package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// fallbackReply synthesizes an Arabic reply directly from whatever tool
// results were already gathered before the LLM call failed or timed out,
// per spec.md §4.1 "_fallback_reply": "on LLM timeout or malformed
// output, synthesize a reply directly from raw tool results rather than
// surfacing the error to the user." Grounded on tarsy's
// FormatErrorObservation (react_parser.go) — generalized from an
// in-loop retry observation to a terminal user-facing reply.
func (o *Orchestrator) fallbackReply(ctx context.Context, trace []toolOutcome, cause error) *Reply {
	slog.Warn("orchestrator: falling back to synthesized reply", "error", cause)

	if len(trace) == 0 {
		return &Reply{
			Text:     "عذراً، لم أتمكن من معالجة طلبك الآن. حاول مرة أخرى خلال لحظات.",
			Fallback: true,
		}
	}

	var b strings.Builder
	b.WriteString("حدث خلل أثناء صياغة الرد الكامل، لكن هذا ما تم تنفيذه:\n")

	var toolsUsed []string
	writeOccurred := false
	for _, out := range trace {
		toolsUsed = append(toolsUsed, out.call.Name)
		if IsWriteTool(out.call.Name) {
			writeOccurred = true
		}
		if ok, _ := out.result["ok"].(bool); ok {
			summary, _ := out.result["summary"].(string)
			b.WriteString(fmt.Sprintf("- %s: %s\n", out.call.Name, orDefault(summary, "تم التنفيذ")))
		} else if errMsg, _ := out.result["error"].(string); errMsg != "" {
			b.WriteString(fmt.Sprintf("- %s: تعذر التنفيذ (%s)\n", out.call.Name, errMsg))
		} else {
			b.WriteString(fmt.Sprintf("- %s: تم تنفيذ الأداة\n", out.call.Name))
		}
	}

	return &Reply{Text: b.String(), ToolsUsed: toolsUsed, Fallback: true, WriteOccurred: writeOccurred}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
