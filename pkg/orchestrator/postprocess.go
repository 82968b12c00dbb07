package orchestrator

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/rafiq-ai/rafiq/pkg/llmgateway"
	"github.com/rafiq-ai/rafiq/pkg/memorystore"
)

const (
	dailySummaryEveryNMessages = 10
	coreSummaryEveryNMessages  = 20
)

// autoExtractSafeTypes mirrors llmgateway's AUTO_EXTRACT_SAFE set: only
// these entity types are stored from passive conversation, never a
// Project/Task/Item that would otherwise require an explicit tool call.
var autoExtractSafeTypes = map[string]bool{"person": true, "company": true, "knowledge": true, "location": true}

// storableRE matches bilingual "remember this / I learned / this is" cue
// phrases that mark a user turn as worth auto-extracting, per spec.md
// §4.1 post-processing step 3.
var storableRE = regexp.MustCompile(`(?i)\b(remember|note that|i learned|this is|fyi)\b|تذكر|اعلم أن|معلومة|هذا`)

// postProcess runs the fixed sequence of spec.md §4.1 post-processing
// steps. Every step is best-effort: a failure is logged and the next step
// still runs, since the user's reply has already been returned.
func (o *Orchestrator) postProcess(ctx context.Context, sessionID, userMessage string, reply *Reply, trace []toolOutcome) {
	cleanUser := stripOWUIGarbage(userMessage)
	cleanReply := stripOWUIGarbage(reply.Text)

	n, err := o.mem.AppendWorkingTurn(ctx, sessionID, memorystore.Turn{Role: "user", Content: cleanUser, TS: time.Now().UTC()})
	if err != nil {
		slog.Warn("postprocess: append user turn failed", "error", err)
	}
	if _, err := o.mem.AppendWorkingTurn(ctx, sessionID, memorystore.Turn{Role: "assistant", Content: cleanReply, TS: time.Now().UTC()}); err != nil {
		slog.Warn("postprocess: append assistant turn failed", "error", err)
	}

	if reply.WriteOccurred {
		// A write tool already captured the fact this turn; skip
		// redundant auto-extraction (spec.md §4.1 step 2).
	} else if storableRE.MatchString(userMessage) {
		o.autoExtract(ctx, cleanUser)
	}

	o.maybeRefreshSummaries(ctx, sessionID, n)
	o.autoDismissReminders(ctx, trace)
}

// autoExtract runs NER + a safe-type-restricted fact extraction over one
// conversational turn, then upserts via the Graph Service's
// entity-resolution path.
func (o *Orchestrator) autoExtract(ctx context.Context, text string) {
	hints, err := o.ner.Hints(ctx, text)
	if err != nil {
		hints = nil
	}

	facts, err := o.llm.ExtractFacts(ctx, text, hints)
	if err != nil {
		slog.Warn("postprocess: auto-extract failed", "error", err)
		return
	}

	safe := make([]llmgateway.ExtractedFact, 0, len(facts))
	for _, f := range facts {
		if autoExtractSafeTypes[strings.ToLower(f.EntityType)] {
			safe = append(safe, f)
		}
	}
	if len(safe) == 0 {
		return
	}
	if _, err := o.graph.UpsertFromFacts(ctx, safe, ""); err != nil {
		slog.Warn("postprocess: upsert auto-extracted facts failed", "error", err)
	}
}

// maybeRefreshSummaries computes a daily rollup every
// dailySummaryEveryNMessages, promotes durable preferences into core
// memory every coreSummaryEveryNMessages, and compresses working memory
// once its length passes the configured threshold, per spec.md §4.8.
func (o *Orchestrator) maybeRefreshSummaries(ctx context.Context, sessionID string, workingLen int64) {
	if workingLen <= 0 {
		return
	}

	if workingLen%dailySummaryEveryNMessages == 0 {
		if summary := o.summariseWorkingTurns(ctx, sessionID); summary != "" {
			date := time.Now().UTC().Add(time.Duration(o.cfg.TimezoneOffsetHours) * time.Hour).Format("2006-01-02")
			if err := o.mem.SetDailySummary(ctx, sessionID, date, summary); err != nil {
				slog.Warn("postprocess: set daily summary failed", "error", err)
			}
		}
	}

	if workingLen%coreSummaryEveryNMessages == 0 {
		o.refreshCoreMemory(ctx, sessionID)
	}

	if due, err := o.mem.CompressionDue(ctx, sessionID, 0); err == nil && due {
		if summary := o.summariseWorkingTurns(ctx, sessionID); summary != "" {
			if err := o.mem.CompressWorkingMemory(ctx, sessionID, summary); err != nil {
				slog.Warn("postprocess: compress working memory failed", "error", err)
			}
		}
	}
}

// summariseWorkingTurns renders the session's working memory into a
// daily-register summary via the LLM Gateway; returns "" on any failure.
func (o *Orchestrator) summariseWorkingTurns(ctx context.Context, sessionID string) string {
	turns, err := o.mem.WorkingTurns(ctx, sessionID)
	if err != nil || len(turns) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range turns {
		b.WriteString(t.Role)
		b.WriteString(": ")
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	summary, err := o.llm.Summarise(ctx, llmgateway.SummaryKindDailyMemory, b.String())
	if err != nil {
		slog.Warn("postprocess: summarise working turns failed", "error", err)
		return ""
	}
	return summary
}

// corePreferencePrompt extracts durable, reusable facts about the user
// (stated preferences, recurring patterns) from a batch of working-memory
// turns, as opposed to the per-turn fact extraction used for entities.
const corePreferencePrompt = `From the following conversation turns, extract durable personal preferences or
recurring patterns about the user worth remembering permanently (e.g. preferred units, recurring
habits, standing instructions). Reply with a JSON object {"preferences": {key: value, ...}} using
short snake_case keys. If none, reply {"preferences": {}}. Do not include any text outside the JSON.`

// refreshCoreMemory promotes durable preferences surfaced in recent
// working-memory turns into the core namespace, per spec.md §4.8.
func (o *Orchestrator) refreshCoreMemory(ctx context.Context, sessionID string) {
	turns, err := o.mem.WorkingTurns(ctx, sessionID)
	if err != nil || len(turns) == 0 {
		return
	}

	var b strings.Builder
	for _, t := range turns {
		b.WriteString(t.Role)
		b.WriteString(": ")
		b.WriteString(t.Content)
		b.WriteString("\n")
	}

	res, err := o.llm.Chat(ctx, []llmgateway.Message{
		{Role: llmgateway.RoleSystem, Content: corePreferencePrompt},
		{Role: llmgateway.RoleUser, Content: b.String()},
	}, nil)
	if err != nil {
		slog.Warn("postprocess: core memory refresh failed", "error", err)
		return
	}

	var parsed struct {
		Preferences map[string]string `json:"preferences"`
	}
	if err := json.Unmarshal([]byte(stripJSONFence(res.Text)), &parsed); err != nil {
		slog.Warn("postprocess: core memory refresh malformed reply", "error", err)
		return
	}
	for field, value := range parsed.Preferences {
		if err := o.mem.SetCorePreference(ctx, sessionID, field, value); err != nil {
			slog.Warn("postprocess: set core preference failed", "error", err)
		}
	}
}

func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

// autoDismissReminders fuzzy-matches pending reminders against the title
// of any task a manage_tasks call just marked "done" this turn, and
// dismisses the close ones — spec.md §4.1 "_auto_dismiss_reminders".
func (o *Orchestrator) autoDismissReminders(ctx context.Context, trace []toolOutcome) {
	for _, out := range trace {
		if out.call.Name != "manage_tasks" {
			continue
		}
		var args struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal([]byte(out.call.Arguments), &args); err != nil || args.Status != "done" {
			continue
		}
		taskName, _ := out.result["entity_id"].(string)
		if taskName == "" {
			continue
		}

		pending, err := o.graph.QueryReminders(ctx, "pending", "")
		if err != nil {
			continue
		}
		for _, r := range pending {
			if fuzzyMatch(taskName, r.Title) >= o.cfg.Thresholds.AutoDismissFuzzyThreshold {
				if err := o.graph.SetReminderStatus(ctx, r.ID, "done", time.Time{}); err != nil {
					slog.Warn("postprocess: auto-dismiss reminder failed", "error", err)
				}
			}
		}
	}
}
