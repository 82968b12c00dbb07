// Package orchestrator implements the Tool-Calling Orchestrator (spec.md
// §4.1): the {AwaitLLM,DispatchTools,AwaitTools,Stream,Done,Fallback}
// loop over the 19-tool catalog, plus post-processing. Grounded on tarsy
// pkg/agent/controller/react.go (iteration loop, forced-conclusion cap)
// and pkg/agent/controller/tool_execution.go (per-call dispatch,
// error-as-tool-result semantics), generalized from the ReAct
// investigation loop to a fixed tool catalog wired directly to the
// Graph Service.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rafiq-ai/rafiq/pkg/graph"
	"github.com/rafiq-ai/rafiq/pkg/ingestion"
	"github.com/rafiq-ai/rafiq/pkg/llmgateway"
)

// writeTools is _WRITE_TOOLS (spec.md §4.1 post-processing step 2):
// tools whose execution already captured a fact, so auto-extraction is
// skipped for that turn.
var writeTools = map[string]bool{
	"create_reminder": true, "update_reminder": true, "delete_reminder": true,
	"add_expense": true, "record_debt": true, "pay_debt": true, "store_note": true,
	"manage_inventory": true, "manage_tasks": true, "manage_projects": true,
	"merge_projects": true, "manage_lists": true,
}

// toolResult is a tool handler's return payload, shaped per spec.md §4.1:
// "Write tools execute their effect and return {ok, entity_kind,
// entity_id, summary}; read tools return compact structured data."
type toolResult map[string]any

func ok(entityKind, entityID, summary string) toolResult {
	return toolResult{"ok": true, "entity_kind": entityKind, "entity_id": entityID, "summary": summary}
}

func failResult(err error) toolResult {
	return toolResult{"ok": false, "error": err.Error()}
}

// handler executes one tool call's body against parsed JSON arguments.
type handler func(ctx context.Context, args map[string]any) toolResult

// tool pairs the LLM-facing schema with its handler.
type tool struct {
	schema  llmgateway.ToolSchema
	handler handler
}

// Catalog is the orchestrator's fixed, name-stable tool set (spec.md §4.1
// "Tool catalog").
type Catalog struct {
	tools []tool
	index map[string]int
}

// BuildCatalog wires every tool name to its Graph Service / Ingestion
// Pipeline implementation.
func BuildCatalog(g *graph.Service, ing *ingestion.Pipeline) *Catalog {
	c := &Catalog{index: map[string]int{}}
	add := func(name, desc string, params map[string]any, h handler) {
		c.index[name] = len(c.tools)
		c.tools = append(c.tools, tool{schema: llmgateway.ToolSchema{Name: name, Description: desc, Parameters: params}, handler: h})
	}

	add("search_knowledge", "Search stored knowledge notes by topic and/or category.", objSchema("topic", "category"),
		func(ctx context.Context, a map[string]any) toolResult {
			items, err := g.QueryKnowledge(ctx, str(a, "topic"), str(a, "category"))
			if err != nil {
				return failResult(err)
			}
			return toolResult{"items": items}
		})

	add("search_reminders", "Search reminders by status and/or free-text query.", objSchema("status", "query"),
		func(ctx context.Context, a map[string]any) toolResult {
			items, err := g.QueryReminders(ctx, str(a, "status"), str(a, "query"))
			if err != nil {
				return failResult(err)
			}
			return toolResult{"items": items}
		})

	add("create_reminder", "Create a reminder with a title and due date.", objSchema("title", "due_date", "type", "recurrence", "priority", "description"),
		func(ctx context.Context, a map[string]any) toolResult {
			due, err := parseTime(str(a, "due_date"))
			if err != nil {
				return failResult(err)
			}
			id, err := g.CreateReminder(ctx, graph.ReminderInput{
				Title: str(a, "title"), DueDate: due, Type: str(a, "type"),
				Recurrence: str(a, "recurrence"), Priority: str(a, "priority"), Description: str(a, "description"),
			})
			if err != nil {
				return failResult(err)
			}
			return ok("Reminder", id, "reminder created")
		})

	add("update_reminder", "Update a reminder's fields.", objSchema("id", "title", "due_date", "priority", "description"),
		func(ctx context.Context, a map[string]any) toolResult {
			due, _ := parseTime(str(a, "due_date"))
			err := g.UpdateReminder(ctx, str(a, "id"), graph.ReminderInput{
				Title: str(a, "title"), DueDate: due, Priority: str(a, "priority"), Description: str(a, "description"),
			})
			if err != nil {
				return failResult(err)
			}
			return ok("Reminder", str(a, "id"), "reminder updated")
		})

	add("delete_reminder", "Delete a reminder by id.", objSchema("id"),
		func(ctx context.Context, a map[string]any) toolResult {
			if err := g.DeleteReminder(ctx, str(a, "id")); err != nil {
				return failResult(err)
			}
			return ok("Reminder", str(a, "id"), "reminder deleted")
		})

	add("add_expense", "Record a new expense.", objSchema("amount", "currency", "category", "vendor", "date"),
		func(ctx context.Context, a map[string]any) toolResult {
			id, err := g.UpsertExpense(ctx, graph.ExpenseInput{
				Amount: num(a, "amount"), Currency: str(a, "currency"), Category: str(a, "category"),
				Vendor: str(a, "vendor"), Date: str(a, "date"),
			})
			if err != nil {
				return failResult(err)
			}
			return ok("Expense", id, "expense recorded")
		})

	add("get_expense_report", "Get a monthly financial report, optionally compared to the previous month.", objSchema("month", "year", "compare"),
		func(ctx context.Context, a map[string]any) toolResult {
			report, err := g.QueryFinancialReport(ctx, int(num(a, "month")), int(num(a, "year")), truthy(a, "compare"))
			if err != nil {
				return failResult(err)
			}
			return toolResult{"report": report}
		})

	add("get_debt_summary", "List open debts, optionally filtered by direction.", objSchema("direction"),
		func(ctx context.Context, a map[string]any) toolResult {
			debts, err := g.QueryDebts(ctx, str(a, "direction"))
			if err != nil {
				return failResult(err)
			}
			return toolResult{"debts": debts}
		})

	add("record_debt", "Record money owed, in either direction.", objSchema("person", "amount", "currency", "direction", "reason"),
		func(ctx context.Context, a map[string]any) toolResult {
			id, err := g.RecordDebt(ctx, graph.DebtInput{
				Person: str(a, "person"), Amount: num(a, "amount"), Currency: str(a, "currency"),
				Direction: str(a, "direction"), Reason: str(a, "reason"),
			})
			if err != nil {
				return failResult(err)
			}
			return ok("Debt", id, "debt recorded")
		})

	add("pay_debt", "Apply a payment against an existing debt.", objSchema("debt_id", "amount", "date"),
		func(ctx context.Context, a map[string]any) toolResult {
			if err := g.PayDebt(ctx, str(a, "debt_id"), num(a, "amount"), str(a, "date")); err != nil {
				return failResult(err)
			}
			return ok("Debt", str(a, "debt_id"), "payment applied")
		})

	add("get_daily_plan", "Get today's tasks and pending reminders.", objSchema(),
		func(ctx context.Context, _ map[string]any) toolResult {
			plan, err := g.QueryDailyPlan(ctx)
			if err != nil {
				return failResult(err)
			}
			return toolResult{"plan": plan}
		})

	add("store_note", "Store a free-text note into the knowledge base.", objSchema("text", "topic"),
		func(ctx context.Context, a map[string]any) toolResult {
			out, err := ing.Ingest(ctx, ingestion.Input{Text: str(a, "text"), SourceType: "note", Topic: str(a, "topic")})
			if err != nil {
				return failResult(err)
			}
			return ok("Knowledge", "", fmt.Sprintf("%d facts stored", out.FactsExtracted))
		})

	add("get_person_info", "Look up what is known about a person.", objSchema("name"),
		func(ctx context.Context, a map[string]any) toolResult {
			person, err := g.QueryPersonContext(ctx, str(a, "name"))
			if err != nil {
				return failResult(err)
			}
			return toolResult{"person": person}
		})

	add("manage_inventory", "Create or update an inventory item.", objSchema("name", "quantity", "location", "category", "brand", "condition"),
		func(ctx context.Context, a map[string]any) toolResult {
			name, err := g.UpsertItem(ctx, graph.ItemInput{
				Name: str(a, "name"), Quantity: int(num(a, "quantity")), Location: str(a, "location"),
				Category: str(a, "category"), Brand: str(a, "brand"), Condition: str(a, "condition"),
			})
			if err != nil {
				return failResult(err)
			}
			return ok("Item", name, "item upserted")
		})

	add("manage_tasks", "Create or update a task.", objSchema("name", "status", "project", "sprint"),
		func(ctx context.Context, a map[string]any) toolResult {
			name, err := g.UpsertTask(ctx, graph.TaskInput{
				Name: str(a, "name"), Status: str(a, "status"), Project: str(a, "project"), Sprint: str(a, "sprint"),
			})
			if err != nil {
				return failResult(err)
			}
			return ok("Task", name, "task upserted")
		})

	add("manage_projects", "Create, update, or delete a project.", objSchema("name", "status", "priority", "description", "delete"),
		func(ctx context.Context, a map[string]any) toolResult {
			if truthy(a, "delete") {
				if err := g.DeleteProject(ctx, str(a, "name")); err != nil {
					return failResult(err)
				}
				return ok("Project", str(a, "name"), "project deleted")
			}
			name, err := g.UpsertProject(ctx, graph.ProjectInput{
				Name: str(a, "name"), Status: str(a, "status"), Priority: str(a, "priority"), Description: str(a, "description"),
			})
			if err != nil {
				return failResult(err)
			}
			return ok("Project", name, "project upserted")
		})

	add("merge_projects", "Merge a source project into a target project.", objSchema("source", "target"),
		func(ctx context.Context, a map[string]any) toolResult {
			if err := g.MergeProjects(ctx, str(a, "source"), str(a, "target")); err != nil {
				return failResult(err)
			}
			return ok("Project", str(a, "target"), "projects merged")
		})

	add("manage_lists", "Create a list or add an entry to one.", objSchema("name", "type", "project", "entry_text"),
		func(ctx context.Context, a map[string]any) toolResult {
			name, err := g.UpsertList(ctx, graph.ListInput{Name: str(a, "name"), Type: str(a, "type"), Project: str(a, "project")})
			if err != nil {
				return failResult(err)
			}
			if text := str(a, "entry_text"); text != "" {
				if _, err := g.AddListEntry(ctx, graph.ListEntryInput{List: name, Text: text}); err != nil {
					return failResult(err)
				}
			}
			return ok("List", name, "list updated")
		})

	add("get_productivity_stats", "Get sprint velocity and focus-session stats.", objSchema("project", "task"),
		func(ctx context.Context, a map[string]any) toolResult {
			velocity, err := g.QuerySprintVelocity(ctx, str(a, "project"))
			if err != nil {
				return failResult(err)
			}
			focus, err := g.QueryFocusStats(ctx, str(a, "task"))
			if err != nil {
				return failResult(err)
			}
			return toolResult{"velocity": velocity, "focus": focus}
		})

	return c
}

// Schemas returns the catalog in stable definition order, for both the
// LLM call and deterministic result merging (spec.md §5).
func (c *Catalog) Schemas() []llmgateway.ToolSchema {
	out := make([]llmgateway.ToolSchema, len(c.tools))
	for i, t := range c.tools {
		out[i] = t.schema
	}
	return out
}

// Dispatch runs one named tool call with raw JSON arguments.
func (c *Catalog) Dispatch(ctx context.Context, name, argumentsJSON string) toolResult {
	idx, found := c.index[name]
	if !found {
		return failResult(fmt.Errorf("unknown tool %q", name))
	}
	var args map[string]any
	if argumentsJSON != "" {
		if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
			return failResult(fmt.Errorf("malformed arguments: %w", err))
		}
	}
	return c.tools[idx].handler(ctx, args)
}

// Order returns a name's position in the catalog, used to sort parallel
// dispatch results back into stable catalog order.
func (c *Catalog) Order(name string) int {
	if idx, ok := c.index[name]; ok {
		return idx
	}
	return len(c.tools)
}

// IsWriteTool reports whether name is in _WRITE_TOOLS.
func IsWriteTool(name string) bool { return writeTools[name] }

func objSchema(fields ...string) map[string]any {
	props := map[string]any{}
	for _, f := range fields {
		props[f] = map[string]any{"type": "string"}
	}
	return map[string]any{"type": "object", "properties": props}
}

func str(a map[string]any, key string) string {
	v, _ := a[key].(string)
	return v
}

func num(a map[string]any, key string) float64 {
	switch v := a[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func truthy(a map[string]any, key string) bool {
	b, _ := a[key].(bool)
	return b
}
