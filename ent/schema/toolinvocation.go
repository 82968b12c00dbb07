package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ToolInvocation records a single tool call dispatched by the Tool-Calling
// Orchestrator during a chat turn: name, arguments, result, timing and
// success/failure. Grounded on the teacher's MCPInteraction entity
// (pkg/services, ent/schema), generalized from MCP-server tool calls to
// this system's in-process tool catalog (spec.md §4.1/§9).
type ToolInvocation struct {
	ent.Schema
}

func (ToolInvocation) Fields() []ent.Field {
	return []ent.Field{
		field.String("id"),
		field.String("session_id").NotEmpty(),
		field.String("tool_name").NotEmpty(),
		field.Text("arguments_json").Optional(),
		field.Text("result_json").Optional(),
		field.Bool("ok").Default(true),
		field.String("error").Optional(),
		field.Int64("duration_ms").Default(0),
		field.Time("created_at").Default(time.Now),
		field.String("chat_turn_id").Optional(),
	}
}

func (ToolInvocation) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("chat_turn", ChatTurn.Type).
			Ref("tool_invocations").
			Field("chat_turn_id").
			Unique(),
	}
}

func (ToolInvocation) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id", "created_at"),
		index.Fields("tool_name"),
	}
}
