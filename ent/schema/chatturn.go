package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ChatTurn is a durable audit record of one {user, assistant} turn in a
// chat session's working memory. The authoritative working-memory copy
// lives in the Memory Store (§4.8); this is the bookkeeping trail used for
// the chat summary endpoint and for debugging, grounded on the teacher's
// Message entity shape.
type ChatTurn struct {
	ent.Schema
}

func (ChatTurn) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Comment("uuid"),
		field.String("session_id").
			NotEmpty(),
		field.Enum("role").
			Values("user", "assistant"),
		field.Text("content"),
		field.String("route").
			Optional().
			Comment("smart router label, assistant turns only"),
		field.Time("created_at").
			Default(time.Now),
	}
}

func (ChatTurn) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("tool_invocations", ToolInvocation.Type),
	}
}

func (ChatTurn) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id", "created_at"),
	}
}
