package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LLMInteraction records one call through the LLM Gateway: purpose
// (translate/classify/extract/vision/chat/summarise), token counts and
// latency. Grounded on the teacher's LLMInteraction entity.
type LLMInteraction struct {
	ent.Schema
}

func (LLMInteraction) Fields() []ent.Field {
	return []ent.Field{
		field.String("id"),
		field.String("session_id").Optional(),
		field.Enum("purpose").
			Values("translate", "classify", "extract_facts", "vision_analyse", "think", "tool_call", "summarise"),
		field.String("model"),
		field.Int("prompt_tokens").Default(0),
		field.Int("completion_tokens").Default(0),
		field.Int64("latency_ms").Default(0),
		field.Bool("ok").Default(true),
		field.String("error").Optional(),
		field.Time("created_at").Default(time.Now),
	}
}

func (LLMInteraction) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("purpose", "created_at"),
	}
}
