package llmgateway

import (
	"encoding/json"

	"github.com/openai/openai-go/v3"
)

// ToolSchema is the JSON-schema tool description the orchestrator passes to
// the LLM Gateway: {name, description, parameters} per spec.md §4.1.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON-schema "parameters" object
}

// ToolCall is a single tool invocation the model asked for.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON arguments, as returned by the model
}

// buildToolParams converts the orchestrator's tool catalog into the
// provider's tool-param shape, mirroring
// Tangerg-lynx's requestHelper.buildToolParams.
func buildToolParams(tools []ToolSchema) []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.ChatCompletionToolUnionParam{
			OfFunction: &openai.ChatCompletionFunctionToolParam{
				Function: openai.FunctionDefinitionParam{
					Name:        t.Name,
					Description: openai.String(t.Description),
					Parameters:  t.Parameters,
				},
			},
		})
	}
	return out
}

// ParametersFromJSON decodes a JSON-schema "parameters" object from a raw
// JSON string, for tool definitions authored as string literals.
func ParametersFromJSON(raw string) (map[string]any, error) {
	var params map[string]any
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, err
	}
	return params, nil
}
