// Package llmgateway is the single pooled async client to the generative
// model (spec.md §2 "LLM Gateway"): translate, classify, extract-facts,
// vision-analyse, think/reflect, tool-calling chat (one-shot + streaming),
// summarise. Grounded on Tangerg-lynx's openai-go/v3 extension
// (ai/extensions/models/openai/{api.go,chat_model.go,embedding.go,
// audio_transcription.go}), generalized from a chat-model abstraction
// layer into this system's narrower, purpose-built call surface.
package llmgateway

import (
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/rafiq-ai/rafiq/pkg/config"
)

// Client is the process-wide pooled LLM client (spec.md §9 "Global
// singletons"). It is safe for concurrent use — the underlying
// openai.Client is itself a thin, stateless HTTP wrapper.
type Client struct {
	api               *openai.Client
	chatModel         string
	embeddingModel    string
	visionModel       string
	audioModel        string
	temperature       float64
	requestTimeout    time.Duration
	maxToolIterations int
}

// New builds a Client from resolved LLM configuration.
func New(cfg config.LLMConfig) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	api := openai.NewClient(opts...)

	return &Client{
		api:               &api,
		chatModel:         cfg.ChatModel,
		embeddingModel:    cfg.EmbeddingModel,
		visionModel:       cfg.VisionModel,
		audioModel:        cfg.AudioModel,
		temperature:       cfg.Temperature,
		requestTimeout:    cfg.RequestTimeout,
		maxToolIterations: cfg.MaxToolIterations,
	}
}

// MaxToolIterations is the tool-calling loop's iteration cap (spec.md §4.1:
// "Cap at 3 iterations").
func (c *Client) MaxToolIterations() int { return c.maxToolIterations }

// RequestTimeout is the per-LLM-call deadline (spec.md §5: "60s default").
func (c *Client) RequestTimeout() time.Duration { return c.requestTimeout }
