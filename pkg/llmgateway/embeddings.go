package llmgateway

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
)

// Embed returns a 1024-dim embedding vector for each text, matching
// spec.md §2's Vector Store contract "embed(text)→1024-dim". Grounded on
// Tangerg-lynx's EmbeddingModel.buildApiEmbeddingRequest.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	params := openai.EmbeddingNewParams{
		Model: c.embeddingModel,
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	}

	resp, err := c.api.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}

	vectors := make([][]float64, len(resp.Data))
	for _, d := range resp.Data {
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// EmbedOne is a convenience wrapper for the common single-text case (entity
// resolution, per-chunk embedding).
func (c *Client) EmbedOne(ctx context.Context, text string) ([]float64, error) {
	vecs, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("create embedding: empty response")
	}
	return vecs[0], nil
}
