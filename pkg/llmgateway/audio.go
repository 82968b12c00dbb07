package llmgateway

import (
	"bytes"
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
)

// Transcribe runs ASR over audioBytes with language fixed to Arabic ("ar"),
// per spec.md §4.3. Serialization against GPU contention (single-flight)
// is the File Processor's responsibility (pkg/fileprocessor/audio.go),
// not the Gateway's — the Gateway is a stateless transport. Grounded on
// Tangerg-lynx's AudioTranscriptionModel.buildApiTranscriptionRequest.
func (c *Client) Transcribe(ctx context.Context, audioBytes []byte, filename string) (string, error) {
	params := openai.AudioTranscriptionNewParams{
		Model:    c.audioModel,
		File:     bytes.NewReader(audioBytes),
		Language: openai.String("ar"),
	}

	resp, err := c.api.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	return resp.Text, nil
}
