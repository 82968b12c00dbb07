package llmgateway

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/openai/openai-go/v3"
)

// AnalyseImage sends imageBytes plus a classification/extraction prompt to
// the vision-capable model and returns its raw text reply (the File
// Processor's classify/extract callers are responsible for further JSON
// parsing, per spec.md §4.3). Grounded on Tangerg-lynx's
// requestHelper.buildUserMsg image-part construction
// (ChatCompletionContentPartImageParam with a data: URL).
func (c *Client) AnalyseImage(ctx context.Context, imageBytes []byte, mimeType, prompt string) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imageBytes))

	params := openai.ChatCompletionNewParams{
		Model:       c.visionModel,
		Temperature: openai.Float(c.temperature),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				{OfText: &openai.ChatCompletionContentPartTextParam{Text: prompt}},
				{OfImageURL: &openai.ChatCompletionContentPartImageParam{
					ImageURL: openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL},
				}},
			}),
		},
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("vision analyse: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision analyse: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
