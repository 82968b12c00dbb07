package fileprocessor

import (
	"context"
	"fmt"
	"strings"
)

const classifyPrompt = `Classify this image into exactly one of these categories: ` +
	`invoice, official_document, personal_photo, info_image, note, project_file, price_list, business_card, inventory_item.
Reply with the category label only, nothing else.`

// ClassifyImage runs the lightweight vision classifier over an image and
// returns one of the fixed classes from spec.md §4.3.
func (p *Processor) ClassifyImage(ctx context.Context, imageBytes []byte, mimeType string) (Class, error) {
	reply, err := p.llm.AnalyseImage(ctx, imageBytes, mimeType, classifyPrompt)
	if err != nil {
		return "", fmt.Errorf("classify image: %w", err)
	}

	label := strings.ToLower(strings.TrimSpace(reply))
	for _, c := range imageClasses {
		if strings.Contains(label, c) {
			return Class(c), nil
		}
	}
	return ClassNote, nil
}
