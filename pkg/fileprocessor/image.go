package fileprocessor

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// visionPrompts holds a per-class extraction prompt instructing the model
// to return a flat JSON object of string fields. name/name_ar and any
// reference numbers must be preserved verbatim (spec.md §4.3).
var visionPrompts = map[Class]string{
	ClassInvoice: `This is an invoice. Extract as JSON: {"vendor": string, "total": number, "currency": string, "date": "YYYY-MM-DD", "items": string}.`,
	ClassOfficialDocument: `This is an official document. Extract as JSON: {"name": string, "name_ar": string, "document_type": string, "reference_numbers": string, "issue_date": "YYYY-MM-DD"}. Preserve reference numbers exactly.`,
	ClassPersonalPhoto: `This is a personal photo. Extract as JSON: {"description": string, "people": string, "location": string}.`,
	ClassInfoImage: `This image contains information (a sign, screenshot, flyer). Extract as JSON: {"title": string, "content": string}.`,
	ClassNote: `This is a handwritten or typed note. Extract as JSON: {"title": string, "content": string}.`,
	ClassProjectFile: `This is a project-related file. Extract as JSON: {"title": string, "content": string, "project": string}.`,
	ClassPriceList: `This is a price list. Extract as JSON: {"title": string, "content": string}.`,
	ClassBusinessCard: `This is a business card. Extract as JSON: {"name": string, "name_ar": string, "company": string, "phone": string, "email": string}.`,
	ClassInventoryItem: `This shows a physical item for an inventory catalog. Extract as JSON: {"name": string, "quantity": number, "location": string, "category": string, "brand": string, "condition": string}.`,
}

// AnalyseImage calls the type-specific vision prompt and parses the JSON
// reply into a flat field map.
func (p *Processor) AnalyseImage(ctx context.Context, imageBytes []byte, mimeType string, class Class) (map[string]any, error) {
	prompt, ok := visionPrompts[class]
	if !ok {
		prompt = visionPrompts[ClassNote]
	}
	reply, err := p.llm.AnalyseImage(ctx, imageBytes, mimeType, prompt+"\nReturn only the JSON object, no commentary.")
	if err != nil {
		return nil, fmt.Errorf("analyse image: %w", err)
	}

	text := strings.TrimSpace(reply)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("analyse image: malformed vision reply: %w", err)
	}
	return fields, nil
}

// AnalysisToText renders a class's extracted fields into an Arabic+English
// readable block for ingestion, preserving name_ar and reference numbers
// verbatim (spec.md §4.3 "_analysis_to_text()").
func AnalysisToText(class Class, fields map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n", class)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := fields[k]
		if v == nil || v == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %v\n", k, v)
	}
	return strings.TrimSpace(b.String())
}
