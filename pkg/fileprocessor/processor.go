// Package fileprocessor implements the File Processor (spec.md §4.3):
// classification, per-branch extraction (image/pdf/audio/text/url), and
// the auto-item/auto-expense hooks that feed directly into the Ingestion
// Pipeline. The URL branch is grounded on tarsy's pkg/runbook (GitHub
// repo/blob/tree resolution plus a TTL-cached generic fetch), generalised
// from runbook-document retrieval to arbitrary ingestible URLs.
package fileprocessor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rafiq-ai/rafiq/pkg/graph"
	"github.com/rafiq-ai/rafiq/pkg/llmgateway"
	"github.com/rafiq-ai/rafiq/pkg/runbook"
)

// Class is one of the fixed classification labels spec.md §4.3 enumerates.
type Class string

const (
	ClassInvoice           Class = "invoice"
	ClassOfficialDocument  Class = "official_document"
	ClassPersonalPhoto     Class = "personal_photo"
	ClassInfoImage         Class = "info_image"
	ClassNote              Class = "note"
	ClassProjectFile       Class = "project_file"
	ClassPriceList         Class = "price_list"
	ClassBusinessCard      Class = "business_card"
	ClassInventoryItem     Class = "inventory_item"
	ClassPDFDocument       Class = "pdf_document"
	ClassAudioRecording    Class = "audio_recording"
)

// imageClasses is the candidate set the lightweight vision classifier
// chooses among for image inputs.
var imageClasses = []string{
	string(ClassInvoice), string(ClassOfficialDocument), string(ClassPersonalPhoto),
	string(ClassInfoImage), string(ClassNote), string(ClassProjectFile),
	string(ClassPriceList), string(ClassBusinessCard), string(ClassInventoryItem),
}

// Result is the outcome of processing one uploaded file, ready to be
// handed to the Ingestion Pipeline as ingest_text input.
type Result struct {
	Class        Class
	Text         string // ready for ingest_text
	Barcode      string
	BarcodeType  string
	AutoItem     string   // canonical Item name, when an inventory-class image auto-created one
	SimilarItems []string // warnings from the auto-item similarity search
	AutoExpense  string   // canonical Expense id, when an invoice auto-created one
}

// Processor wires the LLM Gateway's vision/ASR calls, the Graph Service's
// auto-item/auto-expense hooks, and the runbook fetcher together.
type Processor struct {
	llm      *llmgateway.Client
	graph    *graph.Service
	runbooks *runbook.Service
}

// New builds a Processor.
func New(llm *llmgateway.Client, graphSvc *graph.Service, runbooks *runbook.Service) *Processor {
	return &Processor{llm: llm, graph: graphSvc, runbooks: runbooks}
}

// ProcessImage runs the image branch: classify, vision-extract, render to
// text, scan for a barcode, and apply the auto-item/auto-expense hooks.
func (p *Processor) ProcessImage(ctx context.Context, imageBytes []byte, mimeType string) (*Result, error) {
	class, err := p.ClassifyImage(ctx, imageBytes, mimeType)
	if err != nil {
		return nil, fmt.Errorf("fileprocessor: classify image: %w", err)
	}

	fields, err := p.AnalyseImage(ctx, imageBytes, mimeType, class)
	if err != nil {
		return nil, fmt.Errorf("fileprocessor: analyse image: %w", err)
	}
	text := AnalysisToText(class, fields)

	result := &Result{Class: class, Text: text}

	if code, format, ok := ScanBarcode(imageBytes); ok {
		result.Barcode = code
		result.BarcodeType = format
	}

	switch class {
	case ClassInventoryItem:
		if err := p.applyAutoItem(ctx, result, fields); err != nil {
			return nil, err
		}
	case ClassInvoice:
		if err := p.applyAutoExpense(ctx, result, fields); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (p *Processor) applyAutoItem(ctx context.Context, result *Result, fields map[string]any) error {
	name, _ := fields["name"].(string)
	if name == "" {
		return nil
	}
	canonical, err := p.graph.UpsertItem(ctx, graph.ItemInput{
		Name:      name,
		Quantity:  asInt(fields["quantity"]),
		Location:  asString(fields["location"]),
		Category:  asString(fields["category"]),
		Brand:     asString(fields["brand"]),
		Condition: asString(fields["condition"]),
	})
	if err != nil {
		return fmt.Errorf("fileprocessor: auto-item upsert: %w", err)
	}
	result.AutoItem = canonical

	if err := p.graph.IndexItemName(ctx, canonical); err != nil {
		return fmt.Errorf("fileprocessor: auto-item index: %w", err)
	}

	similar, err := p.graph.SimilarInventory(ctx, canonical)
	if err != nil {
		return fmt.Errorf("fileprocessor: auto-item similarity: %w", err)
	}
	for _, it := range similar {
		if it.Name != canonical {
			result.SimilarItems = append(result.SimilarItems, it.Name)
		}
	}
	return nil
}

func (p *Processor) applyAutoExpense(ctx context.Context, result *Result, fields map[string]any) error {
	total := asFloat(fields["total"])
	if total <= 0 {
		return nil
	}
	id, err := p.graph.UpsertExpense(ctx, graph.ExpenseInput{
		Amount:   total,
		Currency: asString(fields["currency"]),
		Category: classifyExpenseCategory(asString(fields["vendor"])),
		Vendor:   asString(fields["vendor"]),
		Date:     asString(fields["date"]),
	})
	if err != nil {
		return fmt.Errorf("fileprocessor: auto-expense upsert: %w", err)
	}
	result.AutoExpense = id
	return nil
}

// classifyExpenseCategory applies the same fixed-keyword heuristic style
// used by the Knowledge Service's category classifier (spec.md Open
// Question #2), scoped to common invoice vendor categories.
func classifyExpenseCategory(vendor string) string {
	lower := strings.ToLower(vendor)
	switch {
	case strings.Contains(lower, "market") || strings.Contains(lower, "super"):
		return "groceries"
	case strings.Contains(lower, "restaurant") || strings.Contains(lower, "cafe"):
		return "dining"
	case strings.Contains(lower, "pharmacy") || strings.Contains(lower, "clinic"):
		return "health"
	default:
		return "general"
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func asInt(v any) int {
	return int(asFloat(v))
}
