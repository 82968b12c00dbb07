package fileprocessor

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/ledongthuc/pdf"
)

// pdfFallbackThreshold is the character count below which markdown
// extraction is considered to have failed (spec.md §4.3: "If extracted
// text < 200 chars, fall back to vision").
const pdfFallbackThreshold = 200

// ExtractPDFText pulls plain text out of a PDF's pages via ledongthuc/pdf,
// the text-extraction dependency already present across the retrieval
// pack's manifests (e.g. bbiangul-go-reason, kadirpekel-hector).
func ExtractPDFText(pdfBytes []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	r, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	buf, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(buf), nil
}

// ProcessPDF extracts a PDF's text layer. When the text is shorter than
// pdfFallbackThreshold it logs a warning and returns the short text as
// is: no pages are rendered and no vision pass runs, since the only PDF
// dependency (ledongthuc/pdf) reads text and has no rasteriser. DESIGN.md
// records this gap.
func (p *Processor) ProcessPDF(pdfBytes []byte) (*Result, error) {
	text, err := ExtractPDFText(pdfBytes)
	if err != nil {
		return nil, fmt.Errorf("fileprocessor: process pdf: %w", err)
	}
	if len(text) < pdfFallbackThreshold {
		slog.Warn("pdf text layer below fallback threshold, no rasteriser available to retry via vision",
			"extracted_chars", len(text), "threshold", pdfFallbackThreshold)
	}
	return &Result{Class: ClassPDFDocument, Text: text}, nil
}
