package fileprocessor

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DecodeText applies the decode ladder of spec.md §4.3: "decode
// (utf-8 → cp1256 → latin-1 fallback)". cp1256 is the legacy Windows
// Arabic codepage frequently found in older .txt exports.
func DecodeText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}

	if decoded, err := charmap.Windows1256.NewDecoder().Bytes(raw); err == nil {
		return string(decoded)
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

// ProcessText decodes a raw text upload into a ready-to-ingest Result.
func (p *Processor) ProcessText(raw []byte) *Result {
	return &Result{Class: ClassNote, Text: DecodeText(raw)}
}
