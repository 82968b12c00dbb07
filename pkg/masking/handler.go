package masking

import (
	"context"
	"log/slog"
)

// Handler wraps an slog.Handler, redacting the log message and every
// string-valued attribute through Service.Mask before handing the record
// to next. Installed once at startup (cmd/rafiq/main.go) so every
// logger used by the orchestrator and ingestion pipeline is covered.
type Handler struct {
	next    slog.Handler
	masking *Service
}

// NewHandler wraps next with svc's redaction rules.
func NewHandler(next slog.Handler, svc *Service) *Handler {
	return &Handler{next: next, masking: svc}
}

// Enabled delegates to the wrapped handler.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle redacts the record's message and string attributes, then
// delegates to the wrapped handler.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	masked := slog.NewRecord(record.Time, record.Level, h.masking.Mask(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(h.maskAttr(a))
		return true
	})
	return h.next.Handle(ctx, masked)
}

func (h *Handler) maskAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, h.masking.Mask(a.Value.String()))
	}
	return a
}

// WithAttrs wraps the handler returned by the wrapped handler's own
// WithAttrs, preserving masking for attrs attached via slog.With.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.maskAttr(a)
	}
	return &Handler{next: h.next.WithAttrs(masked), masking: h.masking}
}

// WithGroup delegates to the wrapped handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{next: h.next.WithGroup(name), masking: h.masking}
}
