package logging

import (
	"context"
	"log/slog"
	"slices"

	"github.com/mdclab/mdc-service/internal/platform/mdc"
)

// MDCHandler decorates another slog.Handler so that every emitted record
// carries the diagnostic context of the context it was logged under.
// The store is read at emission time, not at logger construction time,
// so scoped mutations and later Puts are always reflected.
type MDCHandler struct {
	next slog.Handler
}

// NewMDCHandler wraps next with diagnostic context enrichment.
func NewMDCHandler(next slog.Handler) *MDCHandler {
	return &MDCHandler{next: next}
}

// Enabled defers to the wrapped handler.
func (h *MDCHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle attaches the current diagnostic context keys as attributes.
// Keys are added in sorted order so output is deterministic.
func (h *MDCHandler) Handle(ctx context.Context, r slog.Record) error { //nolint:gocritic // slog.Handler interface requires value
	snap := mdc.Capture(ctx)
	if !snap.Absent() {
		keys := make([]string, 0, len(snap))
		for k := range snap {
			keys = append(keys, k)
		}

		slices.Sort(keys)

		for _, k := range keys {
			r.AddAttrs(slog.String(k, snap[k]))
		}
	}

	return h.next.Handle(ctx, r)
}

// WithAttrs returns a new MDCHandler wrapping the enriched inner handler.
func (h *MDCHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewMDCHandler(h.next.WithAttrs(attrs))
}

// WithGroup returns a new MDCHandler wrapping the grouped inner handler.
func (h *MDCHandler) WithGroup(name string) slog.Handler {
	return NewMDCHandler(h.next.WithGroup(name))
}
