package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor extracts a slog attribute from context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// Redacted replaces the value of attributes whose key is redacted.
const Redacted = "[REDACTED]"

// LogHandlerDecorator adds context attributes to each record and masks
// attributes with redacted keys before delegating to next.
type LogHandlerDecorator struct {
	next       slog.Handler
	extractors []ContextExtractor
	redact     map[string]struct{}
}

// NewLogHandlerDecorator wraps next. Nil extractors are skipped.
func NewLogHandlerDecorator(next slog.Handler, redactKeys []string, extractors ...ContextExtractor) slog.Handler {
	h := &LogHandlerDecorator{next: next}
	for _, ex := range extractors {
		if ex != nil {
			h.extractors = append(h.extractors, ex)
		}
	}
	if len(redactKeys) > 0 {
		h.redact = make(map[string]struct{}, len(redactKeys))
		for _, k := range redactKeys {
			h.redact[k] = struct{}{}
		}
	}
	return h
}

func (h *LogHandlerDecorator) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *LogHandlerDecorator) Handle(ctx context.Context, rec slog.Record) error {
	if len(h.extractors) == 0 && len(h.redact) == 0 {
		return h.next.Handle(ctx, rec)
	}

	out := slog.NewRecord(rec.Time, rec.Level, rec.Message, rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.mask(a))
		return true
	})
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			out.AddAttrs(h.mask(attr))
		}
	}
	return h.next.Handle(ctx, out)
}

func (h *LogHandlerDecorator) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.mask(a)
	}
	return &LogHandlerDecorator{
		next:       h.next.WithAttrs(masked),
		extractors: h.extractors,
		redact:     h.redact,
	}
}

func (h *LogHandlerDecorator) WithGroup(name string) slog.Handler {
	return &LogHandlerDecorator{
		next:       h.next.WithGroup(name),
		extractors: h.extractors,
		redact:     h.redact,
	}
}

func (h *LogHandlerDecorator) mask(a slog.Attr) slog.Attr {
	if len(h.redact) == 0 {
		return a
	}
	if _, ok := h.redact[a.Key]; ok {
		return slog.String(a.Key, Redacted)
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		masked := make([]slog.Attr, len(group))
		for i, g := range group {
			masked[i] = h.mask(g)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(masked...)}
	}
	return a
}
