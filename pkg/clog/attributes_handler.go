package clog

import (
	"context"
	"log/slog"
	"maps"
	"slices"
)

// AttributesHandler appends the request scoped attributes collected with
// AddAttribute(s) to every record logged with that context.
type AttributesHandler struct {
	handler slog.Handler
}

func NewAttributesHandler(handler slog.Handler) *AttributesHandler {
	return &AttributesHandler{handler: handler}
}

func (h *AttributesHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *AttributesHandler) Handle(ctx context.Context, record slog.Record) error {
	if attrs := GetAttributes(ctx); len(attrs) > 0 {
		record.AddAttrs(toAttrs(attrs)...)
	}
	return h.handler.Handle(ctx, record)
}

func (h *AttributesHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AttributesHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *AttributesHandler) WithGroup(name string) slog.Handler {
	return &AttributesHandler{handler: h.handler.WithGroup(name)}
}

// toAttrs renders m in key order. Nested maps become groups and errors are
// logged by message.
func toAttrs(m map[string]any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		switch v := m[k].(type) {
		case map[string]any:
			attrs = append(attrs, slog.Attr{Key: k, Value: slog.GroupValue(toAttrs(v)...)})
		case error:
			attrs = append(attrs, slog.String(k, v.Error()))
		default:
			attrs = append(attrs, slog.Any(k, v))
		}
	}
	return attrs
}
