package instrument

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
)

const maskedValue = "***"

type maskKeys map[string]struct{}

func newMaskKeys(fields []string) maskKeys {
	keys := make(maskKeys, len(fields))
	for _, f := range fields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			keys[f] = struct{}{}
		}
	}
	return keys
}

func (k maskKeys) has(key string) bool {
	_, ok := k[strings.ToLower(key)]
	return ok
}

// Mask replaces the values of sensitive keys in v, recursing into maps and
// slices. JSON documents held in strings or byte slices are decoded and
// masked too. The returned value is a copy.
func (k maskKeys) Mask(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for key, item := range val {
			if k.has(key) {
				out[key] = maskedValue
				continue
			}
			out[key] = k.Mask(item)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(val))
		for key, item := range val {
			out[key] = item
		}
		return k.Mask(out)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = k.Mask(item)
		}
		return out
	case string:
		if masked, ok := k.maskJSON([]byte(val)); ok {
			return masked
		}
		return val
	case []byte:
		if masked, ok := k.maskJSON(val); ok {
			return masked
		}
		return val
	default:
		return v
	}
}

func (k maskKeys) maskJSON(raw []byte) (string, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return "", false
	}

	var doc any
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return "", false
	}

	out, err := json.Marshal(k.Mask(doc))
	if err != nil {
		return "", false
	}
	return string(out), true
}

func (k maskKeys) attr(a slog.Attr) slog.Attr {
	if k.has(a.Key) {
		return slog.String(a.Key, maskedValue)
	}

	switch a.Value.Kind() {
	case slog.KindGroup:
		group := a.Value.Group()
		masked := make([]slog.Attr, len(group))
		for i, ga := range group {
			masked[i] = k.attr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(masked...)}
	case slog.KindString, slog.KindAny:
		if a.Value.Any() == nil {
			return a
		}
		return slog.Any(a.Key, k.Mask(a.Value.Any()))
	default:
		return a
	}
}

type maskHandler struct {
	slog.Handler
	keys maskKeys
}

func (h *maskHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(h.keys.attr(a))
		return true
	})
	return h.Handler.Handle(ctx, masked)
}

func (h *maskHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.keys.attr(a)
	}
	return &maskHandler{Handler: h.Handler.WithAttrs(masked), keys: h.keys}
}

func (h *maskHandler) WithGroup(name string) slog.Handler {
	return &maskHandler{Handler: h.Handler.WithGroup(name), keys: h.keys}
}

// NewMasker returns a function masking the given keys in arbitrary values,
// for payloads logged outside slog attributes.
func NewMasker(fields []string) func(any) any {
	return newMaskKeys(fields).Mask
}
