package console

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
)

// Compile-time assertion to ensure Handler implements the slog.Handler interface.
var _ slog.Handler = (*Handler)(nil)

// Handler is a slog.Handler that writes records to the browser console,
// picking console.debug/log/warn/error by level. Each record becomes a single
// line: the message followed by key=value pairs.
// This file has NO build tags; in non-WASM builds the console functions are no-ops.
type Handler struct {
	level  slog.Leveler
	prefix string // group prefix for keys, e.g. "req."
	attrs  string // preformatted attributes from WithAttrs
	sink   func(level slog.Level, line string)
}

// NewHandler creates a console handler. opts may be nil; only Level is used.
func NewHandler(opts *slog.HandlerOptions) *Handler {
	return newHandler(opts, writeConsole)
}

func newHandler(opts *slog.HandlerOptions, sink func(slog.Level, string)) *Handler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &Handler{level: level, sink: sink}
}

func writeConsole(level slog.Level, line string) {
	switch {
	case level >= slog.LevelError:
		Error(line)
	case level >= slog.LevelWarn:
		Warn(line)
	case level >= slog.LevelInfo:
		Log(line)
	default:
		Debug(line)
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Message)
	sb.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&sb, h.prefix, a)
		return true
	})
	h.sink(r.Level, sb.String())
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var sb strings.Builder
	sb.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&sb, h.prefix, a)
	}
	h2 := *h
	h2.attrs = sb.String()
	return &h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.prefix = h.prefix + name + "."
	return &h2
}

func appendAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if a.Key != "" {
			prefix = prefix + a.Key + "."
		}
		for _, ga := range group {
			appendAttr(sb, prefix, ga)
		}
		return
	}
	sb.WriteByte(' ')
	sb.WriteString(prefix)
	sb.WriteString(a.Key)
	sb.WriteByte('=')
	sb.WriteString(quoteIfNeeded(a.Value.String()))
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if unicode.IsSpace(r) || r == '"' || r == '=' || !unicode.IsPrint(r) {
			return strconv.Quote(s)
		}
	}
	return s
}
