package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// TidyHandler wraps another slog.Handler and shortens absolute paths
// under the user's home directory to the ~/ form in all string
// attribute values before delegating.
//
// Design decision: We rewrite attributes in a wrapping handler rather
// than at each call site. Path values reach the logger from many
// places (checker runs, plugin discovery, the whitelist store) and a
// single choke point keeps them uniform without every caller knowing
// about it.
type TidyHandler struct {
	handler slog.Handler
	home    string
}

// NewTidyHandler returns a TidyHandler wrapping the given handler.
// If handler is nil, the default slog handler is used.
func NewTidyHandler(handler slog.Handler) *TidyHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return &TidyHandler{handler: handler, home: home}
}

// Enabled reports whether the wrapped handler handles records at the
// given level.
func (h *TidyHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record's attributes and passes it on.
func (h *TidyHandler) Handle(ctx context.Context, r slog.Record) error {
	tidied := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(attr slog.Attr) bool {
		tidied.AddAttrs(h.tidyAttr(attr))
		return true
	})
	return h.handler.Handle(ctx, tidied)
}

// WithAttrs returns a new TidyHandler whose wrapped handler carries
// the rewritten attributes.
func (h *TidyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	tidied := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		tidied = append(tidied, h.tidyAttr(attr))
	}
	return &TidyHandler{handler: h.handler.WithAttrs(tidied), home: h.home}
}

// WithGroup returns a new TidyHandler with the given group name.
func (h *TidyHandler) WithGroup(name string) slog.Handler {
	return &TidyHandler{handler: h.handler.WithGroup(name), home: h.home}
}

// tidyAttr shortens home-directory prefixes in string values and
// recurses into groups.
func (h *TidyHandler) tidyAttr(attr slog.Attr) slog.Attr {
	switch attr.Value.Kind() {
	case slog.KindString:
		attr.Value = slog.StringValue(h.tidyPath(attr.Value.String()))
	case slog.KindGroup:
		group := attr.Value.Group()
		tidied := make([]slog.Attr, 0, len(group))
		for _, member := range group {
			tidied = append(tidied, h.tidyAttr(member))
		}
		attr.Value = slog.GroupValue(tidied...)
	}
	return attr
}

// tidyPath replaces a leading home-directory prefix with "~".
func (h *TidyHandler) tidyPath(s string) string {
	if h.home == "" || h.home == "/" {
		return s
	}
	if s == h.home {
		return "~"
	}
	if rest, ok := strings.CutPrefix(s, h.home+"/"); ok {
		return "~/" + rest
	}
	return s
}

// NewLogger returns a logger writing human-readable records to w.
// The level is warn by default and debug when verbose is true.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewTidyHandler(handler))
}

// NewJSONLogger is like NewLogger but emits JSON records, for use when
// output is collected by another tool.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewTidyHandler(handler))
}
