// Package logging builds the slog loggers used by the command-line tools.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"
)

// ParseLevel converts a level name to a slog.Level. Unknown names map to
// info.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Options selects where and how log records are written.
type Options struct {
	Level  string
	Format string // "text" (default) or "json"

	// Writers receive every enabled record. Nil writers are skipped; with
	// none left the logger discards everything.
	Writers []io.Writer
}

// New returns a logger for opts. Timestamps are RFC3339 in UTC.
func New(opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler
	for _, w := range opts.Writers {
		if w == nil {
			continue
		}
		if strings.EqualFold(opts.Format, "json") {
			handlers = append(handlers, slog.NewJSONHandler(w, handlerOpts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(w, handlerOpts))
		}
	}

	switch len(handlers) {
	case 0:
		return Discard()
	case 1:
		return slog.New(handlers[0])
	default:
		return slog.New(NewFanout(handlers...))
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

// Fanout sends every record to each of its handlers.
type Fanout struct {
	handlers []slog.Handler
}

// NewFanout returns a handler writing to all non-nil handlers.
func NewFanout(handlers ...slog.Handler) *Fanout {
	valid := make([]slog.Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			valid = append(valid, h)
		}
	}
	return &Fanout{handlers: valid}
}

// Enabled reports whether any handler is enabled for level.
func (f *Fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle passes r to every enabled handler. A failing handler does not stop
// the others; the first error is returned.
func (f *Fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f *Fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &Fanout{handlers: handlers}
}

func (f *Fanout) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	handlers := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &Fanout{handlers: handlers}
}
