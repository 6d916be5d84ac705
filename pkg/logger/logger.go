// Package logger provides a colored slog handler for terminal output.
//
// Errors are printed in red and warnings in yellow. Info messages reporting
// completed batches or persisted statistics are printed in green so progress
// is easy to spot in long runs.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// highlighted lists message prefixes printed in green at info level.
var highlighted = []string{
	"batch finished",
	"registered client",
	"persisting",
	"persisted",
	"server listening",
}

// ColorHandler is a slog.Handler writing one colored line per record.
type ColorHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	groups []string

	red    *color.Color
	yellow *color.Color
	green  *color.Color
	faint  *color.Color
	plain  *color.Color
}

// NewColorHandler creates a ColorHandler writing to w. A nil opts logs at
// info level.
func NewColorHandler(w io.Writer, opts *slog.HandlerOptions) *ColorHandler {
	h := &ColorHandler{
		mu:     &sync.Mutex{},
		w:      w,
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		green:  color.New(color.FgGreen),
		faint:  color.New(color.Faint),
		plain:  color.New(color.Reset),
	}
	if opts != nil {
		h.opts = *opts
	}
	if h.opts.Level == nil {
		h.opts.Level = slog.LevelInfo
	}
	return h
}

// WithoutColor disables colors even when the writer is a terminal.
func (h *ColorHandler) WithoutColor() *ColorHandler {
	for _, c := range []*color.Color{h.red, h.yellow, h.green, h.faint, h.plain} {
		c.DisableColor()
	}
	return h
}

// NewLogger creates a logger writing colored output to w.
func NewLogger(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	return slog.New(NewColorHandler(w, opts))
}

// NewDefaultLogger creates a colored logger on stderr at the given level.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return NewLogger(os.Stderr, &slog.HandlerOptions{Level: level})
}

// ParseLevel maps a configured level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Enabled implements slog.Handler
func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// Handle implements slog.Handler
func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(h.faint.Sprint(r.Time.Format(time.TimeOnly)))
	sb.WriteByte(' ')
	sb.WriteString(h.levelColor(r).Sprintf("%-5s", r.Level.String()))
	sb.WriteByte(' ')
	sb.WriteString(h.messageColor(r).Sprint(r.Message))

	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	for _, a := range h.attrs {
		writeAttr(&sb, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, prefix, a)
		return true
	})

	if h.opts.AddSource && r.PC != 0 {
		src := r.Source()
		sb.WriteString(h.faint.Sprintf(" (%s:%d)", src.File, src.Line))
	}
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, sb.String())
	return err
}

// WithAttrs implements slog.Handler
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	clone.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, slog.Attr{Key: prefix + a.Key, Value: a.Value})
	}
	return &clone
}

// WithGroup implements slog.Handler
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func (h *ColorHandler) levelColor(r slog.Record) *color.Color {
	switch {
	case r.Level >= slog.LevelError:
		return h.red
	case r.Level >= slog.LevelWarn:
		return h.yellow
	default:
		return h.faint
	}
}

func (h *ColorHandler) messageColor(r slog.Record) *color.Color {
	switch {
	case r.Level >= slog.LevelError:
		return h.red
	case r.Level >= slog.LevelWarn:
		return h.yellow
	case r.Level == slog.LevelInfo && isHighlighted(r.Message):
		return h.green
	default:
		return h.plain
	}
}

func isHighlighted(msg string) bool {
	lower := strings.ToLower(msg)
	for _, p := range highlighted {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(sb, prefix+a.Key+".", ga)
		}
		return
	}

	val := a.Value.String()
	if strings.ContainsAny(val, " \t\n\"=") {
		val = fmt.Sprintf("%q", val)
	}
	sb.WriteByte(' ')
	sb.WriteString(prefix)
	sb.WriteString(a.Key)
	sb.WriteByte('=')
	sb.WriteString(val)
}
