package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
)

// ParseLogLevel maps the configured level name to a slog level. Unknown names select info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetLoggingHandler returns a handler writing to output, or to stderr if output is nil.
// json takes precedence over pretty.
func GetLoggingHandler(level string, pretty, json bool, output io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLogLevel(level)}

	if output == nil {
		output = os.Stderr
	}

	switch {
	case json:
		return slog.NewJSONHandler(output, opts)
	case pretty:
		return NewPrettyHandler(output, opts.Level)
	default:
		return slog.NewTextHandler(output, opts)
	}
}

// SetupLogging initializes the global logger with the given level and format
func SetupLogging(level string, pretty, json bool, output io.Writer) {
	slog.SetDefault(slog.New(GetLoggingHandler(level, pretty, json, output)))
}

// OpenLogFile opens (or creates) the given file for appending log records.
// An empty name or "-" discards all records.
func OpenLogFile(name string) (io.WriteCloser, error) {
	if name == "" || name == "-" {
		return nopWriteCloser{io.Discard}, nil
	}

	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", name, err)
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

const prettyTimeFormat = "2006-01-02 15:04:05.000"

// PrettyHandler writes one line per record, suitable for tailing the console log file:
//
//	2024-05-01 12:00:00.000 [WARN ] gateway request failed path=/api/users error="connection reset"
//
// Values containing spaces, quotes or control characters are quoted.
type PrettyHandler struct {
	level  slog.Leveler
	prefix string // group names, each followed by a dot
	attrs  []byte // preformatted attributes of WithAttrs, with leading spaces

	mu *sync.Mutex // shared with all derived handlers
	w  io.Writer
}

func NewPrettyHandler(w io.Writer, level slog.Leveler) *PrettyHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &PrettyHandler{level: level, mu: &sync.Mutex{}, w: w}
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]byte(nil), h.attrs...)
	for _, a := range attrs {
		clone.attrs = appendPrettyAttr(clone.attrs, h.prefix, a)
	}
	return &clone
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 128)
	if !r.Time.IsZero() {
		buf = r.Time.AppendFormat(buf, prettyTimeFormat)
		buf = append(buf, ' ')
	}
	buf = fmt.Appendf(buf, "[%-5s] ", r.Level.String())
	buf = append(buf, r.Message...)
	buf = append(buf, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		buf = appendPrettyAttr(buf, h.prefix, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func appendPrettyAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			buf = appendPrettyAttr(buf, prefix, ga)
		}
		return buf
	}

	buf = append(buf, ' ')
	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	buf = append(buf, '=')
	return appendPrettyValue(buf, a.Value)
}

func appendPrettyValue(buf []byte, v slog.Value) []byte {
	var s string
	switch v.Kind() {
	case slog.KindString:
		s = v.String()
	case slog.KindDuration:
		return append(buf, v.Duration().String()...)
	case slog.KindTime:
		return v.Time().AppendFormat(buf, time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		return append(buf, v.String()...)
	}

	if needsQuoting(s) {
		return strconv.AppendQuote(buf, s)
	}
	return append(buf, s...)
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if unicode.IsSpace(r) || r == '"' || r == '=' || !unicode.IsPrint(r) {
			return true
		}
	}
	return false
}
