// Package internal provides the record encoder backing logx.
package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// Options configures the handler.
type Options struct {
	Format           string     // "logfmt" or "json"
	Level            slog.Level // Minimum level to emit
	SensitiveFields  []string   // Field names masked in output
	DisableTimestamp bool       // Omit the time field
}

// Handler encodes records to the writer with fields sorted by key.
type Handler struct {
	opts   Options
	mu     sync.Mutex
	writer io.Writer
}

// NewHandler creates a handler writing to w.
func NewHandler(opts Options, w io.Writer) *Handler {
	return &Handler{opts: opts, writer: w}
}

// LogRecord encodes and writes a single record.
func (h *Handler) LogRecord(level slog.Level, msg string, attrs []slog.Attr) {
	if level < h.opts.Level {
		return
	}

	sorted := make([]slog.Attr, len(attrs))
	copy(sorted, attrs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	var line []byte
	if h.opts.Format == "json" {
		line = h.encodeJSON(level, msg, sorted)
	} else {
		line = h.encodeLogfmt(level, msg, sorted)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.writer.Write(line)
}

func (h *Handler) encodeLogfmt(level slog.Level, msg string, attrs []slog.Attr) []byte {
	var buf strings.Builder

	if !h.opts.DisableTimestamp {
		buf.WriteString("time=")
		buf.WriteString(time.Now().Format(time.RFC3339))
		buf.WriteString(" ")
	}

	buf.WriteString("level=")
	buf.WriteString(LevelString(level))
	buf.WriteString(" msg=")
	buf.WriteString(fmt.Sprintf("%q", msg))

	for _, attr := range attrs {
		buf.WriteString(" ")
		buf.WriteString(attr.Key)
		buf.WriteString("=")
		buf.WriteString(h.formatValue(attr.Key, attr.Value))
	}

	buf.WriteString("\n")
	return []byte(buf.String())
}

func (h *Handler) encodeJSON(level slog.Level, msg string, attrs []slog.Attr) []byte {
	record := make(map[string]any, len(attrs)+3)
	if !h.opts.DisableTimestamp {
		record["time"] = time.Now().Format(time.RFC3339)
	}
	record["level"] = LevelString(level)
	record["msg"] = msg
	for _, attr := range attrs {
		if h.isSensitive(attr.Key) {
			record[attr.Key] = "***"
			continue
		}
		record[attr.Key] = attr.Value.Resolve().Any()
	}

	line, err := json.Marshal(record)
	if err != nil {
		// Records with unmarshalable values degrade to their string form.
		line, _ = json.Marshal(map[string]any{
			"level": LevelString(level),
			"msg":   msg,
		})
	}
	return append(line, '\n')
}

func (h *Handler) isSensitive(key string) bool {
	for _, field := range h.opts.SensitiveFields {
		if strings.EqualFold(key, field) {
			return true
		}
	}
	return false
}

func (h *Handler) formatValue(key string, v slog.Value) string {
	if h.isSensitive(key) {
		return `"***"`
	}

	switch v.Kind() {
	case slog.KindString:
		return fmt.Sprintf("%q", v.String())
	case slog.KindInt64:
		return fmt.Sprintf("%d", v.Int64())
	case slog.KindUint64:
		return fmt.Sprintf("%d", v.Uint64())
	case slog.KindFloat64:
		f := v.Float64()
		if f == float64(int64(f)) {
			return fmt.Sprintf("%.0f", f)
		}
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", f), "0"), ".")
	case slog.KindBool:
		return fmt.Sprintf("%t", v.Bool())
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return fmt.Sprintf("%q", v.Time().Format(time.RFC3339))
	default:
		return fmt.Sprintf("%q", v.String())
	}
}

// KVToAttrs converts variadic key-value input to slog attributes.
// Pairs built by the core/log helpers arrive as two-element []any values;
// raw alternating key, value sequences are accepted as well.
func KVToAttrs(kv []any) []slog.Attr {
	flat := make([]any, 0, len(kv))
	for _, item := range kv {
		if pair, ok := item.([]any); ok && len(pair) == 2 {
			flat = append(flat, pair[0], pair[1])
			continue
		}
		flat = append(flat, item)
	}

	attrs := make([]slog.Attr, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		attrs = append(attrs, slog.Any(fmt.Sprintf("%v", flat[i]), flat[i+1]))
	}
	return attrs
}

// LevelString renders a slog level in upper-case form.
func LevelString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", level)
	}
}
