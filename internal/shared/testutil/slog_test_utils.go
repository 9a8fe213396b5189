package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord is one captured log call with its attributes flattened
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// BufferedSlogHandler keeps every record in memory. Handlers derived with
// With or WithGroup append to the same buffer; group names prefix keys.
type BufferedSlogHandler struct {
	mu      *sync.Mutex
	records *[]LogRecord
	attrs   []slog.Attr
	prefix  string
	t       *testing.T
}

// NewTestLogger returns a logger and the handler capturing its output.
// Records are echoed through t.Logf so failing tests show them.
func NewTestLogger(t *testing.T) (*slog.Logger, *BufferedSlogHandler) {
	h := &BufferedSlogHandler{mu: &sync.Mutex{}, records: &[]LogRecord{}, t: t}
	return slog.New(h), h
}

func (h *BufferedSlogHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *BufferedSlogHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[h.prefix+a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	*h.records = append(*h.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	h.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

func (h *BufferedSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return &next
}

func (h *BufferedSlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// Records returns a copy of the captured records, optionally only those
// at the given levels.
func (h *BufferedSlogHandler) Records(levels ...slog.Level) []LogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []LogRecord
	for _, r := range *h.records {
		if len(levels) == 0 || containsLevel(levels, r.Level) {
			out = append(out, r)
		}
	}
	return out
}

// Reset drops everything captured so far
func (h *BufferedSlogHandler) Reset() {
	h.mu.Lock()
	*h.records = (*h.records)[:0]
	h.mu.Unlock()
}

func containsLevel(levels []slog.Level, l slog.Level) bool {
	for _, x := range levels {
		if x == l {
			return true
		}
	}
	return false
}

// AssertLogContains fails t unless a record at level has msg in its message
func AssertLogContains(t *testing.T, h *BufferedSlogHandler, level slog.Level, msg string) {
	t.Helper()
	records := h.Records(level)
	for _, r := range records {
		if strings.Contains(r.Message, msg) {
			return
		}
	}
	t.Errorf("no %s log containing %q among %d records", level, msg, len(records))
}

// AssertLogAttr fails t unless some record carries key=value
func AssertLogAttr(t *testing.T, h *BufferedSlogHandler, key string, value any) {
	t.Helper()
	for _, r := range h.Records() {
		if v, ok := r.Attrs[key]; ok && v == value {
			return
		}
	}
	t.Errorf("no log with %s=%v", key, value)
}

// AssertNoErrors fails t for every error level record
func AssertNoErrors(t *testing.T, h *BufferedSlogHandler) {
	t.Helper()
	for _, r := range h.Records(slog.LevelError) {
		t.Errorf("unexpected error log: %s %v", r.Message, r.Attrs)
	}
}
