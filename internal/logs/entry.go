package logs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"reelforge/internal/logging"
)

// Entry is one decoded JSON log record.
type Entry struct {
	Time      time.Time
	Level     slog.Level
	Message   string
	Component string
	JobID     string
	BatchID   string
	Stage     string
	// Fields holds every remaining attribute.
	Fields map[string]any
}

var reservedKeys = []string{
	"ts", "level", "msg", "source",
	logging.FieldComponent, logging.FieldJobID, logging.FieldBatchID, logging.FieldStage,
}

// ParseLine decodes a line written by the JSON handler. Lines that are not
// JSON objects report false.
func ParseLine(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return Entry{}, false
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}

	entry := Entry{
		Message:   stringField(raw, "msg"),
		Component: stringField(raw, logging.FieldComponent),
		JobID:     stringField(raw, logging.FieldJobID),
		BatchID:   stringField(raw, logging.FieldBatchID),
		Stage:     stringField(raw, logging.FieldStage),
	}
	if ts := stringField(raw, "ts"); ts != "" {
		entry.Time, _ = time.Parse(time.RFC3339Nano, ts)
	}
	if lvl := stringField(raw, "level"); lvl != "" {
		_ = entry.Level.UnmarshalText([]byte(lvl))
	}
	for key, value := range raw {
		if slices.Contains(reservedKeys, key) {
			continue
		}
		if entry.Fields == nil {
			entry.Fields = make(map[string]any)
		}
		entry.Fields[key] = value
	}
	return entry, true
}

func stringField(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

// Filter narrows entries. Zero values match everything.
type Filter struct {
	// JobID matches as a prefix so short IDs from `jobs list` work.
	JobID    string
	BatchID  string
	MinLevel *slog.Level
}

// Match reports whether e passes the filter.
func (f Filter) Match(e Entry) bool {
	if f.MinLevel != nil && e.Level < *f.MinLevel {
		return false
	}
	if f.JobID != "" && !strings.HasPrefix(e.JobID, f.JobID) {
		return false
	}
	if f.BatchID != "" && e.BatchID != f.BatchID {
		return false
	}
	return true
}

// Format renders e on one line, fields sorted by key.
func Format(e Entry) string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("2006-01-02 15:04:05"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s", e.Level.String())
	if e.Component != "" {
		fmt.Fprintf(&b, " [%s]", e.Component)
	}
	if e.JobID != "" {
		id := e.JobID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(&b, " job %s", id)
	}
	if e.Stage != "" {
		fmt.Fprintf(&b, " (%s)", e.Stage)
	}
	b.WriteString(" ")
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
	}
	return b.String()
}
