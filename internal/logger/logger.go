// Package logger writes one JSON object per line, the log format used across the service.
//
// Every entry carries "ts" (RFC3339Nano in the configured location) and "level"; when no
// level is given it is derived from "status" ("error" → error, anything else → info).
package logger

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// Logger is safe for concurrent use. A nil *Logger discards everything.
type Logger struct {
	mu  sync.Mutex
	enc *json.Encoder
	loc *time.Location
}

// New returns a Logger writing to w with timestamps rendered in loc.
func New(w io.Writer, loc *time.Location) *Logger {
	if loc == nil {
		loc = time.UTC
	}
	return &Logger{enc: json.NewEncoder(w), loc: loc}
}

// Default writes to stdout in UTC.
func Default() *Logger {
	return New(os.Stdout, time.UTC)
}

// Location returns the timezone used for "ts".
func (l *Logger) Location() *time.Location {
	if l == nil {
		return time.UTC
	}
	return l.loc
}

// Log writes data as a single line. The map is not retained.
func (l *Logger) Log(data map[string]any) {
	if l == nil {
		return
	}
	entry := make(map[string]any, len(data)+2)
	for k, v := range data {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		entry[k] = v
	}
	entry["ts"] = time.Now().In(l.loc).Format(time.RFC3339Nano)
	if _, ok := entry["level"]; !ok {
		if entry["status"] == "error" {
			entry["level"] = "error"
		} else {
			entry["level"] = "info"
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enc.Encode(entry); err != nil {
		log.Printf("failed to write log entry: %v", err)
	}
}

func (l *Logger) Info(msg string, fields map[string]any) {
	l.Log(withMsg("info", msg, fields))
}

func (l *Logger) Warn(msg string, fields map[string]any) {
	l.Log(withMsg("warn", msg, fields))
}

func (l *Logger) Error(msg string, fields map[string]any) {
	l.Log(withMsg("error", msg, fields))
}

func withMsg(level, msg string, fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		out[k] = v
	}
	out["level"] = level
	out["msg"] = msg
	return out
}
