// Package notify is the "tell the user what happened" capability.
//
// Every mutating operation and every validation failure produces one
// Notification. Where it ends up (a log line, an HTTP body, a test
// recorder) is up to the Sink.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Level classifies an outcome.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a single user-facing outcome message.
type Notification struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Success, Warning and Error are shorthands for building a Notification.
func Success(title, message string) Notification {
	return Notification{Level: LevelSuccess, Title: title, Message: message}
}

func Warning(title, message string) Notification {
	return Notification{Level: LevelWarning, Title: title, Message: message}
}

func Error(title, message string) Notification {
	return Notification{Level: LevelError, Title: title, Message: message}
}

// Sink receives notifications.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// LogSink writes notifications as structured log records. Success maps to
// INFO, warning to WARN and error to ERROR.
type LogSink struct {
	Logger *slog.Logger
}

// NewLogSink returns a LogSink writing to logger, or to slog.Default()
// when logger is nil.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{Logger: logger}
}

func (s *LogSink) Notify(ctx context.Context, n Notification) {
	s.Logger.Log(ctx, n.Level.slogLevel(), n.Message,
		slog.String("level_class", string(n.Level)),
		slog.String("title", n.Title),
	)
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Recorder keeps every notification it receives. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications, oldest first.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Last returns the most recent notification, if any.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}
