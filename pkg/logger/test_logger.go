package logger

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger is a logger implementation for testing that captures all log messages
type TestLogger struct {
	mu       sync.Mutex
	messages []LogMessage
	zerolog  *zerolog.Logger
}

// LogMessage represents a captured log message
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
	Error   error
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	nopLogger := zerolog.Nop()
	return &TestLogger{
		messages: make([]LogMessage, 0),
		zerolog:  &nopLogger,
	}
}

func (l *TestLogger) log(level, msg string, fields map[string]interface{}, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, LogMessage{
		Level:   level,
		Message: msg,
		Fields:  fields,
		Error:   err,
	})
}

// Debug logs a debug message
func (l *TestLogger) Debug(msg string) { l.log("DEBUG", msg, nil, nil) }

// Info logs an info message
func (l *TestLogger) Info(msg string) { l.log("INFO", msg, nil, nil) }

// Warn logs a warning message
func (l *TestLogger) Warn(msg string) { l.log("WARN", msg, nil, nil) }

// Error logs an error message
func (l *TestLogger) Error(msg string) { l.log("ERROR", msg, nil, nil) }

// Fatal logs a fatal message (does not exit in tests)
func (l *TestLogger) Fatal(msg string) { l.log("FATAL", msg, nil, nil) }

// WithField returns a field-scoped logger that records into the parent
func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return &testFieldLogger{parent: l, fields: map[string]interface{}{key: value}}
}

// WithFields returns a field-scoped logger that records into the parent
func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	copied := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &testFieldLogger{parent: l, fields: copied}
}

// WithError returns a logger carrying the error as a field
func (l *TestLogger) WithError(err error) Logger {
	return &testFieldLogger{parent: l, fields: map[string]interface{}{}, err: err}
}

// WithContext is a no-op for the test logger
func (l *TestLogger) WithContext(ctx context.Context) Logger { return l }

// DebugWithFields logs a debug message with fields
func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, fields, nil)
}

// InfoWithFields logs an info message with fields
func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields, nil)
}

// WarnWithFields logs a warning message with fields
func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields, nil)
}

// ErrorWithFields logs an error message with fields
func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields, nil)
}

// FatalWithFields logs a fatal message with fields (does not exit in tests)
func (l *TestLogger) FatalWithFields(msg string, fields map[string]interface{}) {
	l.log("FATAL", msg, fields, nil)
}

// GetZerolog returns a nop zerolog instance
func (l *TestLogger) GetZerolog() *zerolog.Logger { return l.zerolog }

// Messages returns a copy of all captured messages
func (l *TestLogger) Messages() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

// HasMessage reports whether any captured message contains the substring
func (l *TestLogger) HasMessage(substring string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.messages {
		if strings.Contains(m.Message, substring) {
			return true
		}
	}
	return false
}

// CountLevel returns the number of captured messages at the given level
func (l *TestLogger) CountLevel(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, m := range l.messages {
		if m.Level == level {
			n++
		}
	}
	return n
}

// Reset clears all captured messages
func (l *TestLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = l.messages[:0]
}

// testFieldLogger carries fields and an optional error into the parent recorder
type testFieldLogger struct {
	parent *TestLogger
	fields map[string]interface{}
	err    error
}

func (f *testFieldLogger) record(level, msg string) {
	fields := f.fields
	if f.err != nil {
		fields = make(map[string]interface{}, len(f.fields)+1)
		for k, v := range f.fields {
			fields[k] = v
		}
		fields["error"] = fmt.Sprintf("%v", f.err)
	}
	f.parent.log(level, msg, fields, f.err)
}

func (f *testFieldLogger) Debug(msg string) { f.record("DEBUG", msg) }
func (f *testFieldLogger) Info(msg string)  { f.record("INFO", msg) }
func (f *testFieldLogger) Warn(msg string)  { f.record("WARN", msg) }
func (f *testFieldLogger) Error(msg string) { f.record("ERROR", msg) }
func (f *testFieldLogger) Fatal(msg string) { f.record("FATAL", msg) }

func (f *testFieldLogger) WithField(key string, value interface{}) Logger {
	merged := make(map[string]interface{}, len(f.fields)+1)
	for k, v := range f.fields {
		merged[k] = v
	}
	merged[key] = value
	return &testFieldLogger{parent: f.parent, fields: merged, err: f.err}
}

func (f *testFieldLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(f.fields)+len(fields))
	for k, v := range f.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &testFieldLogger{parent: f.parent, fields: merged, err: f.err}
}

func (f *testFieldLogger) WithError(err error) Logger {
	return &testFieldLogger{parent: f.parent, fields: f.fields, err: err}
}

func (f *testFieldLogger) WithContext(ctx context.Context) Logger { return f }

func (f *testFieldLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	f.WithFields(fields).Debug(msg)
}
func (f *testFieldLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	f.WithFields(fields).Info(msg)
}
func (f *testFieldLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	f.WithFields(fields).Warn(msg)
}
func (f *testFieldLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	f.WithFields(fields).Error(msg)
}
func (f *testFieldLogger) FatalWithFields(msg string, fields map[string]interface{}) {
	f.WithFields(fields).Fatal(msg)
}

func (f *testFieldLogger) GetZerolog() *zerolog.Logger { return f.parent.zerolog }
