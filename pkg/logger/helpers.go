package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// LogRequest logs an API round-trip at a level matched to its status code.
func LogRequest(method, endpoint string, statusCode int, durationMs float64) {
	fields := map[string]interface{}{
		"method":      method,
		"endpoint":    endpoint,
		"status_code": statusCode,
		"duration_ms": durationMs,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		GetLogger().DebugWithFields("request completed", fields)
	case statusCode >= 400 && statusCode < 500:
		GetLogger().WarnWithFields("request client error", fields)
	case statusCode >= 500:
		GetLogger().ErrorWithFields("request server error", fields)
	}
}

// LogUpload logs the outcome of a media upload phase.
func LogUpload(uploadID, mediaType, phase string, success bool, err error) {
	l := GetLogger().WithFields(map[string]interface{}{
		"upload_id":  uploadID,
		"media_type": mediaType,
		"phase":      phase,
	})

	switch {
	case err != nil:
		l.WithError(err).Error("upload phase failed")
	case success:
		l.Info("upload phase completed")
	default:
		l.Warn("upload phase rejected by server")
	}
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing (useful for testing)
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
