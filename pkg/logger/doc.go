// Package logger provides structured logging for the client built on
// zerolog.
//
// The package exposes a Logger interface so that components can be tested
// against a capturing TestLogger or a NopLogger without touching global
// state. The default implementation writes human-readable console output
// and can additionally append JSON lines to a log file when configured.
//
// A process-wide logger is available through Initialize/GetLogger for the
// CLI layer; library code should accept a Logger value instead.
package logger
