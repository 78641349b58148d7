// Package dlog provides a minimal logging interface for best-effort,
// non-fatal diagnostics (checkpoint write failures, manifest key
// collisions) that must never block or fail a download.
package dlog

import "log"

// Logger is the logging surface used across the download orchestrator.
type Logger interface {
	Info(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// StandardLogger wraps the stdlib *log.Logger for console output.
type StandardLogger struct {
	logger *log.Logger
}

// NewStandardLogger creates a logger that wraps the given *log.Logger.
func NewStandardLogger(l *log.Logger) *StandardLogger {
	return &StandardLogger{logger: l}
}

func (s *StandardLogger) Info(format string, args ...interface{}) {
	s.logger.Printf("[INFO] "+format, args...)
}

func (s *StandardLogger) Warning(format string, args ...interface{}) {
	s.logger.Printf("[WARNING] "+format, args...)
}

func (s *StandardLogger) Error(format string, args ...interface{}) {
	s.logger.Printf("[ERROR] "+format, args...)
}

// NopLogger discards all messages. Used as the default when no logger is
// supplied, so call sites never need to nil-check.
type NopLogger struct{}

func (NopLogger) Info(format string, args ...interface{})    {}
func (NopLogger) Warning(format string, args ...interface{}) {}
func (NopLogger) Error(format string, args ...interface{})   {}

var (
	_ Logger = (*StandardLogger)(nil)
	_ Logger = NopLogger{}
)
