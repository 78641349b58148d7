package dlog

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestStandardLogger_Info(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewStandardLogger(log.New(buf, "", 0))

	logger.Info("test message %d", 123)

	output := buf.String()
	if !strings.Contains(output, "[INFO]") {
		t.Errorf("expected [INFO] prefix, got: %s", output)
	}
	if !strings.Contains(output, "test message 123") {
		t.Errorf("expected message content, got: %s", output)
	}
}

func TestStandardLogger_Warning(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewStandardLogger(log.New(buf, "", 0))

	logger.Warning("warning message %s", "test")

	output := buf.String()
	if !strings.Contains(output, "[WARNING]") {
		t.Errorf("expected [WARNING] prefix, got: %s", output)
	}
	if !strings.Contains(output, "warning message test") {
		t.Errorf("expected message content, got: %s", output)
	}
}

func TestStandardLogger_Error(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewStandardLogger(log.New(buf, "", 0))

	logger.Error("error message: %v", "failed")

	output := buf.String()
	if !strings.Contains(output, "[ERROR]") {
		t.Errorf("expected [ERROR] prefix, got: %s", output)
	}
	if !strings.Contains(output, "error message: failed") {
		t.Errorf("expected message content, got: %s", output)
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger{}

	// Should not panic.
	logger.Info("test")
	logger.Warning("test")
	logger.Error("test")
}
