package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

// TestLoggerLevels tests that entries above the configured level are dropped
func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(LogLevelWarn, zapcore.AddSync(&buf))

	l.Error("grid failed: %d", 91)
	l.Warn("parameters rejected")
	l.Info("hidden info")
	l.Debug("hidden debug")
	l.Trace("hidden trace")

	out := buf.String()
	assert.Contains(t, out, "grid failed: 91")
	assert.Contains(t, out, "parameters rejected")
	assert.NotContains(t, out, "hidden")
}

// TestLoggerTrace tests that trace output is tagged and gated
func TestLoggerTrace(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(LogLevelTrace, zapcore.AddSync(&buf)).Named("engine")

	l.Trace("cache hit %s", "abc")
	assert.Contains(t, buf.String(), "[TRACE] cache hit abc")
	assert.Contains(t, buf.String(), "engine")
	assert.Equal(t, LogLevelTrace, l.GetLevel())
}

// TestParseLogLevel tests level name parsing
func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("WARNING"))
	assert.Equal(t, LogLevelDebug, ParseLogLevel(" debug "))
	assert.Equal(t, LogLevelTrace, ParseLogLevel("TRACE"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}
