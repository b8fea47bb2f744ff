package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level LogLevel) (*CallLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: level, Format: "json", Output: &buf})
	return l, &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestCallLoggerContextualAttrs(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	l.WithComponent("server").
		WithCall("call-1", "payment-agent").
		WithContext("function_id", "fn-1").
		Info("dispatched", "function", "process_payment")

	entry := decodeLine(t, buf)
	assert.Equal(t, "server", entry["component"])
	assert.Equal(t, "call-1", entry["call_id"])
	assert.Equal(t, "payment-agent", entry["agent"])
	assert.Equal(t, "fn-1", entry["function_id"])
	assert.Equal(t, "process_payment", entry["function"])
}

func TestCallLoggerWithIsNonDestructive(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	scoped := l.WithCall("call-1", "payment-agent")
	_ = scoped.WithContext("k", "v")

	l.Info("plain")
	entry := decodeLine(t, buf)
	assert.NotContains(t, entry, "call_id")
	assert.NotContains(t, entry, "k")
}

func TestCallLoggerLevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	l.Debug("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("visible")
	assert.NotZero(t, buf.Len())
}

func TestLogFunctionCallSuccess(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	l.WithCall("call-1", "payment-agent").LogFunctionCall("get_recording_consent", 12*time.Millisecond, true, nil)

	entry := decodeLine(t, buf)
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "Function execution completed", entry["msg"])
	assert.Equal(t, "get_recording_consent", entry["function"])
	assert.Equal(t, "call-1", entry["call_id"])
	assert.Equal(t, true, entry["success"])
	assert.NotContains(t, entry, "error")
}

func TestLogFunctionCallFailure(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	l.LogFunctionCall("process_payment", time.Millisecond, false, errors.New("gateway unreachable"))

	entry := decodeLine(t, buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "Function execution failed", entry["msg"])
	assert.Equal(t, false, entry["success"])
	assert.Equal(t, "gateway unreachable", entry["error"])
}

func TestLogDocumentRender(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	l.WithCall("call-2", "payment-agent").LogDocumentRender(2048, 3*time.Millisecond, nil)

	entry := decodeLine(t, buf)
	assert.Equal(t, "Document rendered", entry["msg"])
	assert.Equal(t, "payment-agent", entry["agent"])
	assert.Equal(t, float64(2048), entry["bytes"])
}

func TestLogDocumentRenderError(t *testing.T) {
	l, buf := newBufferLogger(LogLevelInfo)

	l.LogDocumentRender(0, time.Millisecond, errors.New("bad template"))

	entry := decodeLine(t, buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "Document render failed", entry["msg"])
	assert.Equal(t, "bad template", entry["error"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("debug"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warning"))
	assert.Equal(t, LogLevelError, ParseLevel("ERROR"))
	assert.Equal(t, LogLevelInfo, ParseLevel("bogus"))
	assert.Equal(t, "WARN", LogLevelWarn.String())
}

func TestNewSlogLoggerTextFormat(t *testing.T) {
	l := NewSlogLogger(LogLevelDebug, "text", false)
	require.NotNil(t, l)
	l.Debug("smoke", "k", "v")
}
