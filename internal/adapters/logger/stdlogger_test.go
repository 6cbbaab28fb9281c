package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"candleview/internal/ports"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"Error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestStdLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, LevelWarn)

	l.Debug(context.Background(), "debug line")
	l.Info(context.Background(), "info line")
	l.Warn(context.Background(), "warn line")
	l.Error(context.Background(), errors.New("boom"), "error line")

	out := buf.String()
	assert.NotContains(t, out, "debug line")
	assert.NotContains(t, out, "info line")
	assert.Contains(t, out, "[WARN] warn line")
	assert.Contains(t, out, "[ERROR] error line | error: boom")
}

func TestStdLogger_FieldsSortedWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, LevelDebug)

	ctx := ports.WithRequestID(context.Background(), "abc")
	l.Info(ctx, "fetch", map[string]interface{}{"symbol": "BTCUSDT", "candles": 3})

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasSuffix(line, "[INFO] fetch | candles=3 request_id=abc symbol=BTCUSDT"), line)
}
