package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestLevels(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG", "msg=dbg", "a=1",
		"level=INFO", "msg=inf", "b=2",
		"level=WARN", "msg=wrn", "c=3",
		"level=ERROR", "msg=err", "d=4",
	} {
		assert.Contains(t, out, want)
	}
}

func TestWithAddsAttributes(t *testing.T) {
	log, buf := newTestLogger(t)

	log.With("module", "reactor").Info(context.Background(), "hello", "k", "v")

	out := buf.String()
	assert.Contains(t, out, "module=reactor")
	assert.Contains(t, out, "k=v")
}

func TestNewJSONLoggerWritesJSONRecords(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONLogger(&buf)

	log.Error(context.Background(), "snapshot failed", "error", "disk full")

	line := strings.TrimSpace(buf.String())
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "snapshot failed", record["msg"])
	assert.Equal(t, "disk full", record["error"])
}
