package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("trace"))
	assert.Equal(t, slog.LevelDebug, ParseLogLevel(" DEBUG "))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("verbose"))
}

func TestPrettyHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, slog.LevelDebug))

	logger.With("profile", "ops").WithGroup("gateway").Warn("request failed",
		"path", "/api/users",
		"duration", 1500*time.Millisecond,
		"error", errors.New("connection reset"),
		"empty", "")

	line := buf.String()
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3} \[WARN \] request failed`, line)
	assert.Contains(t, line, ` profile=ops gateway.path=/api/users gateway.duration=1.5s`)
	assert.Contains(t, line, ` gateway.error="connection reset" gateway.empty=""`+"\n")
}

func TestPrettyHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, slog.LevelWarn)

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))

	slog.New(h).Info("hidden")
	assert.Empty(t, buf.String())
}

func TestGetLoggingHandler_Json(t *testing.T) {
	var buf bytes.Buffer
	slog.New(GetLoggingHandler("info", true, true, &buf)).Info("started", "views", 9)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "started", record["msg"])
	assert.EqualValues(t, 9, record["views"])
	assert.Contains(t, record, "time")
}
