package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "warn", Format: "json", Writer: &buf})

	logger.Info("dropped")
	logger.Warn("kept", "lead_id", "abc")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "exactly one JSON line")
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "abc", entry["lead_id"])
}

func TestNewText(t *testing.T) {
	t.Setenv("LOG_FORMAT", "")
	var buf bytes.Buffer
	logger := New(Options{Level: "debug", Writer: &buf})

	logger.Debug("recomputed", "calculator", "cost")
	assert.Contains(t, buf.String(), "recomputed")
	assert.Contains(t, buf.String(), "calculator=cost")
	assert.NotContains(t, buf.String(), "\x1b[", "no color when not writing to a terminal")
}
