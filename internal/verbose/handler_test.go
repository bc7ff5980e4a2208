package verbose

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, slog.LevelInfo))

	logger.Info("stage complete", "stage", "lexical", "elapsed", "120ms")

	line := buf.String()
	assert.Contains(t, line, "INFO")
	assert.Contains(t, line, "stage complete")
	assert.Contains(t, line, "stage=lexical")
	assert.Contains(t, line, "elapsed=120ms")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, slog.LevelInfo))

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "WARN")
}

func TestHandlerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(NewHandler(&buf, slog.LevelDebug))

	logger := base.With("request_id", "abc").WithGroup("router")
	logger.Info("selected", "tier", "fast")

	line := buf.String()
	assert.Contains(t, line, "request_id=abc")
	assert.Contains(t, line, "router.tier=fast")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}
