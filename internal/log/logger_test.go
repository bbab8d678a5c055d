package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/fluxkit/precedent/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "level %q", tt.in)
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, config.LogFormatJSON, "INFO")

	logger.Info("patterns indexed", slog.Int("count", 3))

	out := buf.String()
	assert.Contains(t, out, `"msg":"patterns indexed"`)
	assert.Contains(t, out, `"count":3`)
}

func TestNewWithWriter_PrettyRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, config.LogFormatPretty, "WARN")

	logger.Info("suppressed")
	logger.Warn("visible", slog.String("stage", "search"))

	out := buf.String()
	assert.NotContains(t, out, "suppressed")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "stage=")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}
