package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/cjbootstrap/internal/config"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogOptions{Level: config.LogLevelInfo, Format: config.LogFormatJSON})
	logger.Info("hello", slog.String("stage", "build_target"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "build_target", rec["stage"])
}

func TestNewLoggerTextFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogOptions{Level: config.LogLevelWarn, Format: config.LogFormatText})
	logger.Info("quiet")
	logger.Warn("loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.True(t, strings.Contains(out, "msg=loud"))
}

func TestVerboseForcesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogOptions{Level: config.LogLevelError, Verbose: true})
	logger.Debug("details")
	assert.Contains(t, buf.String(), "details")
}

func TestLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Level(config.LogLevelDebug))
	assert.Equal(t, slog.LevelWarn, Level(config.LogLevelWarn))
	assert.Equal(t, slog.LevelError, Level(config.LogLevelError))
	assert.Equal(t, slog.LevelInfo, Level(""))
}
