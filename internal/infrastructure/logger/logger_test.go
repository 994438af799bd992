package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("console config", func(t *testing.T) {
		log, err := New(&Config{Level: "debug", Format: "console", Output: "stdout"})
		require.NoError(t, err)
		assert.NotNil(t, log)
	})

	t.Run("json config", func(t *testing.T) {
		log, err := New(&Config{Level: "info", Format: "json", Output: "stderr"})
		require.NoError(t, err)
		assert.NotNil(t, log)
	})

	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "engine.log")
		log, err := New(&Config{Level: "info", Format: "json", Output: path})
		require.NoError(t, err)

		log.Info("lease sweep scheduled")
		_ = log.Sync()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "lease sweep scheduled")
	})

	t.Run("unwritable file output fails", func(t *testing.T) {
		_, err := New(&Config{Level: "info", Format: "json", Output: filepath.Join(t.TempDir(), "missing", "engine.log")})
		assert.Error(t, err)
	})
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, levelFor(tt.level), "level %q", tt.level)
	}
}

func TestJSONOutputShape(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(
		newEncoder(&Config{Format: "json"}),
		zapcore.AddSync(&buf),
		zapcore.InfoLevel,
	)
	log := zap.New(core)

	log.Info("property released",
		zap.String("property_id", "p-100"),
		zap.String("lease_id", "l-200"),
	)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "property released", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "p-100", entry["property_id"])
	assert.Equal(t, "l-200", entry["lease_id"])
	assert.NotEmpty(t, entry["time"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(
		newEncoder(&Config{Format: "json"}),
		zapcore.AddSync(&buf),
		zapcore.InfoLevel,
	)
	log := zap.New(core)

	log.Debug("overdue sweep candidate skipped")
	assert.False(t, strings.Contains(buf.String(), "candidate skipped"))

	log.Info("overdue sweep completed")
	assert.True(t, strings.Contains(buf.String(), "sweep completed"))
}
