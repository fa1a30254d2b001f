package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/snapshop/shopkit/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want zapcore.Level
	}{
		{name: "debug", want: zapcore.DebugLevel},
		{name: "INFO", want: zapcore.InfoLevel},
		{name: "warning", want: zapcore.WarnLevel},
		{name: " error ", want: zapcore.ErrorLevel},
		{name: "verbose", want: zapcore.InfoLevel},
		{name: "", want: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.name))
		})
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.LogConfig{Level: "info", Format: "json"}, &buf)

	log.Debugw("hidden")
	log.Infow("offers fetched", "count", 3)
	require.NoError(t, log.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "offers fetched", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.EqualValues(t, 3, entry["count"])
	assert.Contains(t, entry, "ts")
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.LogConfig{Level: "debug", Format: "console"}, &buf)

	log.Debugw("building request", "endpoint", "identify")
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.Contains(t, out, "DEBUG")
	assert.Contains(t, out, "building request")
	assert.Contains(t, out, `"endpoint": "identify"`)
}
