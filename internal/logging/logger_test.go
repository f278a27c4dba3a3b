package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_JSONOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	log := newWithSink("prod", "info", "count-game-api", zapcore.AddSync(&buf))

	log.Debug("hidden")
	log.Info("hello", zap.String("k", "v"))
	require.NoError(t, log.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "v", entry["k"])
	assert.Equal(t, "count-game-api", entry["service"])
	assert.Equal(t, "prod", entry["environment"])
	assert.Contains(t, entry, "time")
}

func TestNew_ConsoleInDev(t *testing.T) {
	var buf bytes.Buffer
	log := newWithSink("dev", "debug", "svc", zapcore.AddSync(&buf))

	log.Debug("visible")
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.Contains(t, out, "visible")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zap.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zap.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zap.InfoLevel, parseLevel("info"))
	assert.Equal(t, zap.InfoLevel, parseLevel("nonsense"))
}
