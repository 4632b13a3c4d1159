package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(zapcore.AddSync(&buf), WarnLevel, true)

	l.Infow("hidden", "k", 1)
	assert.Zero(t, buf.Len())

	l.Named("engine").With("party", 2).Warnw("round mismatch", "round", 3)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "engine", entry["logger"])
	assert.Equal(t, "round mismatch", entry["msg"])
	assert.EqualValues(t, 2, entry["party"])
	assert.EqualValues(t, 3, entry["round"])
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DebugLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestConsoleEncoder(t *testing.T) {
	var buf bytes.Buffer
	New(zapcore.AddSync(&buf), DebugLevel, false).Debugw("round complete", "round", 4)
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "round complete")
	assert.False(t, json.Valid(buf.Bytes()))
}
