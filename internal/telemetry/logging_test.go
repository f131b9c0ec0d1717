package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedLogger(t *testing.T, level LogLevel) (*Logger, *bytes.Buffer) {
	t.Helper()
	config := DefaultLogConfig()
	config.Level = level
	logger, err := NewLogger(config)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	logger.SetOutput(buf)
	return logger, buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DebugLevel,
		" WARN ":  WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"info":    InfoLevel,
		"":        InfoLevel,
		"verbose": InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}

func TestContextualLogger_CarriesContextFields(t *testing.T) {
	logger, buf := newBufferedLogger(t, InfoLevel)

	ctx := WithCorrelationID(context.Background(), "corr-123")
	ctx = WithUserID(ctx, "user-9")

	logger.WithContext(ctx).
		WithField("operation", "compute_matches").
		WithError(errors.New("boom")).
		Info("scored candidates")

	entry := decodeLine(t, buf)
	assert.Equal(t, "corr-123", entry["correlation_id"])
	assert.Equal(t, "user-9", entry["user_id"])
	assert.Equal(t, "compute_matches", entry["operation"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "scored candidates", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestContextualLogger_WithFieldsDoesNotMutateParent(t *testing.T) {
	logger, _ := newBufferedLogger(t, InfoLevel)

	parent := logger.WithContext(context.Background()).WithField("a", 1)
	child := parent.WithField("b", 2)

	assert.NotContains(t, parent.fields, "b")
	assert.Contains(t, child.fields, "a")
	assert.Contains(t, child.fields, "b")
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, buf := newBufferedLogger(t, WarnLevel)

	logger.WithContext(context.Background()).Info("hidden")
	assert.Zero(t, buf.Len())

	logger.WithContext(context.Background()).Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, err := NewLogger(&LogConfig{Level: InfoLevel, Format: "text", Output: path})
	require.NoError(t, err)
	logger.WithContext(context.Background()).Info("to file")

	rotating, err := NewLogger(&LogConfig{Level: InfoLevel, Format: "json", Output: path, Rotation: true, MaxSize: 1})
	require.NoError(t, err)
	assert.NotNil(t, rotating)
}

func TestCorrelationID(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "")
	assert.NotEmpty(t, GetCorrelationID(ctx))
	assert.Empty(t, GetCorrelationID(context.Background()))
	assert.NotEqual(t, NewCorrelationID(), NewCorrelationID())
}

func TestGlobalLogger(t *testing.T) {
	logger, buf := newBufferedLogger(t, DebugLevel)
	SetGlobalLogger(logger)
	t.Cleanup(func() { SetGlobalLogger(nil) })

	GetContextualLogger(context.Background()).Debug("via global")
	assert.Contains(t, buf.String(), "via global")
	assert.Same(t, logger, GetGlobalLogger())
}
