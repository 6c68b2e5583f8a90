package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogger_ReturnsNonNilLogger(t *testing.T) {
	logger := GetLogger("test")
	require.NotNil(t, logger, "GetLogger should never return nil.")
}

func TestSlogLogger_Info_EmitsComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := NewSlogLogger(slog.New(handler)).WithField("component", "test_component")

	logger.Info("test message", "key1", "value1", "key2", 123)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "Log output should be valid JSON.")
	assert.Equal(t, "test message", entry["msg"], "Message should round-trip.")
	assert.Equal(t, "test_component", entry["component"], "Component field should be present.")
	assert.Equal(t, "value1", entry["key1"], "Extra key-value args should be emitted.")
	assert.Equal(t, float64(123), entry["key2"], "Numeric args should be emitted.")
}

func TestNoopLogger_WithField_ReturnsSelf(t *testing.T) {
	logger := GetNoopLogger()
	assert.Equal(t, logger, logger.WithField("k", "v"), "NoopLogger.WithField should return itself.")
}

func TestNewSlogLogger_NilLogger_FallsBackToNoop(t *testing.T) {
	logger := NewSlogLogger(nil)
	assert.Equal(t, GetNoopLogger(), logger, "Nil slog logger should fall back to the noop logger.")
}
