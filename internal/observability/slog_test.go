package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, false, slog.LevelInfo, false)

	logger.Info("product inserted", "id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "product inserted", entry["msg"])
	assert.Equal(t, float64(7), entry["id"])
	assert.NotContains(t, entry, "source")
}

func TestNewLogger_TextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, true, slog.LevelWarn, false)

	logger.Info("dropped")
	logger.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "msg=kept")
}
