package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferedSlogHandler(t *testing.T) {
	logger, handler := NewTestLogger()

	logger.Info("load complete", slog.String("source", "clinics.csv"))
	logger.Warn("rows dropped", slog.Int("dropped", 2))

	assert.Len(t, handler.Records(), 2)
	assert.True(t, handler.ContainsMessage("load complete"))
	assert.True(t, handler.ContainsAttr("dropped", int64(2)))
	assert.False(t, handler.ContainsAttr("dropped", int64(3)))

	AssertLogContains(t, handler, slog.LevelWarn, "rows dropped")
}
