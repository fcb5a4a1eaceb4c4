package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_ProductionInfoLevel(t *testing.T) {
	logger, err := NewLogger("production", "info")
	require.NoError(t, err)
	require.NotNil(t, logger)

	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_DevelopmentDebugLevel(t *testing.T) {
	logger, err := NewLogger("development", "debug")
	require.NoError(t, err)

	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger("development", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
