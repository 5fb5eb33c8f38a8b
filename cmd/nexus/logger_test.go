package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	logger, err := newLogger("warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	_, err = newLogger("loud")
	assert.Error(t, err)
}

func TestZapLoggerAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := zapLogger{s: zap.New(core).Sugar()}

	l.Debug("speed switch acknowledged", "baud", 921600)
	l.Info("connected", "port", "/dev/ttyUSB0", "baud", 115200)
	l.Error("upload failed", "offset", int64(8192))

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "speed switch acknowledged", entries[0].Message)

	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, map[string]interface{}{"port": "/dev/ttyUSB0", "baud": int64(115200)}, entries[1].ContextMap())

	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, int64(8192), entries[2].ContextMap()["offset"])
}
