package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		for _, json := range []bool{false, true} {
			log, err := New(Config{Level: tt.level, JSON: json})
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.want), tt.level)
			if tt.want > zapcore.DebugLevel {
				assert.False(t, log.Core().Enabled(tt.want-1), tt.level)
			}
		}
	}
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestGetEncoderConfig(t *testing.T) {
	cfg := GetEncoderConfig("\n")
	assert.Equal(t, "timestamp", cfg.TimeKey)
	assert.Equal(t, "message", cfg.MessageKey)
	assert.Equal(t, "level", cfg.LevelKey)
	assert.Equal(t, "\n", cfg.LineEnding)
}
