package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"", LevelInfo, false},
		{"INFO", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoggerFiltersBelowMinimum(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, LevelWarn)

	logger.Debug("debug %d", 1)
	logger.Info("info %d", 2)
	logger.Warn("warn %d", 3)
	logger.Error("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "warn 3")
	assert.Contains(t, out, "[ERROR]")
	assert.Contains(t, out, "error 4")
}
