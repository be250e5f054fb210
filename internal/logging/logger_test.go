// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		verbose bool
		enabled []zapcore.Level
		muted   []zapcore.Level
	}{
		{false, []zapcore.Level{zapcore.WarnLevel, zapcore.ErrorLevel}, []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel}},
		{true, []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel}, nil},
	}
	for _, tt := range tests {
		logger, err := New(tt.verbose)
		require.NoError(t, err)
		for _, l := range tt.enabled {
			assert.True(t, logger.Core().Enabled(l), "verbose=%v level=%v", tt.verbose, l)
		}
		for _, l := range tt.muted {
			assert.False(t, logger.Core().Enabled(l), "verbose=%v level=%v", tt.verbose, l)
		}
	}
}
