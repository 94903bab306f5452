package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	assert.True(t, SetLevel("debug"))
	assert.True(t, Logger.Core().Enabled(zapcore.DebugLevel))

	assert.True(t, SetLevel("error"))
	assert.False(t, Logger.Core().Enabled(zapcore.InfoLevel))

	assert.False(t, SetLevel("loud"))
	assert.False(t, Logger.Core().Enabled(zapcore.InfoLevel))
}
