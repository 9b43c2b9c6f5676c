package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	for _, tt := range []struct {
		json, debug bool
	}{{false, false}, {true, true}} {
		l, err := New(tt.json, tt.debug)
		require.NoError(t, err)
		assert.Equal(t, tt.debug, l.Core().Enabled(zapcore.DebugLevel))
	}
}

func TestWithModel(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithModel(zap.New(core), "  openai ", "deepseek-chat").Info("call")
	WithModel(zap.New(core), "", " ").Info("bare")

	entries := observed.All()
	require.Len(t, entries, 2)
	assert.Equal(t, map[string]any{FieldProvider: "openai", FieldModel: "deepseek-chat"}, entries[0].ContextMap())
	assert.Empty(t, entries[1].ContextMap())

	assert.NotNil(t, WithModel(nil, "openai", "m"))
}

func TestTruncateForLog(t *testing.T) {
	assert.Equal(t, "abc", TruncateForLog("  abc  ", 5))
	assert.Equal(t, "简历解...", TruncateForLog("简历解析助手", 3))
	assert.Equal(t, "", TruncateForLog("abc", 0))
}
