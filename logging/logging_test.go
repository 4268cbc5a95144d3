package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tranvictor/hsocial/txerror"
)

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New("loud", "json")
	assert.Error(t, err)

	l, err := New("debug", "console")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestClassifiedRespectsShouldLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := zap.New(core)

	Classified(l, "step failed", txerror.Classify("USER_REJECT"))
	Classified(l, "step failed", txerror.Classify(errors.New("Transaction failed: INVALID_SIGNATURE")))
	Classified(l, "ignored", nil)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "TRANSACTION_FAILED", entries[1].ContextMap()["error_type"])
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
