package obslog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultLoggerIsNoOpAndDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Debugw("dominator computation", "fragments", 4)
		Warnw("propagation did not converge", "iterations", 10)
	})
}

func TestSetInstallsCustomLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	Set(zap.New(core).Sugar())
	defer Set(nil)

	Debugw("phi placed", "fragment", "0x4000")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "phi placed", entries[0].Message)
	}
}
