package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/segmentdb/qengine/qerrors"
)

func TestWatcherCancelUnblocksRegisteredContext(t *testing.T) {
	w := NewWatcher()
	ctx, done := w.Register(context.Background(), "q1")
	defer done()

	assert.True(t, w.Active("q1"))
	w.Cancel("q1")

	select {
	case <-ctx.Done():
	default:
		t.Fatal("expected ctx to be canceled")
	}
	assert.Equal(t, context.Canceled, ctx.Err())
}

func TestWatcherDoneDeregisters(t *testing.T) {
	w := NewWatcher()
	_, done := w.Register(context.Background(), "q1")
	done()
	assert.False(t, w.Active("q1"))
	w.Cancel("q1") // no-op, must not panic
}

func TestAsInterruptedTranslatesContextErrors(t *testing.T) {
	err := AsInterrupted("q1", context.Canceled)
	assert.True(t, qerrors.Is(err, qerrors.Interrupted))
}

func TestAsInterruptedPassesThroughOtherErrors(t *testing.T) {
	other := qerrors.E(qerrors.InvalidQuery, "bad")
	assert.Equal(t, other, AsInterrupted("q1", other))
}
