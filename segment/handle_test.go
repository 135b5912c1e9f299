package segment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/segmentdb/qengine/qerrors"
)

func testSegment() *Segment {
	id := Identity{DataSource: "events", Interval: Interval{0, 3600_000}, Version: 1, Partition: 0}
	return New(id, Interval{0, 3600_000}, Metadata{}, []int64{0, 0, 100}, nil, nil, nil)
}

func TestAcquireReleaseRoundTrip(t *testing.T) {
	h := NewHandle(testSegment())
	tok, err := h.Acquire()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), h.RefCount())
	tok.Release()
	assert.Equal(t, int64(0), h.RefCount())

	// Releasing twice is a safe no-op, not a double-decrement.
	tok.Release()
	assert.Equal(t, int64(0), h.RefCount())
}

func TestRetractFailsNewAcquiresButNotOutstanding(t *testing.T) {
	h := NewHandle(testSegment())
	tok, err := h.Acquire()
	assert.NoError(t, err)

	h.Retract()
	_, err = h.Acquire()
	assert.Error(t, err)
	assert.True(t, qerrors.Is(err, qerrors.MissingSegment))

	// The already-outstanding token is still valid to release.
	tok.Release()
	assert.Equal(t, int64(0), h.RefCount())
}

func TestWithAcquiredReleasesOnError(t *testing.T) {
	h := NewHandle(testSegment())
	err := h.WithAcquired(func(*Token) error {
		assert.Equal(t, int64(1), h.RefCount())
		return assertError
	})
	assert.Equal(t, assertError, err)
	assert.Equal(t, int64(0), h.RefCount())
}

var assertError = errors.New("boom")
