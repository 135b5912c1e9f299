package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntervalClip(t *testing.T) {
	seg := Interval{100, 200}
	clipped, ok := seg.Clip(Interval{150, 300})
	assert.True(t, ok)
	assert.Equal(t, Interval{150, 200}, clipped)

	_, ok = seg.Clip(Interval{300, 400})
	assert.False(t, ok)
}

func TestSegmentMinMaxTime(t *testing.T) {
	s := New(Identity{}, Interval{0, 1000}, Metadata{}, []int64{10, 10, 50, 900}, nil, nil, nil)
	assert.Equal(t, int64(10), s.GetMinTime())
	assert.Equal(t, int64(901), s.GetMaxTime())
	assert.Equal(t, 4, s.NumRows())
}
