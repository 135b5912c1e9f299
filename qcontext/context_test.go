package qcontext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultsMatchSpec(t *testing.T) {
	c := New()
	assert.True(t, c.Finalize())
	assert.False(t, c.BySegment())
	assert.Equal(t, 0, c.TimeoutMillis())
	assert.Equal(t, 1, c.GroupByMergeParallelism())
}

func TestSettersRoundTrip(t *testing.T) {
	c := New()
	c.SetFinalize(false)
	c.SetBySegment(true)
	c.SetTimeoutMillis(5000)
	c.SetGroupByMergeParallelism(4)

	assert.False(t, c.Finalize())
	assert.True(t, c.BySegment())
	assert.Equal(t, 5000, c.TimeoutMillis())
	assert.Equal(t, 4, c.GroupByMergeParallelism())
}

func TestWrongTypedValueFallsBackToDefault(t *testing.T) {
	c := Context{"finalize": "not-a-bool"}
	assert.True(t, c.Finalize())
}
