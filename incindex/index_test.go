package incindex

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/segmentdb/qengine/granularity"
	"github.com/segmentdb/qengine/qerrors"
)

func row(ts int64, host string, count int64) InputRow {
	return InputRow{
		TimestampMillis: ts,
		Dims:            map[string][]string{"host": {host}},
		Metrics:         map[string]interface{}{"count": count},
	}
}

func TestRollupCollapsesEqualKeys(t *testing.T) {
	idx := NewIncrementalIndex(granularity.Hour, 0, []string{"host"},
		[]Factory{LongSumFactory{FactoryName: "count", Field: "count"}}, true, 0, 0)

	assert.NoError(t, idx.Add(row(0, "a", 1)))
	assert.NoError(t, idx.Add(row(100, "a", 2))) // same hour bucket, same host -> collapses
	assert.NoError(t, idx.Add(row(0, "b", 5)))

	assert.Equal(t, int64(2), idx.RowCount())

	idx.Seal()
	facts := idx.Iterate()
	assert.Len(t, facts, 2)

	var total int64
	for _, f := range facts {
		total += f.Values[0].(int64)
	}
	assert.Equal(t, int64(8), total)
}

func TestNonRollupKeepsEveryRowDistinct(t *testing.T) {
	idx := NewIncrementalIndex(granularity.Hour, 0, []string{"host"},
		[]Factory{LongSumFactory{FactoryName: "count", Field: "count"}}, false, 0, 0)

	assert.NoError(t, idx.Add(row(0, "a", 1)))
	assert.NoError(t, idx.Add(row(0, "a", 1)))
	assert.NoError(t, idx.Add(row(0, "a", 1)))

	assert.Equal(t, int64(3), idx.RowCount())
}

func TestCapacityExceededStopsAcceptingNewSlots(t *testing.T) {
	idx := NewIncrementalIndex(granularity.Hour, 0, []string{"host"},
		[]Factory{LongSumFactory{FactoryName: "count", Field: "count"}}, true, 2, 0)

	assert.NoError(t, idx.Add(row(0, "a", 1)))
	assert.NoError(t, idx.Add(row(0, "b", 1)))
	err := idx.Add(row(0, "c", 1))
	assert.Error(t, err)
	assert.True(t, qerrors.Is(err, qerrors.CapacityExceeded))

	// An existing slot can still absorb further aggregation even once the
	// index is at capacity: only NEW slots are refused.
	assert.NoError(t, idx.Add(row(0, "a", 1)))
	assert.Equal(t, int64(2), idx.RowCount())
}

func TestIterateOrdersByTimestampThenDictionaryRank(t *testing.T) {
	idx := NewIncrementalIndex(granularity.Hour, 0, []string{"host"},
		[]Factory{LongSumFactory{FactoryName: "count", Field: "count"}}, true, 0, 0)

	assert.NoError(t, idx.Add(row(0, "zeta", 1)))
	assert.NoError(t, idx.Add(row(0, "alpha", 1)))
	assert.NoError(t, idx.Add(row(3600_000, "alpha", 1)))

	idx.Seal()
	facts := idx.Iterate()
	assert.Len(t, facts, 3)

	// First bucket (t=0): alpha sorts before zeta lexicographically, so
	// its rank is lower even though zeta was inserted first.
	assert.Equal(t, int64(0), facts[0].TimestampMillis)
	assert.Equal(t, int64(0), facts[1].TimestampMillis)
	assert.True(t, facts[0].DimRanks[0][0] < facts[1].DimRanks[0][0])
	assert.Equal(t, int64(3600_000), facts[2].TimestampMillis)
}

func TestConcurrentAddsToSameKeyAggregateExactlyOnce(t *testing.T) {
	idx := NewIncrementalIndex(granularity.Hour, 0, []string{"host"},
		[]Factory{LongSumFactory{FactoryName: "count", Field: "count"}}, true, 0, 0)

	var wg sync.WaitGroup
	const n = 200
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = idx.Add(row(0, "a", 1))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), idx.RowCount())
	idx.Seal()
	facts := idx.Iterate()
	assert.Len(t, facts, 1)
	assert.Equal(t, int64(n), facts[0].Values[0].(int64))
}
