package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segmentdb/qengine/column"
	"github.com/segmentdb/qengine/granularity"
	"github.com/segmentdb/qengine/incindex"
	"github.com/segmentdb/qengine/qcontext"
	"github.com/segmentdb/qengine/segment"
)

// buildEventsSegment makes a 4-row "events" segment: dimension "host" in
// {a,a,b,b}, metric "count" = {1,2,3,4}, all in one hourly bucket --
// mirrors segment.buildTestSegment so query-package tests exercise the
// same shape package segment's own tests already cover.
func buildEventsSegment(version int64) *segment.Segment {
	dict := []string{"a", "b"}
	singles := []int{0, 0, 1, 1}
	hostCol := column.NewDictionaryColumn(dict, singles, nil)
	countCol := column.NewLongColumn([]int64{1, 2, 3, 4}, nil)

	id := segment.Identity{DataSource: "events", Interval: segment.Interval{Start: 0, End: 3600_000}, Version: version}
	return segment.New(id, segment.Interval{Start: 0, End: 3600_000}, segment.Metadata{QueryGranularity: granularity.Hour},
		[]int64{0, 0, 0, 0},
		map[string]*column.DictionaryColumn{"host": hostCol},
		map[string]*column.NumericColumn{"count": countCol},
		nil)
}

func descriptorFor(seg *segment.Segment) segment.Descriptor {
	return segment.Descriptor{Handle: segment.NewHandle(seg)}
}

func TestPerSegmentRunnerGroupsByDimensionAndSumsMetric(t *testing.T) {
	seg := buildEventsSegment(1)
	q := &Query{
		Kind:       GroupBy,
		Intervals:  []segment.Interval{{Start: 0, End: 3600_000}},
		Granularity: granularity.Hour,
		Dimensions: []DimensionSpec{Plain("host", "host")},
		Aggregators: []AggregatorSpec{{Name: "s", Factory: incindex.LongSumFactory{FactoryName: "s", Field: "count"}}},
		Context:    qcontext.New(),
	}
	seq, err := perSegmentRunner(context.Background(), q, seg)
	require.NoError(t, err)
	rows, err := Drain(seq)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byHost := map[string]int64{}
	for _, r := range rows {
		byHost[r["host"].(string)] = r["s"].(int64)
	}
	assert.Equal(t, int64(3), byHost["a"]) // 1+2
	assert.Equal(t, int64(7), byHost["b"]) // 3+4
}

func TestRunPerSegmentAndMergeGroupByAcrossTwoSegments(t *testing.T) {
	segA := buildEventsSegment(1)
	segB := buildEventsSegment(2)
	q := &Query{
		Kind:       GroupBy,
		Intervals:  []segment.Interval{{Start: 0, End: 3600_000}},
		Granularity: granularity.Hour,
		Dimensions: []DimensionSpec{Plain("host", "host")},
		Aggregators: []AggregatorSpec{{Name: "s", Factory: incindex.LongSumFactory{FactoryName: "s", Field: "count"}}},
		Context:    qcontext.New(),
	}
	parts, err := RunPerSegment(context.Background(), q, []segment.Descriptor{descriptorFor(segA), descriptorFor(segB)})
	require.NoError(t, err)
	require.Len(t, parts, 2)

	toolchest, ok := ToolchestFor(GroupBy)
	require.True(t, ok)
	merged, err := toolchest.MergeResults(q, parts)
	require.NoError(t, err)
	rows, err := Drain(merged)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byHost := map[string]int64{}
	for _, r := range rows {
		byHost[r["host"].(string)] = r["s"].(int64)
	}
	assert.Equal(t, int64(6), byHost["a"]) // (1+2)*2 segments
	assert.Equal(t, int64(14), byHost["b"]) // (3+4)*2 segments
}

func TestMergeTimeseriesIgnoresDimensionsAndOrdersByTime(t *testing.T) {
	seg := buildEventsSegment(1)
	q := &Query{
		Kind:       Timeseries,
		Intervals:  []segment.Interval{{Start: 0, End: 3600_000}},
		Granularity: granularity.Hour,
		Aggregators: []AggregatorSpec{{Name: "s", Factory: incindex.LongSumFactory{FactoryName: "s", Field: "count"}}},
		Context:    qcontext.New(),
	}
	parts, err := RunPerSegment(context.Background(), q, []segment.Descriptor{descriptorFor(seg)})
	require.NoError(t, err)

	toolchest, ok := ToolchestFor(Timeseries)
	require.True(t, ok)
	merged, err := toolchest.MergeResults(q, parts)
	require.NoError(t, err)
	rows, err := Drain(merged)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(10), rows[0]["s"]) // 1+2+3+4
}

func TestApplyFinalizeSkippedWhenBySegment(t *testing.T) {
	q := &Query{Context: qcontext.New()}
	q.Context.SetBySegment(true)
	q.Aggregators = []AggregatorSpec{{Name: "s", Factory: incindex.LongSumFactory{FactoryName: "s", Field: "count"}}}
	seq := applyFinalize(q, FromSlice([]Row{{"s": int64(5)}}))
	rows, err := Drain(seq)
	require.NoError(t, err)
	assert.Equal(t, int64(5), rows[0]["s"])
}

func TestApplyPostAggregatorsSeesEarlierOutputs(t *testing.T) {
	q := &Query{
		PostAggregators: []PostAggregatorSpec{
			{Name: "doubled", Eval: func(r Row) interface{} { return r["s"].(int64) * 2 }},
			{Name: "tripleDoubled", Eval: func(r Row) interface{} { return r["doubled"].(int64) * 3 }},
		},
	}
	seq := applyPostAggregators(q, FromSlice([]Row{{"s": int64(5)}}))
	rows, err := Drain(seq)
	require.NoError(t, err)
	assert.Equal(t, int64(10), rows[0]["doubled"])
	assert.Equal(t, int64(30), rows[0]["tripleDoubled"])
}
