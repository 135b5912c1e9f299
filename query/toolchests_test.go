package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolchestForEveryKindIsRegistered(t *testing.T) {
	kinds := []Kind{Timeseries, TopN, GroupBy, Select, Stream, Search, Scan, SegmentMetadata, UnionAll, Join, Classify, KMeansTag}
	for _, k := range kinds {
		_, ok := ToolchestFor(k)
		assert.True(t, ok, "kind %v has no registered toolchest", k)
	}
}

func TestGroupByRowSchemaListsTimeThenDimsThenAggregators(t *testing.T) {
	toolchest, ok := ToolchestFor(GroupBy)
	require.True(t, ok)
	q := &Query{
		Dimensions:  []DimensionSpec{Plain("host", "host")},
		Aggregators: []AggregatorSpec{{Name: "s"}},
	}
	assert.Equal(t, []string{"__time", "host", "s"}, toolchest.RowSchema(q))
}
