package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segmentdb/qengine/filter"
	"github.com/segmentdb/qengine/qcontext"
	"github.com/segmentdb/qengine/qerrors"
)

func TestRewriteJoinRequiresJoinElements(t *testing.T) {
	q := &Query{Kind: Join}
	_, err := q.Rewrite()
	require.Error(t, err)
	assert.True(t, qerrors.Is(err, qerrors.InvalidQuery))
}

func TestRewriteJoinBuildsOneSubQueryPerElementAndAttachesPostProcessor(t *testing.T) {
	q := &Query{
		Kind:       Join,
		DataSource: DataSource{Table: "left"},
		Context:    qcontext.New(),
		JoinElements: []JoinElement{
			{RightAlias: "right1", LeftJoinColumns: []string{"id"}, RightJoinColumns: []string{"id"}},
			{RightAlias: "right2", LeftJoinColumns: []string{"id"}, RightJoinColumns: []string{"id"}},
		},
	}
	rewritten, err := q.Rewrite()
	require.NoError(t, err)
	assert.Equal(t, UnionAll, rewritten.Kind)
	require.Len(t, rewritten.SubQueries, 3)
	assert.Equal(t, "left", rewritten.SubQueries[0].DataSource.Table)
	assert.Equal(t, "right1", rewritten.SubQueries[1].DataSource.Table)
	assert.Equal(t, "right2", rewritten.SubQueries[2].DataSource.Table)

	pp, ok := rewritten.Context.PostProcessing().(*JoinPostProcessor)
	require.True(t, ok)
	assert.Equal(t, q.JoinElements, pp.Elements)
}

func TestRewriteClassifyRequiresClassifier(t *testing.T) {
	q := &Query{Kind: Classify}
	_, err := q.Rewrite()
	require.Error(t, err)
	assert.True(t, qerrors.Is(err, qerrors.InvalidQuery))
}

func TestRewriteClassifyAttachesClassifierSubQueryAndPostProcessor(t *testing.T) {
	classifier := &Query{Kind: Select, DataSource: DataSource{Table: "model"}}
	q := &Query{
		Kind:       Classify,
		DataSource: DataSource{Table: "data"},
		Context:    qcontext.New(),
		Classifier: classifier,
		TagColumn:  "tag",
	}
	rewritten, err := q.Rewrite()
	require.NoError(t, err)
	assert.Equal(t, UnionAll, rewritten.Kind)
	require.Len(t, rewritten.SubQueries, 2)
	assert.Same(t, classifier, rewritten.SubQueries[0])
	assert.Equal(t, "data", rewritten.SubQueries[1].DataSource.Table)

	pp, ok := rewritten.Context.PostProcessing().(*ClassifyPostProcessor)
	require.True(t, ok)
	assert.Equal(t, "tag", pp.TagColumn)
}

func TestRewritePartitionedGroupBySplitsIntoDisjointRanges(t *testing.T) {
	ctx := qcontext.New()
	ctx.SetGroupByMergeParallelism(3)
	q := &Query{
		Kind:       GroupBy,
		Context:    ctx,
		Dimensions: []DimensionSpec{Plain("host", "host")},
	}
	rewritten, err := q.Rewrite()
	require.NoError(t, err)
	require.Len(t, rewritten.SubQueries, 3)

	var ranges []*DimRange
	for _, sub := range rewritten.SubQueries {
		assert.Equal(t, 1, sub.Context.GroupByMergeParallelism())
		require.NotNil(t, sub.PartitionRange)
		assert.Equal(t, "host", sub.PartitionRange.Dimension)
		require.NotNil(t, sub.Filter)
		ranges = append(ranges, sub.PartitionRange)
	}

	// Each partition's lower bound strictly increases, and only the last
	// partition is unbounded above -- together the ranges are disjoint
	// and cover the whole key space without overlap.
	for i := 1; i < len(ranges); i++ {
		assert.True(t, ranges[i].Lower > ranges[i-1].Lower)
		assert.Equal(t, ranges[i-1].Upper, ranges[i].Lower)
	}
	assert.Equal(t, "", ranges[len(ranges)-1].Upper)
}

func TestRewritePartitionedGroupByFilterIsBoundOnPartitionDimension(t *testing.T) {
	ctx := qcontext.New()
	ctx.SetGroupByMergeParallelism(2)
	q := &Query{
		Kind:       GroupBy,
		Context:    ctx,
		Filter:     filter.Selector("region", "us"),
		Dimensions: []DimensionSpec{Plain("host", "host")},
	}
	rewritten, err := q.Rewrite()
	require.NoError(t, err)
	require.Len(t, rewritten.SubQueries, 2)
	for _, sub := range rewritten.SubQueries {
		require.Equal(t, filter.KindAnd, sub.Filter.Kind)
		require.Len(t, sub.Filter.Children, 2)
		assert.Equal(t, filter.KindBound, sub.Filter.Children[1].Kind)
		assert.Equal(t, "host", sub.Filter.Children[1].Dimension)
	}
}

func TestRewritePartitionedGroupByWithoutDimensionsIsIdentity(t *testing.T) {
	ctx := qcontext.New()
	ctx.SetGroupByMergeParallelism(3)
	q := &Query{Kind: GroupBy, Context: ctx}
	rewritten, err := q.Rewrite()
	require.NoError(t, err)
	assert.Same(t, q, rewritten)
}

func TestRewriteGroupByWithoutPartitioningIsIdentity(t *testing.T) {
	q := &Query{Kind: GroupBy, Context: qcontext.New()}
	rewritten, err := q.Rewrite()
	require.NoError(t, err)
	assert.Same(t, q, rewritten)
}
