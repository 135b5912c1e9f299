package query

import (
	"github.com/segmentdb/qengine/filter"
	"github.com/segmentdb/qengine/qcontext"
	"github.com/segmentdb/qengine/qerrors"
)

func cloneContext(c qcontext.Context) qcontext.Context {
	out := make(qcontext.Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// rewriteJoin expands a Join query's JoinElements into a UnionAll of
// the left side plus one sub-query per right side, scanned
// independently, and attaches a JoinPostProcessor via
// SetPostProcessing so mergeUnionAll performs the actual hash join
// once every side's Sequence is in hand (§4.5 "Query rewriting...
// Join", §8 Scenario 5: an inner join's row count must equal the
// number of matching key pairs, not the concatenation of both sides).
// This engine does not implement distributed hash/merge join execution
// strategy (§1 Non-goals); the join itself runs single-threaded in the
// merge stage over already-materialized sides.
func rewriteJoin(q *Query) (*Query, error) {
	if len(q.JoinElements) == 0 {
		return nil, qerrors.E(qerrors.InvalidQuery, "join query has no join elements")
	}
	rewritten := *q
	rewritten.Kind = UnionAll
	rewritten.SubQueries = make([]*Query, 0, len(q.JoinElements)+1)
	base := &Query{Kind: Select, DataSource: q.DataSource, Intervals: q.Intervals, Filter: q.Filter, Context: q.Context, Metrics: q.Metrics}
	rewritten.SubQueries = append(rewritten.SubQueries, base)
	for _, je := range q.JoinElements {
		rewritten.SubQueries = append(rewritten.SubQueries, &Query{
			Kind:       Select,
			DataSource: DataSource{Table: je.RightAlias},
			Intervals:  q.Intervals,
			Context:    q.Context,
		})
	}
	ctx := cloneContext(q.Context)
	ctx.SetPostProcessing(&JoinPostProcessor{Elements: q.JoinElements})
	rewritten.Context = ctx
	return &rewritten, nil
}

// rewriteClassify expands a Classify query into a UnionAll of its
// Classifier sub-query and the base data query, plus a
// ClassifyPostProcessor (stashed in Context) that tags each data row
// with the classifier's verdict under TagColumn (§4.5 "Query
// rewriting... Classify"). Actual classifier scoring is out of scope
// (§1 Non-goals "machine-learning tag assignment internals"); the
// post-processor only consumes whatever rows the Classifier sub-query
// already produced and correlates them to the data rows by their
// shared dimensions, or broadcasts a single verdict when none match.
func rewriteClassify(q *Query) (*Query, error) {
	if q.Classifier == nil {
		return nil, qerrors.E(qerrors.InvalidQuery, "classify query has no classifier sub-query")
	}
	rewritten := *q
	rewritten.Kind = UnionAll
	base := &Query{
		Kind:       Select,
		DataSource: q.DataSource,
		Intervals:  q.Intervals,
		Filter:     q.Filter,
		Context:    q.Context,
		Metrics:    q.Metrics,
	}
	rewritten.SubQueries = []*Query{q.Classifier, base}

	ctx := cloneContext(q.Context)
	ctx.SetPostProcessing(&ClassifyPostProcessor{
		TagColumn: q.TagColumn,
		MatchOn:   sharedDimensions(q.Classifier.Dimensions, q.Dimensions),
	})
	rewritten.Context = ctx
	return &rewritten, nil
}

func sharedDimensions(a, b []DimensionSpec) []string {
	bNames := make(map[string]bool, len(b))
	for _, d := range b {
		bNames[d.OutputName] = true
	}
	var shared []string
	for _, d := range a {
		if bNames[d.OutputName] {
			shared = append(shared, d.OutputName)
		}
	}
	return shared
}

// rewritePartitionedGroupBy splits a GroupBy query whose context
// requests GroupByMergeParallelism > 1 into that many sub-queries, each
// restricted by an added range filter to a disjoint slice of the
// partitioning dimension's (first declared dimension's) value space, so
// the final combining merge recombines disjoint row subsets instead of
// reprocessing every row N times (§4.5 "Partitioned group-by": "splits
// aggregation across N independent merge buffers partitioned by
// dimension hash, recombined at the end"). A query with no dimensions
// has no key space to partition by -- collapsing to one group either
// way -- so it is left unsplit.
func rewritePartitionedGroupBy(q *Query) (*Query, error) {
	n := q.Context.GroupByMergeParallelism()
	if len(q.Dimensions) == 0 {
		return q, nil
	}
	partitionDim := q.Dimensions[0].OutputName

	rewritten := *q
	rewritten.SubQueries = make([]*Query, 0, n)
	for i := 0; i < n; i++ {
		sub := *q
		subCtx := cloneContext(q.Context)
		subCtx.SetGroupByMergeParallelism(1)
		sub.Context = subCtx

		lower, upper := partitionBounds(i, n)
		sub.PartitionRange = &DimRange{Dimension: partitionDim, Lower: lower, Upper: upper}
		rangeFilter := partitionRangeFilter(partitionDim, lower, upper)
		if q.Filter != nil {
			sub.Filter = filter.And(q.Filter, rangeFilter)
		} else {
			sub.Filter = rangeFilter
		}

		rewritten.SubQueries = append(rewritten.SubQueries, &sub)
	}
	return &rewritten, nil
}

// partitionBounds splits the byte-value key space into n equal,
// adjoining bands [lower, upper), the first band starting at the empty
// string and the last band unbounded above so every value -- including
// "" and ones sorting past the nominal byte range -- lands in exactly
// one partition.
func partitionBounds(i, n int) (lower, upper string) {
	step := 256 / n
	if step == 0 {
		step = 1
	}
	lowerByte := i * step
	if lowerByte > 255 {
		lowerByte = 255
	}
	lower = string([]byte{byte(lowerByte)})
	if i == 0 {
		lower = ""
	}
	if i == n-1 {
		return lower, ""
	}
	upperByte := (i + 1) * step
	if upperByte > 255 {
		upperByte = 255
	}
	return lower, string([]byte{byte(upperByte)})
}

func partitionRangeFilter(dim, lower, upper string) *filter.Filter {
	f := &filter.Filter{Kind: filter.KindBound, Dimension: dim, Lower: lower, LowerStrict: false}
	if upper == "" {
		f.UpperUnbounded = true
	} else {
		f.Upper = upper
		f.UpperStrict = true
	}
	return f
}
