// Package query implements C5: the query engine. Queries are closed
// tagged variants dispatched through a per-kind Toolchest; execution
// runs the outside-in stack of §4.5 (decoration -> finalize ->
// post-merge decoration -> merge -> pre-merge decoration -> per-segment
// runner -> reference-counting runner) over the cursors package segment
// manufactures.
package query

import (
	"github.com/segmentdb/qengine/filter"
	"github.com/segmentdb/qengine/granularity"
	"github.com/segmentdb/qengine/incindex"
	"github.com/segmentdb/qengine/qcontext"
	"github.com/segmentdb/qengine/segment"
)

// Kind discriminates the twelve query shapes of §3.
type Kind int

const (
	Timeseries Kind = iota
	TopN
	GroupBy
	Select
	Stream
	Search
	Scan
	SegmentMetadata
	UnionAll
	Join
	Classify
	KMeansTag
)

func (k Kind) String() string {
	switch k {
	case Timeseries:
		return "timeseries"
	case TopN:
		return "topN"
	case GroupBy:
		return "groupBy"
	case Select:
		return "select"
	case Stream:
		return "stream"
	case Search:
		return "search"
	case Scan:
		return "scan"
	case SegmentMetadata:
		return "segmentMetadata"
	case UnionAll:
		return "union-all"
	case Join:
		return "join"
	case Classify:
		return "classify"
	case KMeansTag:
		return "kmeans-tag"
	default:
		return "unknown"
	}
}

// DataSource names what a query runs over: a single table, a named
// view, a literal sub-query, or a union of table names (§3 "data
// source (table name / view / sub-query / union)").
type DataSource struct {
	Table      string
	SubQuery   *Query
	UnionNames []string
}

// Query is the closed tagged variant of §3/§6. Only the fields
// relevant to Kind are populated; common fields apply to every kind.
type Query struct {
	Kind Kind

	DataSource DataSource
	Intervals  []segment.Interval
	Filter     *filter.Filter
	Context    qcontext.Context
	Descending bool

	// Aggregation-bearing kinds (timeseries/topN/groupBy). Virtual
	// columns are out of scope (§1 Non-goals), so no field for them
	// exists here.
	Granularity      granularity.Granularity
	Dimensions       []DimensionSpec
	Aggregators      []AggregatorSpec
	PostAggregators  []PostAggregatorSpec

	// TopN-only.
	TopNDimension DimensionSpec
	Threshold     int
	Metric        string // aggregator or post-aggregator name to rank by; "" means dimension-ordering

	// GroupBy-only.
	Having         *Having
	LimitSpec      *LimitSpec
	PartitionRange *DimRange // set by rewritePartitionedGroupBy on each sub-query

	// Select/Stream-only.
	Metrics    []string
	PagingSpec PagingSpec
	OrderBy    string // "ascending" or "descending" on __time

	// UnionAll/Join-only.
	SubQueries []*Query

	// Join-only.
	JoinElements []JoinElement
	NumPartition int
	ScannerLen   int
	Limit        int

	// Classify-only.
	Classifier *Query
	TagColumn  string
}

// PagingSpec is Select/Stream's resume token (§6 "pagingSpec").
type PagingSpec struct {
	PreviousOffsetPerSegment map[string]int
	Threshold                int
}

// JoinElement describes one side pairing in a (possibly multi-way)
// join (§4.5 "Join").
type JoinElement struct {
	JoinType        JoinType
	LeftAlias       string
	LeftJoinColumns []string
	RightAlias      string
	RightJoinColumns []string
	Expression      string
}

// DimRange is a half-open, lexicographically ordered slice of one
// dimension's value space, [Lower, Upper): Upper == "" means unbounded
// above. rewritePartitionedGroupBy hands each sub-query a disjoint
// DimRange so partitioned group-by sums disjoint row subsets instead of
// reprocessing the same rows N times (§4.5 "Partitioned group-by").
type DimRange struct {
	Dimension string
	Lower     string
	Upper     string
}

type JoinType int

const (
	InnerJoin JoinType = iota
	LeftOuterJoin
	RightOuterJoin
	FullOuterJoin
)

// AggregatorSpec names one aggregator in a query and wraps the
// incindex.Factory that actually runs it, so the query layer never
// reimplements sum/count/min/max (§3 "Aggregator is a pair of factory +
// running state").
type AggregatorSpec struct {
	Name    string
	Factory incindex.Factory
}

// PostAggregatorSpec is one named post-aggregation expression,
// evaluated in declared order over the mutable result row (§4.5
// "Post-aggregators").
type PostAggregatorSpec struct {
	Name string
	// Eval receives the current row (aggregator outputs, dimension
	// values, and any earlier post-aggregator outputs already written)
	// and returns this post-aggregator's value.
	Eval func(row Row) interface{}
}

// RewritingQuery is implemented by any Query shape the broker must
// rewrite before dispatch (§4.5 "Query rewriting"). Join, Classify, and
// a GroupBy requesting partitioned merge all implement it.
type RewritingQuery interface {
	Rewrite() (*Query, error)
}

func (q *Query) Rewrite() (*Query, error) {
	switch q.Kind {
	case Join:
		return rewriteJoin(q)
	case Classify:
		return rewriteClassify(q)
	case GroupBy:
		if q.Context.GroupByMergeParallelism() > 1 {
			return rewritePartitionedGroupBy(q)
		}
		return q, nil
	default:
		return q, nil
	}
}
