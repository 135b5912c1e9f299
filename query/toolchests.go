package query

// Concrete Toolchests for each Kind of §3, registered at package init so
// Query.Rewrite/execution callers can look one up by Kind alone.

type timeseriesToolchest struct{ baseToolchest }

func (timeseriesToolchest) RowSchema(q *Query) []string { return aggregatorSchema(q, "__time") }
func (timeseriesToolchest) MergeResults(q *Query, parts []Sequence) (Sequence, error) {
	return mergeTimeseries(q, parts)
}

type topNToolchest struct{ baseToolchest }

func (topNToolchest) RowSchema(q *Query) []string {
	return aggregatorSchema(q, "__time", q.TopNDimension.OutputName)
}
func (topNToolchest) MergeResults(q *Query, parts []Sequence) (Sequence, error) {
	return mergeTopN(q, parts)
}

type groupByToolchest struct{ baseToolchest }

func (groupByToolchest) RowSchema(q *Query) []string {
	names := []string{"__time"}
	for _, d := range q.Dimensions {
		names = append(names, d.OutputName)
	}
	return aggregatorSchema(q, names...)
}
func (groupByToolchest) MergeResults(q *Query, parts []Sequence) (Sequence, error) {
	return mergeGroupBy(q, parts)
}

// selectLikeToolchest covers select/stream/scan/search, which all share
// mergeSelect's concat-by-(time,segment) order (§3).
type selectLikeToolchest struct{ baseToolchest }

func (selectLikeToolchest) RowSchema(q *Query) []string {
	return append([]string{"__time"}, q.Metrics...)
}
func (selectLikeToolchest) MergeResults(q *Query, parts []Sequence) (Sequence, error) {
	return mergeSelect(q, parts)
}

type segmentMetadataToolchest struct{ baseToolchest }

func (segmentMetadataToolchest) RowSchema(*Query) []string { return []string{"segmentId", "interval", "numRows"} }
func (segmentMetadataToolchest) MergeResults(q *Query, parts []Sequence) (Sequence, error) {
	return mergeSelect(q, parts)
}

type unionAllToolchest struct{ baseToolchest }

func (unionAllToolchest) MergeResults(q *Query, parts []Sequence) (Sequence, error) {
	return mergeUnionAll(q, parts)
}

// joinToolchest and classifyToolchest never run MergeResults in
// practice: Query.Rewrite replaces a Join/Classify query's Kind with
// UnionAll (carrying a JoinPostProcessor/ClassifyPostProcessor) before
// execution reaches the merge stage, so unionAllToolchest.MergeResults
// (mergeUnionAll) is what actually runs the join/classify logic. These
// toolchests stay registered under Join/Classify only so RowSchema
// answers introspection callers (e.g. a /queryschema endpoint) that ask
// before rewriting; their MergeResults is unreachable post-rewrite and
// falls back to mergeSelect's (timestamp, segment-id) ordered merge.
type joinToolchest struct{ baseToolchest }

func (joinToolchest) MergeResults(q *Query, parts []Sequence) (Sequence, error) {
	return mergeSelect(q, parts)
}

type classifyToolchest struct{ baseToolchest }

func (classifyToolchest) RowSchema(q *Query) []string {
	return append([]string{"__time", q.TagColumn}, q.Metrics...)
}
func (classifyToolchest) MergeResults(q *Query, parts []Sequence) (Sequence, error) {
	return mergeSelect(q, parts)
}

// kMeansTagToolchest: clustering/tag-assignment is out of scope (§1
// Non-goals "machine-learning tag assignment internals"); this toolchest
// exists only so Kind dispatch stays total, and merges by passthrough.
type kMeansTagToolchest struct{ baseToolchest }

func (kMeansTagToolchest) MergeResults(q *Query, parts []Sequence) (Sequence, error) {
	return mergeSelect(q, parts)
}

func aggregatorSchema(q *Query, leading ...string) []string {
	names := append([]string{}, leading...)
	for _, a := range q.Aggregators {
		names = append(names, a.Name)
	}
	for _, pa := range q.PostAggregators {
		names = append(names, pa.Name)
	}
	return names
}

func init() {
	register(Timeseries, timeseriesToolchest{})
	register(TopN, topNToolchest{})
	register(GroupBy, groupByToolchest{})
	register(Select, selectLikeToolchest{})
	register(Stream, selectLikeToolchest{})
	register(Scan, selectLikeToolchest{})
	register(Search, selectLikeToolchest{})
	register(SegmentMetadata, segmentMetadataToolchest{})
	register(UnionAll, unionAllToolchest{})
	register(Join, joinToolchest{})
	register(Classify, classifyToolchest{})
	register(KMeansTag, kMeansTagToolchest{})
}
