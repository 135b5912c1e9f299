package query

// mergeUnionAll concatenates each sub-query's already-computed result
// in declared order (§3 "union-all :: ordered concatenation of N
// independent sub-query results, no cross-query merge"). The bounded-
// parallelism dispatch of those sub-queries (§6 "parallelism", "queue")
// happens in the broker's execution driver, upstream of this merge
// stage; by the time mergeUnionAll runs, parts already holds one
// Sequence per completed sub-query.
//
// A Join or Classify rewrite attaches a *JoinPostProcessor or
// *ClassifyPostProcessor via qcontext.SetPostProcessing before handing
// its query its UnionAll Kind (§4.5 "Query rewriting"); the union-all
// runner recognizes this and runs the real join/classify logic over
// parts instead of a plain concatenation.
func mergeUnionAll(q *Query, parts []Sequence) (Sequence, error) {
	switch pp := q.Context.PostProcessing().(type) {
	case *JoinPostProcessor:
		return runJoin(pp, parts)
	case *ClassifyPostProcessor:
		return runClassify(pp, parts)
	default:
		return Concat(parts...), nil
	}
}
