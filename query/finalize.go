package query

import "github.com/segmentdb/qengine/incindex"

// applyFinalize runs each aggregator's Finalize over the row in
// declared order, replacing the raw intermediate value with its
// finalized one (§4.5 "Finalize semantics": "an aggregator's finalized
// value may differ from its intermediate value... Finalize must be
// idempotent: applying it twice yields the same result as once").
// Skipped entirely when the context disables finalize or requests
// by-segment results (§6: "bySegment... disables finalization").
func applyFinalize(q *Query, seq Sequence) Sequence {
	if !q.Context.Finalize() || q.Context.BySegment() || len(q.Aggregators) == 0 {
		return seq
	}
	return Map(seq, func(r Row) Row {
		for _, a := range q.Aggregators {
			v, ok := r[a.Name]
			if !ok {
				continue
			}
			r[a.Name] = finalizeValue(a.Factory, v)
		}
		return r
	})
}

// finalizeValue applies a Factory's Finalizer if it has one (§8
// "Finalize must be idempotent"); most factories here (sum/count/min/max)
// have no variable-size intermediate representation and so don't
// implement Finalizer, in which case the intermediate value already is
// the user-visible one.
func finalizeValue(f incindex.Factory, v interface{}) interface{} {
	if fz, ok := f.(incindex.Finalizer); ok {
		return fz.Finalize(v)
	}
	return v
}

// applyPostAggregators evaluates each PostAggregatorSpec in declared
// order over the mutable row, writing its output back under its own
// name so later post-aggregators can reference earlier ones (§4.5
// "Post-aggregators: evaluated in declared order over the mutable
// result row").
func applyPostAggregators(q *Query, seq Sequence) Sequence {
	if len(q.PostAggregators) == 0 {
		return seq
	}
	return Map(seq, func(r Row) Row {
		for _, pa := range q.PostAggregators {
			r[pa.Name] = pa.Eval(r)
		}
		return r
	})
}

// applyFinalQueryDecoration is the outermost stage: classify/tag
// post-processors attached via qcontext.PostProcessing (§4.5 "Query
// rewriting" installs a PostProcessing payload the final decoration
// stage consumes). Kinds with no rewrite-installed post-processor pass
// rows through unchanged.
func applyFinalQueryDecoration(q *Query, seq Sequence) Sequence {
	pp, ok := q.Context.PostProcessing().(func(Row) Row)
	if !ok || pp == nil {
		return seq
	}
	return Map(seq, pp)
}
