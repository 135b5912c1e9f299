package query

import (
	"context"
	"strings"

	"github.com/segmentdb/qengine/granularity"
	"github.com/segmentdb/qengine/incindex"
	"github.com/segmentdb/qengine/qerrors"
	"github.com/segmentdb/qengine/segment"
)

// groupKey identifies one output row within a single segment's partial
// result: the bucket start plus the ordered tuple of extracted
// dimension values (empty for ungrouped kinds, collapsing every row of
// a bucket into one group).
type groupKey struct {
	bucket int64
	dims   string
}

func makeGroupKey(bucket int64, dimValues []string) groupKey {
	return groupKey{bucket: bucket, dims: strings.Join(dimValues, "\x00")}
}

// perSegmentState is the mutable per-group accumulator a perSegmentRunner
// builds while walking cursors; one incindex.Aggregator per AggregatorSpec,
// per group, mirroring the heap-resident shape §3 describes for the
// incremental index itself.
type perSegmentState struct {
	bucket    int64
	dimValues []string
	aggs      []incindex.Aggregator
}

// perSegmentRunner walks every cursor MakeCursors produces for q against
// seg and returns one Row per (bucket, dimension-tuple) group, with each
// aggregator's Name holding its intermediate (not yet finalized) value
// (§4.5 "per-segment runner" stage, §4.2 StorageAdapter.MakeCursors
// contract). The returned Sequence is already fully materialized: cursors
// are valid only inside the caller's WithAcquired scope, so rows must be
// copied out of segment-owned memory before the handle is released.
func perSegmentRunner(ctx context.Context, q *Query, seg *segment.Segment) (Sequence, error) {
	g := q.Granularity
	if len(q.Dimensions) == 0 && g == granularity.None {
		g = granularity.All
	}

	order := make([]groupKey, 0)
	states := make(map[groupKey]*perSegmentState)

	for _, interval := range q.Intervals {
		if ctx.Err() != nil {
			return nil, qerrors.E(qerrors.Interrupted, ctx.Err())
		}
		cursors, err := seg.MakeCursors(q.Filter, interval, g, q.Descending)
		if err != nil {
			return nil, err
		}
		for _, cur := range cursors {
			for !cur.IsDone() {
				dimValues := make([]string, len(q.Dimensions))
				for i, d := range q.Dimensions {
					dimValues[i] = d.Extract(cur, cur)
				}
				key := makeGroupKey(cur.BucketStart(), dimValues)
				st, ok := states[key]
				if !ok {
					st = &perSegmentState{bucket: cur.BucketStart(), dimValues: dimValues, aggs: make([]incindex.Aggregator, len(q.Aggregators))}
					for i, a := range q.Aggregators {
						st.aggs[i] = a.Factory.New()
					}
					states[key] = st
					order = append(order, key)
				}
				for i, a := range q.Aggregators {
					v, ok := cursorFieldValue(cur, a.Factory.FieldName())
					if ok {
						st.aggs[i].Aggregate(v)
					}
				}
				cur.Advance()
			}
			cur.Close()
		}
	}

	rows := make([]Row, 0, len(order))
	for _, key := range order {
		st := states[key]
		r := make(Row, len(q.Dimensions)+len(q.Aggregators)+1)
		r["__time"] = st.bucket
		for i, d := range q.Dimensions {
			r[d.OutputName] = st.dimValues[i]
		}
		for i, a := range q.Aggregators {
			r[a.Name] = st.aggs[i].Get()
		}
		rows = append(rows, r)
	}
	return FromSlice(rows), nil
}

// cursorFieldValue reads an aggregator's input field off the cursor's
// current row, trying long then double selectors since an
// incindex.Factory only advertises InputType as a string hint, not a
// typed accessor (§3's aggregator/column pairing is by convention, not
// static typing, mirroring the teacher's own dynamic fieldio value
// dispatch).
func cursorFieldValue(cur *segment.Cursor, field string) (interface{}, bool) {
	if field == "" {
		return struct{}{}, true // count-style aggregators ignore the value
	}
	if sel, ok := cur.LongMetricSelector(field); ok {
		return sel.GetLong(), true
	}
	if sel, ok := cur.DoubleMetricSelector(field); ok {
		return sel.GetDouble(), true
	}
	return nil, false
}

// RunPerSegment is the exported entry point a broker's execution driver
// calls to run q against a set of segment descriptors (§4.2 "Reference-
// counting runner", §4.5 "per-segment runner" stage).
func RunPerSegment(ctx context.Context, q *Query, descs []segment.Descriptor) ([]Sequence, error) {
	return referenceCountingRunner(ctx, q, descs)
}

// referenceCountingRunner fans q out across descs with RunAll (§4.2
// "Reference-counting runner"), collecting each segment's perSegmentRunner
// result under a mutex since PerSegmentFunc reports only an error, not a
// value.
func referenceCountingRunner(ctx context.Context, q *Query, descs []segment.Descriptor) ([]Sequence, error) {
	parallelism := q.Context.Parallelism()
	results := make([]Sequence, len(descs))
	err := segment.RunAll(ctx, descs, parallelism, func(ctx context.Context, seg *segment.Segment) error {
		for i, d := range descs {
			if d.Handle.Seg == seg {
				seq, err := perSegmentRunner(ctx, q, seg)
				if err != nil {
					return err
				}
				results[i] = WithBaggage(seq, Row{"__segmentId": seg.ID.String()})
				return nil
			}
		}
		return qerrors.E(qerrors.Internal, "referenceCountingRunner: descriptor not found for segment "+seg.ID.String())
	})
	if err != nil {
		return nil, err
	}
	out := make([]Sequence, 0, len(results))
	for _, s := range results {
		if s != nil {
			out = append(out, s)
		}
	}
	return out, nil
}
