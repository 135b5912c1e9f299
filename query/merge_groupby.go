package query

import (
	"sync"

	"github.com/segmentdb/qengine/granularity"
	"github.com/segmentdb/qengine/incindex"
)

// combiningFieldFactory rebinds a combining factory's FieldName so
// IncrementalIndex.Add's row.Metrics[f.FieldName()] lookup finds a
// partial value keyed by the AggregatorSpec's own output name -- the
// key partial rows (already-aggregated per-segment results) carry
// their value under, not the raw input field name the first-pass
// aggregator read.
type combiningFieldFactory struct {
	incindex.Factory
	field string
}

func (f combiningFieldFactory) FieldName() string { return f.field }

// mergeGroupBy merges per-segment partial results through a shared
// incindex.IncrementalIndex in rollup mode, the same putIfAbsent +
// combine discipline the insert path uses (§5), so a capacity overflow
// here surfaces qerrors.CapacityExceeded to the caller exactly as it
// would on the insert path (§4.3 "Capacity accounting"). Each part is
// fed into the shared index from its own goroutine -- fanning workers
// into one shared writable index rather than draining them one at a
// time -- since the index's locking is already narrow enough (one
// mutex per dimension, one mutex per fact row) to make concurrent Adds
// safe (§4.5 step 4, §5).
func mergeGroupBy(q *Query, parts []Sequence) (Sequence, error) {
	dimNames := make([]string, len(q.Dimensions))
	for i, d := range q.Dimensions {
		dimNames[i] = d.OutputName
	}
	factories := make([]incindex.Factory, len(q.Aggregators))
	for i, a := range q.Aggregators {
		factories[i] = combiningFieldFactory{Factory: a.Factory.Combining(), field: a.Name}
	}

	// Rows arriving here already carry a correctly bucketed __time from
	// the per-segment stage (or an earlier merge pass); re-truncating
	// under q.Granularity would corrupt All-granularity buckets, whose
	// Truncate ignores the input timestamp and returns segmentStart
	// unconditionally, so the merge-stage index always truncates with
	// the true identity granularity.None instead.
	idx := incindex.NewIncrementalIndex(granularity.None, 0, dimNames, factories, true,
		q.Context.GroupByMaxRowsInMemory(), q.Context.GroupByMaxBytesInMemory())

	var wg sync.WaitGroup
	errs := make([]error, len(parts))
	wg.Add(len(parts))
	for i, part := range parts {
		go func(i int, part Sequence) {
			defer wg.Done()
			defer part.Close()
			for part.Scan() {
				if err := idx.Add(groupByInputRow(part.Value(), dimNames, q.Aggregators)); err != nil {
					errs[i] = err
					return
				}
			}
			errs[i] = part.Err()
		}(i, part)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	idx.Seal()

	rows := drainGroupByIndex(idx, dimNames, q.Aggregators)

	filtered := rows[:0]
	for _, r := range rows {
		if q.Having.Matches(r) {
			filtered = append(filtered, r)
		}
	}
	filtered = q.LimitSpec.Apply(filtered)
	return FromSlice(filtered), nil
}

func groupByInputRow(r Row, dimNames []string, aggs []AggregatorSpec) incindex.InputRow {
	in := incindex.InputRow{Metrics: make(map[string]interface{}, len(aggs))}
	if t, ok := r["__time"].(int64); ok {
		in.TimestampMillis = t
	}
	if len(dimNames) > 0 {
		in.Dims = make(map[string][]string, len(dimNames))
		for _, d := range dimNames {
			if v, ok := r[d]; ok {
				in.Dims[d] = []string{toStr(v)}
			}
		}
	}
	for _, a := range aggs {
		if v, ok := r[a.Name]; ok {
			in.Metrics[a.Name] = v
		}
	}
	return in
}

// drainGroupByIndex reads a sealed index's facts back into output rows,
// mapping each dimension's sorted rank back to its original string
// value (§4.3 "Iteration contract").
func drainGroupByIndex(idx *incindex.IncrementalIndex, dimNames []string, aggs []AggregatorSpec) []Row {
	sortedByDim := make([][]string, len(dimNames))
	for i, dim := range dimNames {
		sorted, _ := idx.Dictionary(dim).SortedValues()
		sortedByDim[i] = sorted
	}

	facts := idx.Iterate()
	rows := make([]Row, 0, len(facts))
	for _, fact := range facts {
		row := make(Row, len(dimNames)+len(aggs)+1)
		row["__time"] = fact.TimestampMillis
		for i, dim := range dimNames {
			if i >= len(fact.DimRanks) || len(fact.DimRanks[i]) == 0 {
				continue
			}
			rank := fact.DimRanks[i][0]
			if int(rank) < len(sortedByDim[i]) {
				row[dim] = sortedByDim[i][rank]
			}
		}
		for i, a := range aggs {
			if i < len(fact.Values) {
				row[a.Name] = fact.Values[i]
			}
		}
		rows = append(rows, row)
	}
	return rows
}
