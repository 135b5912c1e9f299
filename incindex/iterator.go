package incindex

import "sort"

// Fact is one output row of a sealed IncrementalIndex's iteration: the
// bucketed timestamp, each dimension's sorted-dictionary ranks (not its
// insertion-order ids -- see Dictionary.SortedValues), and the final
// aggregator values in factory order (§4.3 "Iteration contract").
type Fact struct {
	TimestampMillis int64
	DimRanks        [][]int32
	Values          []interface{}
}

// Iterate walks a sealed index's facts in ascending (timestamp,
// lexicographic dim-rank) order, the order column construction expects
// (§3, §4.3). It panics if the index has not been Sealed: a column
// reader needs the dictionary ranks column construction commits to be
// final, not a still-growing prefix.
func (idx *IncrementalIndex) Iterate() []Fact {
	if !idx.isSealed() {
		panic("incindex: Iterate called before Seal")
	}
	return idx.snapshot()
}

// IterateSnapshot walks the index's current facts the same way Iterate
// does, but without requiring Seal: the point-in-time read path for
// sub-second query visibility into an index still open for writes (§2
// item 3, §4.3 "iteration may run concurrently with inserts"). A fact
// observed here always reflects a mutex-consistent aggregate state
// (factRow guards its own aggregator reads independently of the facts
// map), just not necessarily the very latest Add a concurrent writer
// has made; a key added after the snapshot started may or may not
// appear.
func (idx *IncrementalIndex) IterateSnapshot() []Fact {
	return idx.snapshot()
}

func (idx *IncrementalIndex) snapshot() []Fact {
	// Collect keys before taking ranks, so every id a collected key holds
	// is already in its dictionary when the rank map is built.
	var keys []TimeAndDims
	idx.keys.Range(func(_, v interface{}) bool {
		keys = append(keys, v.(TimeAndDims))
		return true
	})

	rankOf := make([][]int32, len(idx.dimNames))
	idx.dictsMu.Lock()
	for i, dim := range idx.dimNames {
		if d, ok := idx.dicts[dim]; ok {
			_, ranks := d.SortedValues()
			rankOf[i] = ranks
		}
	}
	idx.dictsMu.Unlock()

	facts := make([]Fact, len(keys))
	for i, k := range keys {
		ranks := make([][]int32, len(k.DimIDs))
		for d, ids := range k.DimIDs {
			if len(ids) == 0 {
				continue
			}
			remapped := make([]int32, len(ids))
			for j, id := range ids {
				if rankOf[d] != nil {
					remapped[j] = rankOf[d][id]
				} else {
					remapped[j] = id
				}
			}
			sort.Slice(remapped, func(a, b int) bool { return remapped[a] < remapped[b] })
			ranks[d] = remapped
		}

		row, _ := idx.facts.Load(k.mapKey())
		fr := row.(*factRow)
		fr.mu.Lock()
		values := make([]interface{}, len(fr.aggs))
		for j, a := range fr.aggs {
			values[j] = a.Get()
		}
		fr.mu.Unlock()

		facts[i] = Fact{TimestampMillis: k.BucketedTimestamp, DimRanks: ranks, Values: values}
	}

	sort.Slice(facts, func(a, b int) bool {
		return compareFacts(facts[a], facts[b]) < 0
	})
	return facts
}

func compareFacts(a, b Fact) int {
	if a.TimestampMillis != b.TimestampMillis {
		if a.TimestampMillis < b.TimestampMillis {
			return -1
		}
		return 1
	}
	n := len(a.DimRanks)
	if len(b.DimRanks) < n {
		n = len(b.DimRanks)
	}
	for i := 0; i < n; i++ {
		if c := compareInt32s(a.DimRanks[i], b.DimRanks[i]); c != 0 {
			return c
		}
	}
	if len(a.DimRanks) != len(b.DimRanks) {
		if len(a.DimRanks) < len(b.DimRanks) {
			return -1
		}
		return 1
	}
	return 0
}
