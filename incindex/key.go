// Package incindex implements C3: the in-memory, lock-minimal
// incremental index that aggregates arriving rows by
// (truncated-timestamp, dimension-tuple). It supports rollup (equal keys
// collapse via combining aggregators) and non-rollup (every row keeps
// its own slot) modes. Facts are read back as Fact rows through Iterate
// (after Seal) or IterateSnapshot; there is no selector or cursor
// interface, so an index cannot be queried the way a segment is.
package incindex

import (
	"fmt"
	"strings"
)

// TimeAndDims is the insert-path key (§3): a bucketed timestamp plus a
// per-dimension dictionary id vector (int[][] since a dimension may be
// multi-valued). Two TimeAndDims are "equal" for rollup purposes iff
// CompareRollup returns 0; the non-rollup variant additionally threads a
// monotone sequence number so no two keys ever collapse.
type TimeAndDims struct {
	BucketedTimestamp int64
	DimIDs            [][]int32 // DimIDs[dimIndex] = sorted ids for that dimension on this row
	seq               uint64    // non-rollup tiebreaker; 0 and unused in rollup mode
}

// mapKey returns a comparable, hashable string encoding used as the
// concurrent map key (facts, below). Using a string key keeps the
// concurrent map generic over Go's built-in sync.Map-style structures
// without needing a custom hash-table; dictionary ids are assigned
// per-dimension under a narrow lock (see Dictionary), so this encoding
// is stable for the lifetime of the index.
func (k TimeAndDims) mapKey() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d", k.BucketedTimestamp)
	for _, ids := range k.DimIDs {
		sb.WriteByte('|')
		for i, id := range ids {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%d", id)
		}
	}
	if k.seq != 0 {
		fmt.Fprintf(&sb, "#%d", k.seq)
	}
	return sb.String()
}

// CompareRollup orders two keys by (timestamp, lexicographic dim-id
// order), ignoring seq -- the comparator rollup mode uses to decide
// whether two rows collapse (§3).
func CompareRollup(a, b TimeAndDims) int {
	if a.BucketedTimestamp != b.BucketedTimestamp {
		if a.BucketedTimestamp < b.BucketedTimestamp {
			return -1
		}
		return 1
	}
	n := len(a.DimIDs)
	if len(b.DimIDs) < n {
		n = len(b.DimIDs)
	}
	for i := 0; i < n; i++ {
		if c := compareInt32s(a.DimIDs[i], b.DimIDs[i]); c != 0 {
			return c
		}
	}
	if len(a.DimIDs) != len(b.DimIDs) {
		if len(a.DimIDs) < len(b.DimIDs) {
			return -1
		}
		return 1
	}
	return 0
}

func compareInt32s(a, b []int32) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return 0
}
