package filter

import "github.com/segmentdb/qengine/column"

// Exactness is returned alongside a bitmap to record whether it exactly
// matches the predicate or merely over-approximates it (§4.4's
// "bitmap is exact" flag).
type Exactness int

const (
	Inexact Exactness = iota
	Exact
)

// ColumnSource is what a segment (package segment) exposes to the
// planner: dictionary lookups, bitmaps, and secondary indexes, addressed
// by column name. It is the "column-capability lookup" of §4's C4
// description, kept as a narrow interface so filter has no import-time
// dependency on package segment (avoiding an import cycle, since
// segment depends on filter to build cursors).
type ColumnSource interface {
	// Capabilities returns the capabilities of a column, or ok=false if
	// the column does not exist in this segment (§4.4 edge case: missing
	// column).
	Capabilities(column string) (c column.Capabilities, ok bool)

	// DictionaryBitmap returns the bitmap index result for a
	// dictionary-encoded column (point/set-membership lookups).
	DictionaryBitmap(column string, values []string) *Bitmap

	// DictionaryBound returns the bitmap index result for a lexicographic
	// range over a dictionary-encoded column's sorted dictionary.
	DictionaryBound(column string, lower, upper string, lowerStrict, upperStrict, lowerUnbounded, upperUnbounded bool) *Bitmap

	// Histogram returns the numeric histogram index for column, or nil.
	Histogram(column string) *column.HistogramIndex

	// TextIndex returns the inverted text index for column, or nil.
	TextIndex(column string) *column.TextIndex

	// MatchDictionary scans column's dictionary applying match against
	// every value and returns the union of bitmaps whose value matches;
	// used by the generic matcher fallback (§4.4).
	MatchDictionary(column string, match func(value string) bool) *Bitmap

	// NumRows is the row count of the segment, used to answer "missing
	// column, predicate accepts null" with the full-range bitmap.
	NumRows() int
}

// Bitmap is a local alias so filter's public API doesn't force every
// caller to import column directly for this one type.
type Bitmap = column.Bitmap

// supportsBitmap reports whether conjunct can be answered by a secondary
// index (§4.4 step 2). The answer need not be exact: a numeric bound over
// a histogram qualifies, and ToBitmap then reports Inexact so the caller
// re-verifies those rows with the residual matcher.
func supportsBitmap(f *Filter, src ColumnSource) bool {
	switch f.Kind {
	case KindAlwaysTrue, KindAlwaysFalse:
		return true
	case KindSelector, KindIn:
		caps, ok := src.Capabilities(f.Dimension)
		return ok && caps.DictionaryEncoded
	case KindNotIn:
		// A NotIn leaf is only bitmap-exact if we can compute a complement
		// cheaply; we always can (Complement over NumRows), so treat it as
		// supported whenever the column is dictionary-encoded.
		caps, ok := src.Capabilities(f.Dimension)
		return ok && caps.DictionaryEncoded
	case KindBound:
		caps, ok := src.Capabilities(f.Dimension)
		if !ok {
			return false
		}
		if f.Numeric {
			return caps.HasMetricHistogram
		}
		return caps.DictionaryEncoded
	case KindOr, KindAnd:
		for _, c := range f.Children {
			if !supportsBitmap(c, src) {
				return false
			}
		}
		return true
	case KindExpression:
		// A predicate touching more than one column cannot be answered by
		// a single-column index (§4.4 edge case). Even a single-column
		// expression never qualifies: Eval is an opaque predicate lambda,
		// not one of the closed Predicate shapes a secondary index can
		// answer (see Filter.toPredicate), so it always routes to the
		// residual row-scan regardless of what indexes the column carries.
		return false
	default:
		return false
	}
}
