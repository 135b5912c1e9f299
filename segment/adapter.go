package segment

import (
	"strconv"

	"github.com/segmentdb/qengine/column"
	"github.com/segmentdb/qengine/filter"
	"github.com/segmentdb/qengine/granularity"
)

// --- filter.ColumnSource ---
//
// Segment implements filter.ColumnSource directly so the planner never
// needs a separate adapter type; this is the seam §4.4 describes as
// "resolver" and keeps filter free of any import on package segment.

func (s *Segment) DictionaryBitmap(col string, values []string) *filter.Bitmap {
	d, ok := s.dims[col]
	if !ok {
		return column.NewBitmap().Freeze()
	}
	bitmaps := make([]*column.Bitmap, 0, len(values))
	for _, v := range values {
		id := d.LookupID(v)
		if id < 0 {
			continue
		}
		bitmaps = append(bitmaps, d.GetBitmap(id))
	}
	return column.Union(bitmaps...)
}

func (s *Segment) DictionaryBound(col string, lower, upper string, lowerStrict, upperStrict, lowerUnbounded, upperUnbounded bool) *filter.Bitmap {
	d, ok := s.dims[col]
	if !ok {
		return column.NewBitmap().Freeze()
	}
	dict := d.GetDictionary()
	lo, hi := 0, len(dict)
	if !lowerUnbounded {
		lo = lowerBoundIndex(dict, lower, lowerStrict)
	}
	if !upperUnbounded {
		hi = upperBoundIndex(dict, upper, upperStrict)
	}
	var bitmaps []*column.Bitmap
	for id := lo; id < hi && id < len(dict); id++ {
		if id < 0 {
			continue
		}
		bitmaps = append(bitmaps, d.GetBitmap(id))
	}
	return column.Union(bitmaps...)
}

// lowerBoundIndex returns the first dictionary index whose value is >
// lower (strict) or >= lower (non-strict).
func lowerBoundIndex(dict []string, lower string, strict bool) int {
	lo, hi := 0, len(dict)
	for lo < hi {
		mid := (lo + hi) / 2
		var cond bool
		if strict {
			cond = dict[mid] <= lower
		} else {
			cond = dict[mid] < lower
		}
		if cond {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// upperBoundIndex returns the first dictionary index whose value is >=
// upper (strict, so upper itself is excluded) or > upper (non-strict,
// so upper itself is included).
func upperBoundIndex(dict []string, upper string, strict bool) int {
	lo, hi := 0, len(dict)
	for lo < hi {
		mid := (lo + hi) / 2
		var cond bool
		if strict {
			cond = dict[mid] < upper
		} else {
			cond = dict[mid] <= upper
		}
		if cond {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func (s *Segment) Histogram(col string) *column.HistogramIndex {
	m, ok := s.metrics[col]
	if !ok {
		return nil
	}
	return m.Histogram()
}

func (s *Segment) TextIndex(col string) *column.TextIndex {
	// Text indexes attach to complex columns in this implementation
	// (§3's "lucene-text-index" secondary index); no complex column here
	// carries one directly, so this is always nil until a complex column
	// type that wires a TextIndex is added.
	return nil
}

func (s *Segment) MatchDictionary(col string, match func(string) bool) *filter.Bitmap {
	d, ok := s.dims[col]
	if !ok {
		return column.NewBitmap().Freeze()
	}
	var bitmaps []*column.Bitmap
	for id, v := range d.GetDictionary() {
		if match(v) {
			bitmaps = append(bitmaps, d.GetBitmap(id))
		}
	}
	return column.Union(bitmaps...)
}

// NumRows satisfies filter.ColumnSource; Segment.NumRows in segment.go
// is the same method, defined there alongside the other StorageAdapter
// accessors.

// --- filter.RowContext, bound to one (segment, row) pair ---

type rowContext struct {
	seg *Segment
	row int
}

func (r rowContext) DimensionValues(dim string) []string {
	d, ok := r.seg.dims[dim]
	if !ok {
		return nil
	}
	if d.Capabilities().HasMultiValues {
		ids := d.GetMultiValueRow(r.row)
		values := make([]string, len(ids))
		for i, id := range ids {
			values[i] = d.LookupName(id)
		}
		return values
	}
	return []string{d.LookupName(d.GetSingleValueRow(r.row))}
}

func (r rowContext) NumericValue(col string) (float64, bool) {
	m, ok := r.seg.metrics[col]
	if !ok {
		return 0, false
	}
	return m.GetDoubleSingleValueRow(r.row), true
}

func (r rowContext) StringValue(col string) string {
	if d, ok := r.seg.dims[col]; ok {
		return d.LookupName(d.GetSingleValueRow(r.row))
	}
	if m, ok := r.seg.metrics[col]; ok {
		return fmtFloat(m.GetDoubleSingleValueRow(r.row))
	}
	return ""
}

// filterResidual adapts a *filter.Filter plus the segment it runs over
// into the residualMatcher Cursor needs (§4.2 step 5).
type filterResidual struct {
	f *filter.Filter
}

func (fr filterResidual) MatchesRow(s *Segment, row int) bool {
	if fr.f == nil {
		return true
	}
	return filter.EvaluateRow(fr.f, rowContext{seg: s, row: row})
}

// MakeCursors builds the lazy per-bucket cursor sequence of §4.2's
// StorageAdapter contract:
//  1. clip the requested interval to segment bounds
//  2. partition f into bitmap-part / residual-part via C4
//  3. evaluate bitmap-part against secondary indexes (full range if f
//     is nil)
//  4. wrap in a time-window-checking offset per bucket
//  5. build one Cursor per granularity bucket
func (s *Segment) MakeCursors(f *filter.Filter, interval Interval, g granularity.Granularity, descending bool) ([]*Cursor, error) {
	clipped, ok := interval.Clip(s.Interval)
	if !ok {
		return nil, nil
	}

	var bitmapPart *filter.Filter
	var residualPart *filter.Filter
	if f != nil {
		part, err := filter.PartitionWithBitmapSupport(f, s)
		if err != nil {
			return nil, err
		}
		bitmapPart, residualPart = part.BitmapPart, part.ResidualPart
	}

	var baseBitmap *column.Bitmap
	exact := filter.Exact
	if bitmapPart != nil {
		baseBitmap, exact = filter.ToBitmap(bitmapPart, s)
	}
	// An inexact bitmap-part result must fall through to the residual
	// matcher for re-verification (§4.4 "caller must compose with the
	// residual matcher"), so fold it into the residual filter instead of
	// trusting it alone.
	effectiveResidual := residualPart
	if bitmapPart != nil && exact == filter.Inexact {
		effectiveResidual = filter.And(nonNil(bitmapPart, residualPart)...)
	}

	buckets := granularity.Buckets(g, clipped.Start, clipped.End)
	cursors := make([]*Cursor, 0, len(buckets))
	for _, bucketStart := range buckets {
		bucketEnd := g.BucketEnd(bucketStart, clipped.End)
		if bucketEnd > clipped.End {
			bucketEnd = clipped.End
		}

		var off offset
		if baseBitmap != nil {
			off = newBitmapOffset(baseBitmap, descending)
		} else {
			off = newFullRangeOffset(s.NumRows(), descending)
		}

		start, end := bucketStart, bucketEnd
		if start <= s.GetMinTime() && end >= s.GetMaxTime() {
			// Bucket covers the full segment span: the check would always
			// pass, so skip it (§4.2 step 4 "omit the check").
			start, end = 0, 0
		}
		off = newTimeWindowOffset(off, s.timeColumn, start, end)

		cursors = append(cursors, newCursor(s, off, filterResidual{f: effectiveResidual}, bucketStart, bucketEnd))
	}
	return cursors, nil
}

func nonNil(fs ...*filter.Filter) []*filter.Filter {
	out := fs[:0]
	for _, f := range fs {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
