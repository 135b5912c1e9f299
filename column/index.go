package column

import (
	"sort"
	"strconv"
)

// Predicate is a closed-set shape the planner (package filter) knows how
// to translate onto a secondary index without materializing rows (§4.1):
// arbitrary lambdas never cross the column-store boundary.
type PredicateKind int

const (
	PredicatePoint PredicateKind = iota
	PredicateRange
	PredicateSetMembership
	PredicateBetween
)

type Predicate struct {
	Kind PredicateKind

	// PredicatePoint
	Point string

	// PredicateRange: value in [Lower,Upper) / (Lower,Upper] etc, per flags.
	// A side is open only when LowerUnbounded/UpperUnbounded is set; an
	// empty Lower/Upper string is not treated as unbounded.
	Lower          string
	Upper          string
	LowerStrict    bool
	UpperStrict    bool
	LowerUnbounded bool
	UpperUnbounded bool

	// PredicateSetMembership
	Set []string

	// PredicateBetween (numeric range, used by HistogramIndex)
	NumLower float64
	NumUpper float64
}

// HistogramIndex is a value-range (metric) bitmap index over a numeric
// column (§3, §4.1): it answers PredicateBetween/PredicateRange queries
// by unioning the bitmaps of the histogram buckets the range overlaps,
// without scanning values. The result is flagged inexact by the planner
// (package filter) because bucket boundaries are approximate -- callers
// must re-verify with the residual matcher (§4.4).
type HistogramIndex struct {
	bucketLowerBounds []float64 // ascending, bucketLowerBounds[i] <= values in bucket i
	bucketBitmaps     []*Bitmap
}

func NewHistogramIndex(bucketLowerBounds []float64, bucketBitmaps []*Bitmap) *HistogramIndex {
	return &HistogramIndex{bucketLowerBounds: bucketLowerBounds, bucketBitmaps: bucketBitmaps}
}

// FilterFor returns the union of buckets overlapping the predicate and
// whether the result is exact. Only PredicateBetween/PredicateRange are
// supported; other kinds return (nil, false).
func (h *HistogramIndex) FilterFor(p Predicate) (*Bitmap, bool) {
	var lower, upper float64
	switch p.Kind {
	case PredicateBetween:
		lower, upper = p.NumLower, p.NumUpper
	case PredicateRange:
		if !p.LowerUnbounded {
			var err error
			lower, err = parseFloat(p.Lower)
			if err != nil {
				return nil, false
			}
		} else {
			lower = negInf
		}
		if !p.UpperUnbounded {
			var err error
			upper, err = parseFloat(p.Upper)
			if err != nil {
				return nil, false
			}
		} else {
			upper = posInf
		}
	default:
		return nil, false
	}
	// SearchFloat64s gives the first bucket whose lower bound is >= lower;
	// unless that bound equals lower exactly, the bucket that contains
	// lower is the one before it, so step back one.
	startIdx := sort.SearchFloat64s(h.bucketLowerBounds, lower)
	if startIdx > 0 && (startIdx == len(h.bucketLowerBounds) || h.bucketLowerBounds[startIdx] > lower) {
		startIdx--
	}
	if startIdx < 0 {
		startIdx = 0
	}
	var bitmaps []*Bitmap
	for i := startIdx; i < len(h.bucketLowerBounds); i++ {
		if h.bucketLowerBounds[i] >= upper {
			break
		}
		bitmaps = append(bitmaps, h.bucketBitmaps[i])
	}
	// Bucket granularity is coarser than the requested [lower,upper), so
	// the union over-approximates: not exact.
	return Union(bitmaps...), false
}

const negInf = -1e308
const posInf = 1e308

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// TextIndex is an inverted (Lucene-style) index over a string column,
// answering only exact-kind point/range predicates (§4.4 edge case:
// "Text-index only supports exact-kind point/range queries; non-text
// predicates route to the generic matcher").
type TextIndex struct {
	terms   []string // sorted
	postings []*Bitmap
}

func NewTextIndex(sortedTerms []string, postings []*Bitmap) *TextIndex {
	return &TextIndex{terms: sortedTerms, postings: postings}
}

// FilterFor answers PredicatePoint and PredicateRange exactly; other
// kinds return (nil, false) and must fall back to the generic matcher.
func (t *TextIndex) FilterFor(p Predicate) (*Bitmap, bool) {
	switch p.Kind {
	case PredicatePoint:
		i := sort.SearchStrings(t.terms, p.Point)
		if i < len(t.terms) && t.terms[i] == p.Point {
			return t.postings[i], true
		}
		return NewBitmap().Freeze(), true
	case PredicateRange:
		lo := 0
		if !p.LowerUnbounded {
			lo = sort.SearchStrings(t.terms, p.Lower)
			if lo < len(t.terms) && t.terms[lo] == p.Lower && p.LowerStrict {
				lo++
			}
		}
		hi := len(t.terms)
		if !p.UpperUnbounded {
			hi = sort.SearchStrings(t.terms, p.Upper)
			if hi < len(t.terms) && t.terms[hi] == p.Upper && !p.UpperStrict {
				hi++
			}
		}
		var bitmaps []*Bitmap
		for i := lo; i < hi && i < len(t.terms); i++ {
			bitmaps = append(bitmaps, t.postings[i])
		}
		return Union(bitmaps...), true
	default:
		return nil, false
	}
}
