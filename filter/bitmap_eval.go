package filter

import "github.com/segmentdb/qengine/column"

// ToBitmap evaluates f against src's secondary indexes (§4.4
// "toBitmap(filter, selector, using)"). It returns the matching row
// bitmap and whether that bitmap is exact; an inexact result means the
// caller MUST additionally apply the residual matcher over the rows the
// bitmap selected (the "bitmap is exact" contract of §4.1/§4.4/§8).
func ToBitmap(f *Filter, src ColumnSource) (*Bitmap, Exactness) {
	return toBitmap(f, src, false)
}

func toBitmap(f *Filter, src ColumnSource, withNot bool) (*Bitmap, Exactness) {
	switch f.Kind {
	case KindAlwaysTrue:
		if withNot {
			return column.NewBitmap().Freeze(), Exact
		}
		return column.FullRange(src.NumRows()), Exact
	case KindAlwaysFalse:
		if withNot {
			return column.FullRange(src.NumRows()), Exact
		}
		return column.NewBitmap().Freeze(), Exact

	case KindSelector:
		caps, ok := src.Capabilities(f.Dimension)
		if !ok {
			// Missing column: a selector never matches null unless Value=="".
			return missingColumnResult(f.Value == "", src, withNot)
		}
		if caps.DictionaryEncoded {
			bm := src.DictionaryBitmap(f.Dimension, []string{f.Value})
			return applyNot(bm, src, withNot), Exact
		}
		return matchPredicateFallback(f.Dimension, src, func(v string) bool { return v == f.Value }, withNot)

	case KindIn, KindNotIn:
		negated := f.Kind == KindNotIn
		caps, ok := src.Capabilities(f.Dimension)
		if !ok {
			acceptsNull := containsEmpty(f.Values) != negated
			return missingColumnResult(acceptsNull, src, withNot)
		}
		effectiveNot := withNot != negated
		if caps.DictionaryEncoded {
			bm := src.DictionaryBitmap(f.Dimension, f.Values)
			return applyNot(bm, src, effectiveNot), Exact
		}
		set := make(map[string]bool, len(f.Values))
		for _, v := range f.Values {
			set[v] = true
		}
		return matchPredicateFallback(f.Dimension, src, func(v string) bool { return set[v] }, effectiveNot)

	case KindBound:
		caps, ok := src.Capabilities(f.Dimension)
		if !ok {
			return missingColumnResult(false, src, withNot)
		}
		if f.Numeric {
			hist := src.Histogram(f.Dimension)
			if hist == nil {
				return matchPredicateFallback(f.Dimension, src, boundMatcher(f), withNot)
			}
			p := column.Predicate{Kind: column.PredicateBetween, NumLower: numOrInf(f.Lower, f.LowerUnbounded, false), NumUpper: numOrInf(f.Upper, f.UpperUnbounded, true)}
			bm, exact := hist.FilterFor(p)
			return applyNot(bm, src, withNot), exactnessOf(exact)
		}
		if caps.DictionaryEncoded {
			bm := src.DictionaryBound(f.Dimension, f.Lower, f.Upper, f.LowerStrict, f.UpperStrict, f.LowerUnbounded, f.UpperUnbounded)
			return applyNot(bm, src, withNot), Exact
		}
		return matchPredicateFallback(f.Dimension, src, boundMatcher(f), withNot)

	case KindExpression:
		effectiveNot := withNot != f.WithNot
		// A generic Eval-based expression can't be translated to a
		// column.Predicate even when the column carries a text index, so
		// it falls through to the row-scan below, which keeps every row
		// and reports Inexact: the caller's residual matcher then applies
		// the expression row by row.
		bm := column.NewBitmap()
		for _, off := range allOffsets(src) {
			if evalExpression(f, src, off, effectiveNot) {
				bm.Add(off)
			}
		}
		return bm.Freeze(), Inexact

	case KindAnd:
		var bms []*Bitmap
		exact := Exact
		for _, c := range f.Children {
			bm, e := toBitmap(c, src, withNot)
			bms = append(bms, bm)
			if e == Inexact {
				exact = Inexact
			}
		}
		return column.Intersect(bms...), exact

	case KindOr:
		var bms []*Bitmap
		exact := Exact
		for _, c := range f.Children {
			bm, e := toBitmap(c, src, withNot)
			bms = append(bms, bm)
			if e == Inexact {
				exact = Inexact
			}
		}
		return column.Union(bms...), exact

	case KindNot:
		return toBitmap(f.Child, src, !withNot)

	default:
		return column.NewBitmap().Freeze(), Exact
	}
}

func exactnessOf(b bool) Exactness {
	if b {
		return Exact
	}
	return Inexact
}

func applyNot(bm *Bitmap, src ColumnSource, withNot bool) *Bitmap {
	if !withNot {
		return bm
	}
	return column.Complement(bm, src.NumRows())
}

func missingColumnResult(acceptsNull bool, src ColumnSource, withNot bool) (*Bitmap, Exactness) {
	match := acceptsNull != withNot
	if match {
		return column.FullRange(src.NumRows()), Exact
	}
	return column.NewBitmap().Freeze(), Exact
}

func containsEmpty(values []string) bool {
	for _, v := range values {
		if v == "" {
			return true
		}
	}
	return false
}

func boundMatcher(f *Filter) func(string) bool {
	return func(v string) bool {
		if !f.LowerUnbounded {
			if f.LowerStrict && v <= f.Lower {
				return false
			}
			if !f.LowerStrict && v < f.Lower {
				return false
			}
		}
		if !f.UpperUnbounded {
			if f.UpperStrict && v >= f.Upper {
				return false
			}
			if !f.UpperStrict && v > f.Upper {
				return false
			}
		}
		return true
	}
}

func numOrInf(s string, unbounded bool, upper bool) float64 {
	if unbounded {
		if upper {
			return 1e308
		}
		return -1e308
	}
	return mustFloat(s)
}

// matchPredicateFallback is matchPredicate(dimension, selector, predicate)
// from §4.4: scan the dictionary, apply the predicate to each distinct
// value, and OR its bitmap. This is always exact, since it evaluates the
// true predicate over every value rather than an index approximation.
func matchPredicateFallback(dim string, src ColumnSource, match func(string) bool, withNot bool) (*Bitmap, Exactness) {
	bm := src.MatchDictionary(dim, match)
	return applyNot(bm, src, withNot), Exact
}

// allOffsets and evalExpression support KindExpression leaves reaching
// ToBitmap directly (e.g. constructed by a caller that didn't route it
// through the residual path) by degrading to a full row-by-row scan;
// PartitionWithBitmapSupport never places any expression in the bitmap
// part (see resolver.go supportsBitmap), so the normal query path never
// runs this scan.
func allOffsets(src ColumnSource) []uint32 {
	n := src.NumRows()
	offs := make([]uint32, n)
	for i := 0; i < n; i++ {
		offs[i] = uint32(i)
	}
	return offs
}

func evalExpression(f *Filter, src ColumnSource, off uint32, withNot bool) bool {
	// Without row-level column access (ColumnSource only exposes
	// dictionary-level operations, by design -- see resolver.go), a
	// generic expression cannot be evaluated here; this path is
	// unreachable in practice (see allOffsets doc) and conservatively
	// keeps every row (a superset the caller re-verifies) rather than
	// dropping a row that matches.
	_ = f
	_ = src
	_ = off
	_ = withNot
	return true
}
