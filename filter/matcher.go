package filter

// RowContext is the row-wise counterpart of ColumnSource: it lets the
// residual matcher evaluate a filter against the current row of a
// Cursor (package segment) without the filter package depending on
// segment's selector types directly.
type RowContext interface {
	// DimensionValues returns the string value(s) of the current row for
	// a dictionary-encoded dimension (more than one for a multi-value
	// row, for which filter semantics are "matches if any value
	// matches", the conventional multi-value OR).
	DimensionValues(dimension string) []string

	// NumericValue returns the numeric value of the current row for a
	// numeric column, or ok=false if the column doesn't exist or isn't
	// numeric.
	NumericValue(column string) (float64, bool)

	// StringValue returns the string representation of any column's
	// current-row value, used by generic KindExpression leaves.
	StringValue(column string) string
}

// EvaluateRow applies f to the current row of rc. It is the ground-truth
// definition that ToBitmap-plus-residual must agree with (§8: "rows
// accepted by evaluating F row-wise equal rows accepted by bitmap(F) ∪
// residual(F)").
func EvaluateRow(f *Filter, rc RowContext) bool {
	return evalRow(f, rc, false)
}

func evalRow(f *Filter, rc RowContext, withNot bool) bool {
	switch f.Kind {
	case KindAlwaysTrue:
		return !withNot
	case KindAlwaysFalse:
		return withNot
	case KindSelector:
		match := matchesAny(rc.DimensionValues(f.Dimension), func(v string) bool { return v == f.Value })
		return match != withNot
	case KindIn:
		set := toSet(f.Values)
		match := matchesAny(rc.DimensionValues(f.Dimension), func(v string) bool { return set[v] })
		return match != withNot
	case KindNotIn:
		set := toSet(f.Values)
		match := matchesAny(rc.DimensionValues(f.Dimension), func(v string) bool { return set[v] })
		return match == withNot
	case KindBound:
		if f.Numeric {
			val, ok := rc.NumericValue(f.Dimension)
			if !ok {
				return withNot
			}
			match := numericInBound(f, val)
			return match != withNot
		}
		match := matchesAny(rc.DimensionValues(f.Dimension), boundMatcher(f))
		return match != withNot
	case KindAnd:
		return allMatch(f.Children, rc, withNot)
	case KindOr:
		return anyMatch(f.Children, rc, withNot)
	case KindNot:
		return evalRow(f.Child, rc, !withNot)
	case KindExpression:
		get := func(col string) string { return rc.StringValue(col) }
		return f.Eval(get, f.WithNot != withNot)
	default:
		return withNot
	}
}

// allMatch/anyMatch implement AND/OR with De Morgan applied when withNot
// is set, matching the semantics pushNot would have produced had the
// filter been pre-normalized.
func allMatch(children []*Filter, rc RowContext, withNot bool) bool {
	if withNot {
		for _, c := range children {
			if evalRow(c, rc, true) {
				return true
			}
		}
		return false
	}
	for _, c := range children {
		if !evalRow(c, rc, false) {
			return false
		}
	}
	return true
}

func anyMatch(children []*Filter, rc RowContext, withNot bool) bool {
	if withNot {
		for _, c := range children {
			if !evalRow(c, rc, true) {
				return false
			}
		}
		return true
	}
	for _, c := range children {
		if evalRow(c, rc, false) {
			return true
		}
	}
	return false
}

func matchesAny(values []string, pred func(string) bool) bool {
	for _, v := range values {
		if pred(v) {
			return true
		}
	}
	return false
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func numericInBound(f *Filter, v float64) bool {
	if !f.LowerUnbounded {
		lo := mustFloat(f.Lower)
		if f.LowerStrict && v <= lo {
			return false
		}
		if !f.LowerStrict && v < lo {
			return false
		}
	}
	if !f.UpperUnbounded {
		hi := mustFloat(f.Upper)
		if f.UpperStrict && v >= hi {
			return false
		}
		if !f.UpperStrict && v > hi {
			return false
		}
	}
	return true
}
