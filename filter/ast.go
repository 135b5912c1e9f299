// Package filter implements C4: pure functions over a filter AST and a
// column-capability lookup. It normalizes filters to CNF, partitions them
// into a bitmap-satisfiable part (evaluated over secondary indexes, see
// package column) and a residual predicate (evaluated row-by-row over
// selectors), and preserves the "exact" flag across that split (§4.4).
package filter

import (
	"strconv"

	"github.com/segmentdb/qengine/column"
	"github.com/segmentdb/qengine/util"
)

// Kind discriminates the filter AST (§9: "model as closed tagged
// variants... with a discriminator tag").
type Kind int

const (
	KindSelector Kind = iota
	KindIn
	KindNotIn
	KindBound
	KindAnd
	KindOr
	KindNot
	KindExpression
	KindAlwaysTrue
	KindAlwaysFalse
)

// Filter is a closed tagged variant over the filter shapes named in §4.4.
// Only the fields relevant to Kind are populated.
type Filter struct {
	Kind Kind

	// KindSelector / KindIn / KindNotIn / KindBound: the column this leaf
	// applies to.
	Dimension string

	// KindSelector
	Value string

	// KindIn / KindNotIn
	Values []string

	// KindBound
	Lower          string
	Upper          string
	LowerStrict    bool
	UpperStrict    bool
	LowerUnbounded bool
	UpperUnbounded bool
	Numeric        bool // if true, Lower/Upper parse as numbers (routes to HistogramIndex)

	// KindAnd / KindOr
	Children []*Filter

	// KindNot
	Child *Filter

	// KindExpression: a generic predicate tree over possibly multiple
	// columns; Eval is invoked with a row-value lookup by the residual
	// matcher. withNot tracks negation propagated through De Morgan so a
	// leaf comparator can invert its own semantics instead of wrapping
	// itself in a KindNot node (§4.4 "expression... with a withNot flag
	// that propagates through ! and inverts comparator semantics").
	Columns []string
	Eval    func(get func(col string) string, withNot bool) bool
	WithNot bool
}

// Selector builds a KindSelector leaf: dimension == value (empty value
// matches null/empty-string per the dictionary's null convention, §3).
func Selector(dimension, value string) *Filter {
	return &Filter{Kind: KindSelector, Dimension: dimension, Value: value}
}

func In(dimension string, values ...string) *Filter {
	return &Filter{Kind: KindIn, Dimension: dimension, Values: values}
}

func NotIn(dimension string, values ...string) *Filter {
	return &Filter{Kind: KindNotIn, Dimension: dimension, Values: values}
}

// Bound builds a KindBound (range) leaf bounded on both sides. To leave a
// side open, set LowerUnbounded/UpperUnbounded on the result (or use
// NumericBound, which takes them as arguments).
func Bound(dimension string, lower, upper string, lowerStrict, upperStrict bool) *Filter {
	return &Filter{Kind: KindBound, Dimension: dimension, Lower: lower, Upper: upper,
		LowerStrict: lowerStrict, UpperStrict: upperStrict}
}

func NumericBound(dimension string, lower, upper string, lowerStrict, upperStrict, lowerUnbounded, upperUnbounded bool) *Filter {
	return &Filter{Kind: KindBound, Dimension: dimension, Lower: lower, Upper: upper,
		LowerStrict: lowerStrict, UpperStrict: upperStrict,
		LowerUnbounded: lowerUnbounded, UpperUnbounded: upperUnbounded, Numeric: true}
}

func And(children ...*Filter) *Filter { return &Filter{Kind: KindAnd, Children: children} }
func Or(children ...*Filter) *Filter  { return &Filter{Kind: KindOr, Children: children} }
func Not(child *Filter) *Filter       { return &Filter{Kind: KindNot, Child: child} }

func AlwaysTrue() *Filter  { return &Filter{Kind: KindAlwaysTrue} }
func AlwaysFalse() *Filter { return &Filter{Kind: KindAlwaysFalse} }

// Fuzzy builds a KindExpression leaf matching rows whose dimension value
// is within maxDistance edits of pattern, the approximate-match mode the
// Search query kind offers alongside exact and prefix matching (§3).
// Fuzzy is never bitmap-satisfiable -- PartitionWithBitmapSupport always
// places it in the residual part, since no secondary index enumerates
// values by edit distance -- so every row is evaluated with
// util.WithinDistance.
func Fuzzy(dimension, pattern string, maxDistance int) *Filter {
	return Expression([]string{dimension}, func(get func(col string) string, withNot bool) bool {
		match := util.WithinDistance(get(dimension), pattern, maxDistance)
		return match != withNot
	})
}

// Expression builds a generic predicate-tree leaf over one or more
// columns; eval receives a per-column string getter and the accumulated
// withNot flag.
func Expression(columns []string, eval func(get func(col string) string, withNot bool) bool) *Filter {
	return &Filter{Kind: KindExpression, Columns: columns, Eval: eval}
}

// toPredicate converts the closed-shape leaves (Selector/In/NotIn/Bound)
// to a column.Predicate for secondary-index dispatch. KindNotIn and every
// KindExpression (single- or multi-column) never convert (return
// ok=false) -- NotIn
// requires a complement the index can't compute locally without knowing
// column cardinality, so it is handled by the planner via Complement
// over the unioned In-bitmap instead (see bitmap_eval.go).
func (f *Filter) toPredicate() (column.Predicate, bool) {
	switch f.Kind {
	case KindSelector:
		return column.Predicate{Kind: column.PredicatePoint, Point: f.Value}, true
	case KindBound:
		if f.Numeric {
			lo, hi := negInfS, posInfS
			if !f.LowerUnbounded {
				lo = f.Lower
			}
			if !f.UpperUnbounded {
				hi = f.Upper
			}
			return column.Predicate{Kind: column.PredicateBetween,
				NumLower: mustFloat(lo), NumUpper: mustFloat(hi)}, true
		}
		return column.Predicate{Kind: column.PredicateRange, Lower: f.Lower, Upper: f.Upper,
			LowerStrict: f.LowerStrict, UpperStrict: f.UpperStrict,
			LowerUnbounded: f.LowerUnbounded, UpperUnbounded: f.UpperUnbounded}, true
	case KindIn:
		return column.Predicate{Kind: column.PredicateSetMembership, Set: f.Values}, true
	default:
		return column.Predicate{}, false
	}
}

const negInfS = "-1e308"
const posInfS = "1e308"

func mustFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
