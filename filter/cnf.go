package filter

import "fmt"

// MaxConjuncts bounds the size of the CNF expansion (§4.4 step 1: "the
// planner refuses if the conjunction count exceeds a configured
// ceiling"). Callers are assumed not to submit pathological filters; this
// is a backstop, not a planner feature.
const MaxConjuncts = 4096

// ErrConjunctOverflow is returned by ToCNF when expansion would exceed
// MaxConjuncts.
type ErrConjunctOverflow struct{ Count int }

func (e ErrConjunctOverflow) Error() string {
	return fmt.Sprintf("filter: CNF expansion exceeds %d conjuncts (got %d)", MaxConjuncts, e.Count)
}

// ToCNF normalizes f to conjunctive normal form: pushes NOT inward via De
// Morgan (so only leaves ever carry negation, via WithNot or via the
// NotIn/complement leaves) and distributes OR over AND. Returns the
// top-level conjuncts.
func ToCNF(f *Filter) ([]*Filter, error) {
	pushed := pushNot(f, false)
	conjuncts := distribute(pushed)
	if len(conjuncts) > MaxConjuncts {
		return nil, ErrConjunctOverflow{Count: len(conjuncts)}
	}
	return conjuncts, nil
}

// pushNot applies De Morgan's laws so that negation only ever reaches a
// leaf (as an inverted leaf kind, or WithNot on a KindExpression).
func pushNot(f *Filter, negate bool) *Filter {
	switch f.Kind {
	case KindNot:
		return pushNot(f.Child, !negate)
	case KindAnd:
		kind := KindAnd
		if negate {
			kind = KindOr
		}
		children := make([]*Filter, len(f.Children))
		for i, c := range f.Children {
			children[i] = pushNot(c, negate)
		}
		return &Filter{Kind: kind, Children: children}
	case KindOr:
		kind := KindOr
		if negate {
			kind = KindAnd
		}
		children := make([]*Filter, len(f.Children))
		for i, c := range f.Children {
			children[i] = pushNot(c, negate)
		}
		return &Filter{Kind: kind, Children: children}
	case KindSelector:
		if !negate {
			return f
		}
		return &Filter{Kind: KindNotIn, Dimension: f.Dimension, Values: []string{f.Value}}
	case KindIn:
		if !negate {
			return f
		}
		return &Filter{Kind: KindNotIn, Dimension: f.Dimension, Values: f.Values}
	case KindNotIn:
		if !negate {
			return f
		}
		return &Filter{Kind: KindIn, Dimension: f.Dimension, Values: f.Values}
	case KindBound:
		if !negate {
			return f
		}
		// Negated bound splits into two bounds OR'd; represented directly
		// since a single Bound leaf cannot express "outside range".
		left := &Filter{Kind: KindBound, Dimension: f.Dimension, Upper: f.Lower,
			UpperStrict: !f.LowerStrict, LowerUnbounded: true, Numeric: f.Numeric}
		right := &Filter{Kind: KindBound, Dimension: f.Dimension, Lower: f.Upper,
			LowerStrict: !f.UpperStrict, UpperUnbounded: true, Numeric: f.Numeric}
		if f.LowerUnbounded {
			return right
		}
		if f.UpperUnbounded {
			return left
		}
		return &Filter{Kind: KindOr, Children: []*Filter{left, right}}
	case KindExpression:
		nf := *f
		nf.WithNot = f.WithNot != negate
		return &nf
	case KindAlwaysTrue:
		if negate {
			return AlwaysFalse()
		}
		return f
	case KindAlwaysFalse:
		if negate {
			return AlwaysTrue()
		}
		return f
	default:
		return f
	}
}

// distribute returns the top-level AND conjuncts of f after distributing
// OR over AND (OR(AND(a,b), c) -> AND(OR(a,c), OR(b,c))).
func distribute(f *Filter) []*Filter {
	switch f.Kind {
	case KindAnd:
		var out []*Filter
		for _, c := range f.Children {
			out = append(out, distribute(c)...)
		}
		return out
	case KindOr:
		// Distribute each child's conjunct-set pairwise.
		sets := make([][]*Filter, len(f.Children))
		for i, c := range f.Children {
			sets[i] = distribute(c)
		}
		combined := sets[0]
		for _, s := range sets[1:] {
			combined = crossOr(combined, s)
		}
		return combined
	default:
		return []*Filter{f}
	}
}

func crossOr(a, b []*Filter) []*Filter {
	out := make([]*Filter, 0, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			out = append(out, &Filter{Kind: KindOr, Children: []*Filter{x, y}})
		}
	}
	return out
}
