package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPushNotDeMorganOverAnd(t *testing.T) {
	f := Not(And(Selector("d", "X"), Selector("e", "Y")))
	conjuncts, err := ToCNF(f)
	assert.NoError(t, err)
	// NOT(AND(a,b)) = OR(NOT a, NOT b) = OR(NotIn(d,X), NotIn(e,Y)) -- a
	// single top-level disjunction, one conjunct.
	assert.Len(t, conjuncts, 1)
	assert.Equal(t, KindOr, conjuncts[0].Kind)
}

func TestPushNotDoubleNegationCancels(t *testing.T) {
	f := Not(Not(Selector("d", "X")))
	conjuncts, err := ToCNF(f)
	assert.NoError(t, err)
	assert.Len(t, conjuncts, 1)
	assert.Equal(t, KindSelector, conjuncts[0].Kind)
}

func TestDistributeOrOverAnd(t *testing.T) {
	// OR(AND(a,b), c) -> AND(OR(a,c), OR(b,c)): two conjuncts.
	f := Or(And(Selector("d", "X"), Selector("e", "Y")), Selector("f", "Z"))
	conjuncts, err := ToCNF(f)
	assert.NoError(t, err)
	assert.Len(t, conjuncts, 2)
}

func TestConjunctOverflow(t *testing.T) {
	// Build a filter whose distribution blows past MaxConjuncts: an OR of
	// 2-way ANDs nested so that distribution is exponential.
	f := Selector("d", "0")
	for i := 1; i < 16; i++ {
		f = Or(And(f, Selector("d", "a")), And(Selector("d", "b"), Selector("d", "c")))
	}
	_, err := ToCNF(f)
	assert.Error(t, err)
}
