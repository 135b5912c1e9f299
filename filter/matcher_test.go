package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type rowCtx struct {
	dims map[string][]string
	nums map[string]float64
}

func (r rowCtx) DimensionValues(d string) []string { return r.dims[d] }
func (r rowCtx) NumericValue(c string) (float64, bool) {
	v, ok := r.nums[c]
	return v, ok
}
func (r rowCtx) StringValue(c string) string {
	if len(r.dims[c]) > 0 {
		return r.dims[c][0]
	}
	return ""
}

func TestEvaluateRowMatchesBitmapEquivalentSemantics(t *testing.T) {
	src := newFakeSource()
	f := Or(Selector("d", "X"), Selector("d", "Z"))

	// §8 invariant: rows accepted by row-wise eval equal rows in bitmap∪residual.
	bm, exact := ToBitmap(f, src)
	assert.Equal(t, Exact, exact)
	expected := map[uint32]bool{}
	for _, o := range bm.ToArray() {
		expected[o] = true
	}
	for i, v := range src.dValues {
		rc := rowCtx{dims: map[string][]string{"d": {v}}}
		got := EvaluateRow(f, rc)
		assert.Equal(t, expected[uint32(i)], got, "row %d", i)
	}
}

func TestEvaluateRowNotIn(t *testing.T) {
	rc := rowCtx{dims: map[string][]string{"d": {"X"}}}
	assert.False(t, EvaluateRow(NotIn("d", "X", "Y"), rc))
	rc2 := rowCtx{dims: map[string][]string{"d": {"Z"}}}
	assert.True(t, EvaluateRow(NotIn("d", "X", "Y"), rc2))
}

func TestEvaluateRowNumericBound(t *testing.T) {
	f := NumericBound("v", "0", "10", false, true, false, false)
	assert.True(t, EvaluateRow(f, rowCtx{nums: map[string]float64{"v": 5}}))
	assert.False(t, EvaluateRow(f, rowCtx{nums: map[string]float64{"v": 10}}))
	assert.False(t, EvaluateRow(f, rowCtx{nums: map[string]float64{}}))
}

func TestEvaluateRowMultiValueOr(t *testing.T) {
	rc := rowCtx{dims: map[string][]string{"tags": {"a", "b", "c"}}}
	assert.True(t, EvaluateRow(Selector("tags", "b"), rc))
	assert.False(t, EvaluateRow(Selector("tags", "z"), rc))
}

func TestEvaluateRowAndOrDeMorganUnderNot(t *testing.T) {
	rc := rowCtx{dims: map[string][]string{"d": {"X"}, "e": {"Y"}}}
	f := Not(And(Selector("d", "X"), Selector("e", "Y")))
	assert.False(t, EvaluateRow(f, rc))

	rc2 := rowCtx{dims: map[string][]string{"d": {"X"}, "e": {"OTHER"}}}
	assert.True(t, EvaluateRow(f, rc2))
}

func TestEvaluateRowFuzzy(t *testing.T) {
	f := Fuzzy("host", "host-1", 1)
	assert.True(t, EvaluateRow(f, rowCtx{dims: map[string][]string{"host": {"host-1"}}}))
	assert.True(t, EvaluateRow(f, rowCtx{dims: map[string][]string{"host": {"host-2"}}}))
	assert.False(t, EvaluateRow(f, rowCtx{dims: map[string][]string{"host": {"host-99"}}}))

	notF := Not(f)
	assert.False(t, EvaluateRow(notF, rowCtx{dims: map[string][]string{"host": {"host-2"}}}))
	assert.True(t, EvaluateRow(notF, rowCtx{dims: map[string][]string{"host": {"host-99"}}}))
}
