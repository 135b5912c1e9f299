package filter

import (
	"testing"

	"github.com/segmentdb/qengine/column"
	"github.com/stretchr/testify/assert"
)

// fakeSource is a minimal ColumnSource over an in-memory dictionary
// column "d" and a histogrammed numeric column "v", enough to exercise
// the planner and bitmap evaluator end to end.
type fakeSource struct {
	dict    []string
	dValues []string // dValues[row] is the dimension value of row
	vValues []float64
	hist    *column.HistogramIndex
}

func (s *fakeSource) Capabilities(col string) (column.Capabilities, bool) {
	switch col {
	case "d":
		return column.Capabilities{Type: column.TypeDimension, DictionaryEncoded: true}, true
	case "v":
		return column.Capabilities{Type: column.TypeDouble, HasMetricHistogram: s.hist != nil}, true
	}
	return column.Capabilities{}, false
}

func (s *fakeSource) DictionaryBitmap(col string, values []string) *Bitmap {
	set := toSet(values)
	bm := column.NewBitmap()
	for i, v := range s.dValues {
		if set[v] {
			bm.Add(uint32(i))
		}
	}
	return bm.Freeze()
}

func (s *fakeSource) DictionaryBound(col string, lower, upper string, lowerStrict, upperStrict, lowerUnbounded, upperUnbounded bool) *Bitmap {
	bm := column.NewBitmap()
	f := &Filter{Lower: lower, Upper: upper, LowerStrict: lowerStrict, UpperStrict: upperStrict, LowerUnbounded: lowerUnbounded, UpperUnbounded: upperUnbounded}
	match := boundMatcher(f)
	for i, v := range s.dValues {
		if match(v) {
			bm.Add(uint32(i))
		}
	}
	return bm.Freeze()
}

func (s *fakeSource) Histogram(col string) *column.HistogramIndex {
	if col == "v" {
		return s.hist
	}
	return nil
}

func (s *fakeSource) TextIndex(col string) *column.TextIndex { return nil }

func (s *fakeSource) MatchDictionary(col string, match func(string) bool) *Bitmap {
	bm := column.NewBitmap()
	for i, v := range s.dValues {
		if match(v) {
			bm.Add(uint32(i))
		}
	}
	return bm.Freeze()
}

func (s *fakeSource) NumRows() int { return len(s.dValues) }

func newFakeSource() *fakeSource {
	return &fakeSource{
		dValues: []string{"X", "X", "Y", "Z"},
		vValues: []float64{5, 15, 25, 1},
		hist: column.NewHistogramIndex(
			[]float64{0, 10, 20},
			[]*column.Bitmap{column.BitmapOf(0, 3), column.BitmapOf(1), column.BitmapOf(2)},
		),
	}
}

func TestFilterPartitioningScenario4(t *testing.T) {
	// AND(selector(d,X), bound(v,>0)) over a dimension-indexed d and
	// histogram-indexed v (spec.md §8 scenario 4).
	src := newFakeSource()
	f := And(Selector("d", "X"), NumericBound("v", "0", "", true, false, false, true))
	part, err := PartitionWithBitmapSupport(f, src)
	assert.NoError(t, err)
	assert.NotNil(t, part.BitmapPart)
	assert.Nil(t, part.ResidualPart)

	bm, exact := ToBitmap(part.BitmapPart, src)
	assert.Equal(t, Inexact, exact) // histogram bucket union is approximate
	assert.ElementsMatch(t, []uint32{0, 1}, bm.ToArray())
}

func TestMissingColumnAcceptsNull(t *testing.T) {
	src := newFakeSource()
	bm, exact := ToBitmap(Selector("nope", ""), src)
	assert.Equal(t, Exact, exact)
	assert.Equal(t, []uint32{0, 1, 2, 3}, bm.ToArray())

	bm, exact = ToBitmap(Selector("nope", "X"), src)
	assert.Equal(t, Exact, exact)
	assert.True(t, bm.IsEmpty())
}

func TestMultiColumnExpressionNeverBitmapSatisfiable(t *testing.T) {
	src := newFakeSource()
	f := Expression([]string{"d", "v"}, func(get func(string) string, withNot bool) bool { return true })
	part, err := PartitionWithBitmapSupport(f, src)
	assert.NoError(t, err)
	assert.Nil(t, part.BitmapPart)
	assert.NotNil(t, part.ResidualPart)
}

func TestBitmapUnionResidualEqualsRowWise(t *testing.T) {
	src := newFakeSource()
	f := Or(Selector("d", "X"), Selector("d", "Z"))
	part, err := PartitionWithBitmapSupport(f, src)
	assert.NoError(t, err)
	bm, exact := ToBitmap(part.BitmapPart, src)
	assert.Equal(t, Exact, exact)
	assert.Nil(t, part.ResidualPart)
	assert.ElementsMatch(t, []uint32{0, 1, 3}, bm.ToArray())
}

func TestNotInComplement(t *testing.T) {
	src := newFakeSource()
	bm, exact := ToBitmap(NotIn("d", "X"), src)
	assert.Equal(t, Exact, exact)
	assert.ElementsMatch(t, []uint32{2, 3}, bm.ToArray())
}
