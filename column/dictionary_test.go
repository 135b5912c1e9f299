package column

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDictionaryLookupRoundTrip(t *testing.T) {
	dict := []string{"", "alice", "bob", "carl"}
	col := NewDictionaryColumn(dict, []int{1, 2, 0, 3}, nil)

	for _, v := range dict {
		id := col.LookupID(v)
		assert.Equal(t, v, col.LookupName(id))
	}
	assert.Equal(t, -1, col.LookupID("missing"))
}

func TestDictionaryGetBitmap(t *testing.T) {
	dict := []string{"a", "b"}
	col := NewDictionaryColumn(dict, []int{0, 1, 0, 0}, nil)

	bm := col.GetBitmap(0)
	assert.Equal(t, []uint32{0, 2, 3}, bm.ToArray())
	bm = col.GetBitmap(1)
	assert.Equal(t, []uint32{1}, bm.ToArray())
}

func TestDimensionSelectorTracksSharedOffset(t *testing.T) {
	dict := []string{"x", "y"}
	col := NewDictionaryColumn(dict, []int{0, 1}, nil)
	row := 0
	sel := NewDimensionSelector(col, &row)
	assert.Equal(t, []int{0}, sel.GetRow())
	row = 1
	assert.Equal(t, []int{1}, sel.GetRow())
}

func TestMultiValueRow(t *testing.T) {
	dict := []string{"a", "b", "c"}
	col := NewDictionaryColumn(dict, nil, [][]int{{0, 1}, {2}})
	assert.True(t, col.Capabilities().HasMultiValues)
	assert.Equal(t, []int{0, 1}, col.GetMultiValueRow(0))
	bm := col.GetBitmap(1)
	assert.Equal(t, []uint32{0}, bm.ToArray())
}
