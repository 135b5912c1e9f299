package incindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareRollupOrdersByTimestampThenDims(t *testing.T) {
	a := TimeAndDims{BucketedTimestamp: 100, DimIDs: [][]int32{{1}}}
	b := TimeAndDims{BucketedTimestamp: 200, DimIDs: [][]int32{{0}}}
	assert.Equal(t, -1, CompareRollup(a, b))
	assert.Equal(t, 1, CompareRollup(b, a))

	c := TimeAndDims{BucketedTimestamp: 100, DimIDs: [][]int32{{2}}}
	assert.Equal(t, -1, CompareRollup(a, c))
	assert.Equal(t, 0, CompareRollup(a, a))
}

func TestMapKeyDistinguishesDimsAndSeq(t *testing.T) {
	a := TimeAndDims{BucketedTimestamp: 100, DimIDs: [][]int32{{1, 2}}}
	b := TimeAndDims{BucketedTimestamp: 100, DimIDs: [][]int32{{1, 3}}}
	assert.NotEqual(t, a.mapKey(), b.mapKey())

	c := a
	c.seq = 1
	assert.NotEqual(t, a.mapKey(), c.mapKey())
}
