package granularity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateHour(t *testing.T) {
	hourMillis := int64(3600_000)
	assert.Equal(t, int64(0), Hour.Truncate(100, 0))
	assert.Equal(t, hourMillis, Hour.Truncate(hourMillis+1, 0))
	assert.Equal(t, hourMillis, Hour.Truncate(hourMillis+hourMillis-1, 0))
}

func TestTruncateAllCollapsesToSegmentStart(t *testing.T) {
	assert.Equal(t, int64(42), All.Truncate(999999, 42))
}

func TestTruncateNoneIsIdentity(t *testing.T) {
	assert.Equal(t, int64(12345), None.Truncate(12345, 0))
}

func TestBucketsHour(t *testing.T) {
	hourMillis := int64(3600_000)
	buckets := Buckets(Hour, 0, hourMillis*3)
	assert.Equal(t, []int64{0, hourMillis, 2 * hourMillis}, buckets)
}

func TestBucketsAllIsSingleton(t *testing.T) {
	buckets := Buckets(All, 10, 20)
	assert.Equal(t, []int64{10}, buckets)
}

func TestBucketsEmptyRange(t *testing.T) {
	assert.Nil(t, Buckets(Hour, 10, 10))
	assert.Nil(t, Buckets(Hour, 20, 10))
}
