package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitSpecNilIsNoOp(t *testing.T) {
	rows := []Row{{"a": 1}, {"a": 2}}
	var spec *LimitSpec
	assert.Equal(t, rows, spec.Apply(rows))
}

func TestLimitSpecTruncatesWithoutColumns(t *testing.T) {
	spec := &LimitSpec{Limit: 1}
	rows := spec.Apply([]Row{{"a": 1}, {"a": 2}, {"a": 3}})
	assert.Equal(t, []Row{{"a": 1}}, rows)
}

func TestLimitSpecOrdersNumericDescending(t *testing.T) {
	spec := &LimitSpec{Columns: []OrderByColumn{{Name: "v", Ordering: OrderingNumeric, Descending: true}}}
	rows := spec.Apply([]Row{{"v": 1.0}, {"v": 3.0}, {"v": 2.0}})
	assert.Equal(t, []Row{{"v": 3.0}, {"v": 2.0}, {"v": 1.0}}, rows)
}

func TestLimitSpecOrdersLexicographicAscending(t *testing.T) {
	spec := &LimitSpec{Columns: []OrderByColumn{{Name: "name", Ordering: OrderingLexicographic}}}
	rows := spec.Apply([]Row{{"name": "b"}, {"name": "a"}, {"name": "c"}})
	assert.Equal(t, []Row{{"name": "a"}, {"name": "b"}, {"name": "c"}}, rows)
}

func TestLimitSpecOrderThenTruncate(t *testing.T) {
	spec := &LimitSpec{Limit: 2, Columns: []OrderByColumn{{Name: "v", Ordering: OrderingNumeric, Descending: true}}}
	rows := spec.Apply([]Row{{"v": 1.0}, {"v": 3.0}, {"v": 2.0}})
	assert.Equal(t, []Row{{"v": 3.0}, {"v": 2.0}}, rows)
}
