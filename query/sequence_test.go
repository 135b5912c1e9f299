package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromSliceScansInOrder(t *testing.T) {
	seq := FromSlice([]Row{{"a": 1}, {"a": 2}})
	rows, err := Drain(seq)
	assert.NoError(t, err)
	assert.Equal(t, []Row{{"a": 1}, {"a": 2}}, rows)
}

func TestMapAppliesLazily(t *testing.T) {
	calls := 0
	seq := Map(FromSlice([]Row{{"a": 1}, {"a": 2}}), func(r Row) Row {
		calls++
		return Row{"a": r["a"].(int) * 10}
	})
	assert.Equal(t, 0, calls)
	rows, err := Drain(seq)
	assert.NoError(t, err)
	assert.Equal(t, []Row{{"a": 10}, {"a": 20}}, rows)
	assert.Equal(t, 2, calls)
}

func TestFilterKeepsOnlyMatching(t *testing.T) {
	seq := Filter(FromSlice([]Row{{"a": 1}, {"a": 2}, {"a": 3}}), func(r Row) bool {
		return r["a"].(int)%2 == 1
	})
	rows, err := Drain(seq)
	assert.NoError(t, err)
	assert.Equal(t, []Row{{"a": 1}, {"a": 3}}, rows)
}

func TestConcatDrainsInOrder(t *testing.T) {
	seq := Concat(FromSlice([]Row{{"a": 1}}), FromSlice([]Row{{"a": 2}, {"a": 3}}))
	rows, err := Drain(seq)
	assert.NoError(t, err)
	assert.Equal(t, []Row{{"a": 1}, {"a": 2}, {"a": 3}}, rows)
}

func TestWithBaggageStampsEveryRow(t *testing.T) {
	seq := WithBaggage(FromSlice([]Row{{"a": 1}, {"a": 2}}), Row{"seg": "s1"})
	rows, err := Drain(seq)
	assert.NoError(t, err)
	for _, r := range rows {
		assert.Equal(t, "s1", r["seg"])
	}
}
