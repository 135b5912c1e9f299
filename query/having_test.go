package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHavingNilMatchesEverything(t *testing.T) {
	var h *Having
	assert.True(t, h.Matches(Row{"s": 5.0}))
}

func TestHavingLeafComparisons(t *testing.T) {
	row := Row{"s": 10.0}
	assert.True(t, (&Having{Column: "s", Op: HavingEqual, Value: 10}).Matches(row))
	assert.True(t, (&Having{Column: "s", Op: HavingGreaterThan, Value: 5}).Matches(row))
	assert.False(t, (&Having{Column: "s", Op: HavingLessThan, Value: 5}).Matches(row))
}

func TestHavingAndRequiresAllChildren(t *testing.T) {
	row := Row{"s": 10.0}
	h := &Having{And: []*Having{
		{Column: "s", Op: HavingGreaterThan, Value: 5},
		{Column: "s", Op: HavingLessThan, Value: 5},
	}}
	assert.False(t, h.Matches(row))
}

func TestHavingOrRequiresAnyChild(t *testing.T) {
	row := Row{"s": 10.0}
	h := &Having{Or: []*Having{
		{Column: "s", Op: HavingGreaterThan, Value: 100},
		{Column: "s", Op: HavingEqual, Value: 10},
	}}
	assert.True(t, h.Matches(row))
}

func TestHavingNotInverts(t *testing.T) {
	row := Row{"s": 10.0}
	h := &Having{Not: &Having{Column: "s", Op: HavingEqual, Value: 10}}
	assert.False(t, h.Matches(row))
}

func TestHavingMissingColumnNeverMatches(t *testing.T) {
	h := &Having{Column: "missing", Op: HavingEqual, Value: 0}
	assert.False(t, h.Matches(Row{}))
}
