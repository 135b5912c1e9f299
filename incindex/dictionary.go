package incindex

import (
	"sort"
	"sync"
)

// Dictionary is the insertion-order, append-only dictionary maintained
// per dimension while the index is open for writes (§4.3 step 2). It is
// the "narrowly serialized critical section" of §5's locking discipline
// summary: one mutex per dimension, never a global map lock, so
// concurrent inserts touching different dimensions never contend.
//
// Ids are assigned in insertion order, not sorted order; a sort layer
// (see SortedValues) maps id -> sorted rank for iteration (§4.3
// "Iteration contract").
type Dictionary struct {
	mu      sync.RWMutex
	byValue map[string]int32
	values  []string // values[id] == original string, in insertion order
}

func NewDictionary() *Dictionary {
	return &Dictionary{byValue: make(map[string]int32)}
}

// IDOrAdd returns the id for value, allocating a new one if this is the
// first time the dictionary has seen it, and reports whether this call
// was the one that allocated it (used by the capacity estimator to
// charge estimatedStringBytes exactly once per distinct value). The
// critical section is a single dictionary's mutex, not the index's
// facts map (§4.3 step 2, §5 "Dictionaries inside the incremental index
// are append-only").
func (d *Dictionary) IDOrAdd(value string) (id int32, added bool) {
	d.mu.RLock()
	if id, ok := d.byValue[value]; ok {
		d.mu.RUnlock()
		return id, false
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	if id, ok := d.byValue[value]; ok {
		return id, false
	}
	id = int32(len(d.values))
	d.values = append(d.values, value)
	d.byValue[value] = id
	return id, true
}

// Lookup returns the id of value without allocating, or (-1,false).
func (d *Dictionary) Lookup(value string) (int32, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.byValue[value]
	if !ok {
		return -1, false
	}
	return id, true
}

// Size returns the number of distinct values seen so far. A read
// concurrent with a write sees a consistent prefix (§5): Size never
// observes a partially-constructed append.
func (d *Dictionary) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.values)
}

// Value returns the original string for id (insertion-order view, not
// the sorted view consumers see after Seal).
func (d *Dictionary) Value(id int32) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.values[id]
}

// SortedValues returns a copy of the dictionary's values sorted
// lexicographically, plus a map from insertion-order id to sorted rank.
// Iteration over a sealed index walks dim ids through this rank map so
// output order matches the sorted-dictionary contract column readers
// provide (§3, §4.3).
func (d *Dictionary) SortedValues() (sorted []string, rankOf []int32) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	sorted = append([]string(nil), d.values...)
	sort.Strings(sorted)
	rankOf = make([]int32, len(d.values))
	for rank, v := range sorted {
		id := d.byValue[v]
		rankOf[id] = int32(rank)
	}
	return sorted, rankOf
}
