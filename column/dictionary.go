package column

import "sort"

// DictionaryColumn is an immutable, sorted-by-id dictionary of distinct
// string values plus a per-row id (or id list, for multi-value rows) and
// an optional per-id bitmap (§3, §4.1).
//
// Ids are assigned at build time in sorted order (unlike incindex's
// insertion-order dictionary, see incindex.Dictionary), so LookupID can
// binary search and GetBitmap(id) is a direct index into bitmaps.
type DictionaryColumn struct {
	dict    []string // sorted, deduplicated; dict[id] == value
	singles []int    // per-row id, -1 marker unused: empty string is id 0 by convention
	multis  [][]int  // per-row id list; nil unless HasMultiValues
	bitmaps []*Bitmap // bitmaps[id], built lazily or supplied at construction
}

// NewDictionaryColumn builds a column from sorted values and per-row ids.
// multis may be nil for a single-valued column.
func NewDictionaryColumn(sortedDict []string, singles []int, multis [][]int) *DictionaryColumn {
	return &DictionaryColumn{dict: sortedDict, singles: singles, multis: multis}
}

func (c *DictionaryColumn) Capabilities() Capabilities {
	return Capabilities{
		Type:              TypeDimension,
		DictionaryEncoded: true,
		HasMultiValues:    c.multis != nil,
		HasBitmapIndex:    true,
	}
}

func (c *DictionaryColumn) Length() int {
	if c.multis != nil {
		return len(c.multis)
	}
	return len(c.singles)
}

// GetDictionary returns the sorted dictionary in id order.
func (c *DictionaryColumn) GetDictionary() []string { return c.dict }

// Cardinality is the number of distinct values.
func (c *DictionaryColumn) Cardinality() int { return len(c.dict) }

// LookupID returns the id of value, or -1 if it never occurs in this
// column (§8 invariant: lookupId(missing) = -1).
func (c *DictionaryColumn) LookupID(value string) int {
	i := sort.SearchStrings(c.dict, value)
	if i < len(c.dict) && c.dict[i] == value {
		return i
	}
	return -1
}

// LookupName returns the value for an id produced by this column.
func (c *DictionaryColumn) LookupName(id int) string {
	if id < 0 || id >= len(c.dict) {
		return ""
	}
	return c.dict[id]
}

// GetSingleValueRow returns the dictionary id at offset. Only valid when
// !HasMultiValues.
func (c *DictionaryColumn) GetSingleValueRow(offset int) int {
	return c.singles[offset]
}

// GetMultiValueRow returns the dictionary id list at offset.
func (c *DictionaryColumn) GetMultiValueRow(offset int) []int {
	return c.multis[offset]
}

// GetBitmap returns the row-offset bitmap for dictionary id, building and
// caching it on first use via a linear scan. Bitmaps installed up front
// with SetBitmaps are returned as they are.
func (c *DictionaryColumn) GetBitmap(id int) *Bitmap {
	if id < 0 || id >= len(c.dict) {
		return NewBitmap().Freeze()
	}
	if c.bitmaps == nil {
		c.bitmaps = make([]*Bitmap, len(c.dict))
	}
	if c.bitmaps[id] != nil {
		return c.bitmaps[id]
	}
	b := NewBitmap()
	if c.multis != nil {
		for row, ids := range c.multis {
			for _, v := range ids {
				if v == id {
					b.Add(uint32(row))
					break
				}
			}
		}
	} else {
		for row, v := range c.singles {
			if v == id {
				b.Add(uint32(row))
			}
		}
	}
	c.bitmaps[id] = b.Freeze()
	return c.bitmaps[id]
}

// SetBitmaps installs precomputed per-id bitmaps, avoiding the
// O(rows*cardinality) lazy-scan path above. Nothing in this tree calls
// it; every column builds its bitmaps lazily through GetBitmap.
func (c *DictionaryColumn) SetBitmaps(bitmaps []*Bitmap) {
	c.bitmaps = bitmaps
}

// dimensionSelector is the Selector view of a DictionaryColumn bound to a
// mutable row offset supplied by a Cursor.
type dimensionSelector struct {
	col *DictionaryColumn
	row *int
}

// NewDimensionSelector returns a DimensionSelector that reads c at
// whatever offset *row currently holds; the Cursor driving iteration owns
// row and mutates it in place (shared-offset idiom, §4.2).
func NewDimensionSelector(c *DictionaryColumn, row *int) DimensionSelector {
	return &dimensionSelector{col: c, row: row}
}

func (s *dimensionSelector) GetRow() []int {
	if s.col.multis != nil {
		return s.col.multis[*s.row]
	}
	return []int{s.col.singles[*s.row]}
}

func (s *dimensionSelector) LookupName(id int) string   { return s.col.LookupName(id) }
func (s *dimensionSelector) LookupID(value string) int  { return s.col.LookupID(value) }
func (s *dimensionSelector) Cardinality() int           { return s.col.Cardinality() }
