package column

// DimensionSelector is a typed accessor to the current row of a
// dictionary-encoded dimension column. It is produced by composing a
// DictionaryColumn with a Cursor's current row offset (see package
// segment, Cursor.MakeDimensionSelector).
type DimensionSelector interface {
	// GetRow returns the dictionary ids for the current row. A
	// single-value row has length 1.
	GetRow() []int
	// LookupName resolves a dictionary id to its original string.
	LookupName(id int) string
	// LookupID resolves a string to its dictionary id, or -1 if absent.
	LookupID(value string) int
	// Cardinality returns the dictionary size.
	Cardinality() int
}

// LongSelector, FloatSelector and DoubleSelector are typed accessors to
// the current row of a generic numeric column.
type LongSelector interface {
	GetLong() int64
}

type FloatSelector interface {
	GetFloat() float32
}

type DoubleSelector interface {
	GetDouble() float64
}

// ObjectSelector is a typed accessor to the current row of a complex
// column; the returned value is opaque to the engine and is interpreted
// only by the aggregator or post-aggregator that requested it.
type ObjectSelector interface {
	GetObject() interface{}
	TypeName() string
}
