// Package column implements the immutable per-column readers that make up
// C1: dictionary-encoded string columns, compressed numeric columns,
// complex (opaque blob) columns, and their secondary indexes (bitmap,
// value-range histogram, text). Every reader is addressed by row offset
// through a Selector, the common accessor abstraction consumed by Cursors
// (see package segment) and by the filter planner (see package filter).
package column

// ValueType enumerates the primitive value kinds of §3.
type ValueType int

const (
	TypeLong ValueType = iota
	TypeFloat
	TypeDouble
	TypeString
	TypeComplex
	TypeDimension
)

func (t ValueType) String() string {
	switch t {
	case TypeLong:
		return "long"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeComplex:
		return "complex"
	case TypeDimension:
		return "dimension"
	default:
		return "unknown"
	}
}

// Capabilities describes what a column reader can do, queried by the
// filter planner (C4) to decide bitmap-vs-residual partitioning and by
// DimensionSpecs to decide whether extraction can be pushed down.
type Capabilities struct {
	Type             ValueType
	DictionaryEncoded bool
	HasMultiValues   bool
	HasBitmapIndex   bool
	HasTextIndex     bool
	HasMetricHistogram bool
	HasSpatial       bool
	ComplexTypeName  string // set iff Type == TypeComplex
}
