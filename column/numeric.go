package column

// NumericColumn is a run of fixed-width cells (§3, §4.1), held in memory
// as plain uncompressed slices. No column-level compression codec exists
// in this tree, and no writer persists column cells.
//
// A numeric cell absent at ingest is represented as the type's zero value
// (§3 "zero on an absent numeric cell"), so GetLongSingleValueRow etc.
// never need an explicit null bit.
type NumericColumn struct {
	vtype    ValueType // TypeLong, TypeFloat, or TypeDouble
	longs    []int64
	floats   []float32
	doubles  []float64
	histogram *HistogramIndex // optional value-range index, may be nil
}

func NewLongColumn(values []int64, histogram *HistogramIndex) *NumericColumn {
	return &NumericColumn{vtype: TypeLong, longs: values, histogram: histogram}
}

func NewFloatColumn(values []float32, histogram *HistogramIndex) *NumericColumn {
	return &NumericColumn{vtype: TypeFloat, floats: values, histogram: histogram}
}

func NewDoubleColumn(values []float64, histogram *HistogramIndex) *NumericColumn {
	return &NumericColumn{vtype: TypeDouble, doubles: values, histogram: histogram}
}

func (c *NumericColumn) Capabilities() Capabilities {
	return Capabilities{Type: c.vtype, HasMetricHistogram: c.histogram != nil}
}

func (c *NumericColumn) Length() int {
	switch c.vtype {
	case TypeLong:
		return len(c.longs)
	case TypeFloat:
		return len(c.floats)
	default:
		return len(c.doubles)
	}
}

func (c *NumericColumn) GetLongSingleValueRow(off int) int64 {
	switch c.vtype {
	case TypeLong:
		return c.longs[off]
	case TypeFloat:
		return int64(c.floats[off])
	default:
		return int64(c.doubles[off])
	}
}

func (c *NumericColumn) GetFloatSingleValueRow(off int) float32 {
	switch c.vtype {
	case TypeFloat:
		return c.floats[off]
	case TypeLong:
		return float32(c.longs[off])
	default:
		return float32(c.doubles[off])
	}
}

func (c *NumericColumn) GetDoubleSingleValueRow(off int) float64 {
	switch c.vtype {
	case TypeDouble:
		return c.doubles[off]
	case TypeLong:
		return float64(c.longs[off])
	default:
		return float64(c.floats[off])
	}
}

// Histogram returns the optional value-range secondary index (nil if the
// column was built without one).
func (c *NumericColumn) Histogram() *HistogramIndex { return c.histogram }

// numeric selectors, bound to a shared mutable row offset the same way
// dimensionSelector is.

type longSelector struct {
	col *NumericColumn
	row *int
}

func NewLongSelector(c *NumericColumn, row *int) LongSelector { return &longSelector{c, row} }
func (s *longSelector) GetLong() int64                        { return s.col.GetLongSingleValueRow(*s.row) }

type floatSelector struct {
	col *NumericColumn
	row *int
}

func NewFloatSelector(c *NumericColumn, row *int) FloatSelector { return &floatSelector{c, row} }
func (s *floatSelector) GetFloat() float32                      { return s.col.GetFloatSingleValueRow(*s.row) }

type doubleSelector struct {
	col *NumericColumn
	row *int
}

func NewDoubleSelector(c *NumericColumn, row *int) DoubleSelector { return &doubleSelector{c, row} }
func (s *doubleSelector) GetDouble() float64 { return s.col.GetDoubleSingleValueRow(*s.row) }
