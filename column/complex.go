package column

// ComplexColumn stores a serde-identified opaque value per row (§3, §4.1).
// The engine never interprets the bytes/value itself; only the
// aggregator or post-aggregator that declared this typeName knows how.
type ComplexColumn struct {
	typeName string
	values   []interface{}
}

func NewComplexColumn(typeName string, values []interface{}) *ComplexColumn {
	return &ComplexColumn{typeName: typeName, values: values}
}

func (c *ComplexColumn) Capabilities() Capabilities {
	return Capabilities{Type: TypeComplex, ComplexTypeName: c.typeName}
}

func (c *ComplexColumn) Length() int       { return len(c.values) }
func (c *ComplexColumn) TypeName() string  { return c.typeName }
func (c *ComplexColumn) GetRowValue(off int) interface{} { return c.values[off] }

type objectSelector struct {
	col *ComplexColumn
	row *int
}

func NewObjectSelector(c *ComplexColumn, row *int) ObjectSelector { return &objectSelector{c, row} }
func (s *objectSelector) GetObject() interface{}                  { return s.col.GetRowValue(*s.row) }
func (s *objectSelector) TypeName() string                        { return s.col.TypeName() }
