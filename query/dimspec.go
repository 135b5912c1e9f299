package query

import "github.com/segmentdb/qengine/segment"

// DimSpecKind discriminates the five DimensionSpec shapes of §3.
type DimSpecKind int

const (
	DimPlain DimSpecKind = iota
	DimExtractionFn
	DimOrderingAnnotated
	DimLookupExtraction
	DimExpression
)

// DimensionSpec is the polymorphic selector-shaper of §3: "{plain
// dimension, extraction-fn-wrapped dimension, ordering-annotated
// dimension, lookup-extraction dimension, expression dimension}. A
// DimensionSpec yields a DimensionSelector when composed with a
// cursor."
type DimensionSpec struct {
	Kind DimSpecKind

	Dimension  string // the underlying column name
	OutputName string // the name this dimension is reported under in result rows

	// DimExtractionFn
	ExtractFn func(value string) string

	// DimOrderingAnnotated
	Ordering OrderingKind

	// DimLookupExtraction
	Lookup         map[string]string
	ReplaceMissing string

	// DimExpression: a generic per-row value computed from multiple
	// source columns, evaluated the same way filter.Expression's Eval
	// leaves are (a StringValue getter, no withNot here since this isn't
	// a predicate).
	ExpressionColumns []string
	ExpressionEval    func(get func(col string) string) string
}

type OrderingKind int

const (
	OrderingNatural OrderingKind = iota
	OrderingLexicographic
	OrderingNumeric
)

func Plain(dimension, outputName string) DimensionSpec {
	return DimensionSpec{Kind: DimPlain, Dimension: dimension, OutputName: outputName}
}

func WithExtractionFn(dimension, outputName string, fn func(string) string) DimensionSpec {
	return DimensionSpec{Kind: DimExtractionFn, Dimension: dimension, OutputName: outputName, ExtractFn: fn}
}

func WithOrdering(dimension, outputName string, ordering OrderingKind) DimensionSpec {
	return DimensionSpec{Kind: DimOrderingAnnotated, Dimension: dimension, OutputName: outputName, Ordering: ordering}
}

func WithLookup(dimension, outputName string, lookup map[string]string, replaceMissing string) DimensionSpec {
	return DimensionSpec{Kind: DimLookupExtraction, Dimension: dimension, OutputName: outputName, Lookup: lookup, ReplaceMissing: replaceMissing}
}

func ExpressionDim(outputName string, columns []string, eval func(get func(col string) string) string) DimensionSpec {
	return DimensionSpec{Kind: DimExpression, OutputName: outputName, ExpressionColumns: columns, ExpressionEval: eval}
}

// Extract resolves this DimensionSpec's output value for the given
// cursor row, dispatching per Kind (§3 "yields a DimensionSelector when
// composed with a cursor" -- rendered here as direct value extraction
// rather than a separate selector object, since every DimensionSpec
// kind here reduces to "one string value per row" once composed).
func (d DimensionSpec) Extract(c *segment.Cursor, row rowStringer) string {
	switch d.Kind {
	case DimExtractionFn:
		return d.ExtractFn(row.StringValue(d.Dimension))
	case DimLookupExtraction:
		v := row.StringValue(d.Dimension)
		if mapped, ok := d.Lookup[v]; ok {
			return mapped
		}
		return d.ReplaceMissing
	case DimExpression:
		return d.ExpressionEval(row.StringValue)
	default: // DimPlain, DimOrderingAnnotated
		return row.StringValue(d.Dimension)
	}
}

// rowStringer is the minimal row-value accessor DimensionSpec.Extract
// needs; *segment.Cursor implements it directly.
type rowStringer interface {
	StringValue(column string) string
}
