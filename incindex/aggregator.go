package incindex

// Aggregator is the heap-resident runtime shape of §3: one object per
// active group.
type Aggregator interface {
	// Aggregate folds value into the running state.
	Aggregate(value interface{})
	// Get returns the current intermediate (not necessarily user-visible)
	// value.
	Get() interface{}
	// Reset returns the aggregator to its zero state. The index itself
	// never calls it: a slot that loses an insert race is dropped, not
	// reused (§4.3 step 5).
	Reset()
}

// Finalizer is implemented by aggregator factories whose intermediate
// representation differs from the user-visible value (e.g. a sketch that
// finalizes to a cardinality estimate). Finalize must be idempotent
// (§8): Finalize(Finalize(x)) == Finalize(x).
type Finalizer interface {
	Finalize(intermediate interface{}) interface{}
}

// Factory constructs Aggregators and describes their combining and
// sizing behavior (§3).
type Factory interface {
	// Name is the unique-within-a-query aggregator output name (§3
	// invariant: "Aggregator names are unique within a query").
	Name() string
	// New returns a fresh heap-resident Aggregator in its zero state.
	New() Aggregator
	// Combining returns a factory whose New().Aggregate accepts
	// already-aggregated values of this factory's Get() type, used to
	// merge partial results across segments/workers (§3, §4.5 groupBy
	// merge, §8 rollup idempotence).
	Combining() Factory
	// InputType names the expected raw input value kind.
	InputType() string
	// FieldName is the input row field this aggregator reads.
	FieldName() string
	// MaxIntermediateSize bounds the heap/buffer footprint of one
	// aggregator instance, used by the capacity estimator (§4.3).
	MaxIntermediateSize() int
	// ProvidesEstimation is true for variable-size intermediate states
	// (e.g. sketches) whose true size cannot be known without
	// inspecting the value; MaxIntermediateSize is then a conservative
	// upper bound rather than an exact size (§3).
	ProvidesEstimation() bool
}

// BufferedAggregator is the alternate runtime shape of §3: many groups
// share one byte buffer, each addressed by its own offset, letting a
// groupBy fan-in avoid one heap allocation per group.
type BufferedAggregator interface {
	Init(buf []byte, pos int)
	Aggregate(buf []byte, pos int, value interface{})
	Get(buf []byte, pos int) interface{}
}

// --- concrete aggregators grounding §8's "combining-idempotent
// aggregators such as sum/count/min/max" ---

type longSumAggregator struct{ sum int64 }

func (a *longSumAggregator) Aggregate(v interface{}) { a.sum += toInt64(v) }
func (a *longSumAggregator) Get() interface{}        { return a.sum }
func (a *longSumAggregator) Reset()                  { a.sum = 0 }

// LongSumFactory builds longSum aggregators (used throughout the §8
// end-to-end scenarios, e.g. scenario 1's {type:longSum,name:s,...}).
type LongSumFactory struct{ FactoryName, Field string }

func (f LongSumFactory) Name() string               { return f.FactoryName }
func (f LongSumFactory) New() Aggregator            { return &longSumAggregator{} }
func (f LongSumFactory) Combining() Factory         { return f }
func (f LongSumFactory) InputType() string          { return "long" }
func (f LongSumFactory) FieldName() string        { return f.Field }
func (f LongSumFactory) MaxIntermediateSize() int   { return 8 }
func (f LongSumFactory) ProvidesEstimation() bool   { return false }

type doubleSumAggregator struct{ sum float64 }

func (a *doubleSumAggregator) Aggregate(v interface{}) { a.sum += toFloat64(v) }
func (a *doubleSumAggregator) Get() interface{}        { return a.sum }
func (a *doubleSumAggregator) Reset()                  { a.sum = 0 }

type DoubleSumFactory struct{ FactoryName, Field string }

func (f DoubleSumFactory) Name() string             { return f.FactoryName }
func (f DoubleSumFactory) New() Aggregator          { return &doubleSumAggregator{} }
func (f DoubleSumFactory) Combining() Factory       { return f }
func (f DoubleSumFactory) InputType() string        { return "double" }
func (f DoubleSumFactory) FieldName() string        { return f.Field }
func (f DoubleSumFactory) MaxIntermediateSize() int { return 8 }
func (f DoubleSumFactory) ProvidesEstimation() bool { return false }

type countAggregator struct{ n int64 }

func (a *countAggregator) Aggregate(interface{}) { a.n++ }
func (a *countAggregator) Get() interface{}      { return a.n }
func (a *countAggregator) Reset()                { a.n = 0 }

type CountFactory struct{ FactoryName string }

func (f CountFactory) Name() string             { return f.FactoryName }
func (f CountFactory) New() Aggregator          { return &countAggregator{} }
func (f CountFactory) Combining() Factory       { return longSumCombiner{f.FactoryName} }
func (f CountFactory) InputType() string        { return "any" }
func (f CountFactory) FieldName() string        { return "" }
func (f CountFactory) MaxIntermediateSize() int { return 8 }
func (f CountFactory) ProvidesEstimation() bool { return false }

// longSumCombiner merges partial counts by summing them, since Count's
// own Aggregate increments by one per raw row, not per partial count.
type longSumCombiner struct{ name string }

func (c longSumCombiner) Name() string             { return c.name }
func (c longSumCombiner) New() Aggregator          { return &longSumAggregator{} }
func (c longSumCombiner) Combining() Factory       { return c }
func (c longSumCombiner) InputType() string        { return "long" }
func (c longSumCombiner) FieldName() string        { return "" }
func (c longSumCombiner) MaxIntermediateSize() int { return 8 }
func (c longSumCombiner) ProvidesEstimation() bool { return false }

type longMaxAggregator struct {
	max     int64
	touched bool
}

func (a *longMaxAggregator) Aggregate(v interface{}) {
	n := toInt64(v)
	if !a.touched || n > a.max {
		a.max = n
		a.touched = true
	}
}
func (a *longMaxAggregator) Get() interface{} { return a.max }
func (a *longMaxAggregator) Reset()           { a.max = 0; a.touched = false }

type LongMaxFactory struct{ FactoryName, Field string }

func (f LongMaxFactory) Name() string             { return f.FactoryName }
func (f LongMaxFactory) New() Aggregator          { return &longMaxAggregator{} }
func (f LongMaxFactory) Combining() Factory       { return f }
func (f LongMaxFactory) InputType() string        { return "long" }
func (f LongMaxFactory) FieldName() string        { return f.Field }
func (f LongMaxFactory) MaxIntermediateSize() int { return 8 }
func (f LongMaxFactory) ProvidesEstimation() bool { return false }

type longMinAggregator struct {
	min     int64
	touched bool
}

func (a *longMinAggregator) Aggregate(v interface{}) {
	n := toInt64(v)
	if !a.touched || n < a.min {
		a.min = n
		a.touched = true
	}
}
func (a *longMinAggregator) Get() interface{} { return a.min }
func (a *longMinAggregator) Reset()           { a.min = 0; a.touched = false }

type LongMinFactory struct{ FactoryName, Field string }

func (f LongMinFactory) Name() string             { return f.FactoryName }
func (f LongMinFactory) New() Aggregator          { return &longMinAggregator{} }
func (f LongMinFactory) Combining() Factory       { return f }
func (f LongMinFactory) InputType() string        { return "long" }
func (f LongMinFactory) FieldName() string        { return f.Field }
func (f LongMinFactory) MaxIntermediateSize() int { return 8 }
func (f LongMinFactory) ProvidesEstimation() bool { return false }

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case float32:
		return int64(n)
	default:
		return 0
	}
}

func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}
