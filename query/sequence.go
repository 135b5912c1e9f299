package query

// Row is one output record flowing through the merge/decoration
// pipeline: a mutable map so post-aggregators can write their own
// output name into it (§4.5 "Evaluated... over a mutable row map").
type Row map[string]interface{}

// Sequence is the lazy, pull-based result abstraction of §5
// ("Results are driven back through a lazy sequence abstraction...
// the consumer's thread drives merge, the workers drive segment-side
// execution"), grounded in bamprovider.Iterator's Scan/Record/Err/Close
// shape: Scan advances and reports availability, Value reads the
// current row, Err reports any terminal error, Close releases
// whatever the sequence held open (cursors, segment tokens).
type Sequence interface {
	Scan() bool
	Value() Row
	Err() error
	Close() error
}

// sliceSequence is the simplest Sequence, wrapping an already-materialized
// slice; used by merge stages that must sort or buffer before yielding
// (e.g. groupBy's sealed-index drain).
type sliceSequence struct {
	rows []Row
	i    int
}

func FromSlice(rows []Row) Sequence { return &sliceSequence{rows: rows, i: -1} }

func (s *sliceSequence) Scan() bool {
	s.i++
	return s.i < len(s.rows)
}
func (s *sliceSequence) Value() Row { return s.rows[s.i] }
func (s *sliceSequence) Err() error { return nil }
func (s *sliceSequence) Close() error { return nil }

// mapSequence adapts inner's rows through fn, lazily -- one row at a
// time, no intermediate buffering (§4.5 "postMergeDecoration" and
// "finalizeResults" are both expressed as a mapSequence over the
// previous stage).
type mapSequence struct {
	inner Sequence
	fn    func(Row) Row
	cur   Row
}

func Map(inner Sequence, fn func(Row) Row) Sequence { return &mapSequence{inner: inner, fn: fn} }

func (s *mapSequence) Scan() bool {
	if !s.inner.Scan() {
		return false
	}
	s.cur = s.fn(s.inner.Value())
	return true
}
func (s *mapSequence) Value() Row  { return s.cur }
func (s *mapSequence) Err() error   { return s.inner.Err() }
func (s *mapSequence) Close() error { return s.inner.Close() }

// filterSequence keeps only rows fn accepts.
type filterSequence struct {
	inner Sequence
	fn    func(Row) bool
	cur   Row
}

func Filter(inner Sequence, fn func(Row) bool) Sequence { return &filterSequence{inner: inner, fn: fn} }

func (s *filterSequence) Scan() bool {
	for s.inner.Scan() {
		if s.fn(s.inner.Value()) {
			s.cur = s.inner.Value()
			return true
		}
	}
	return false
}
func (s *filterSequence) Value() Row  { return s.cur }
func (s *filterSequence) Err() error   { return s.inner.Err() }
func (s *filterSequence) Close() error { return s.inner.Close() }

// concatSequence drains each inner sequence in order before advancing
// to the next, used by mergeUnionAll's plain union-all concatenation.
type concatSequence struct {
	seqs []Sequence
	i    int
}

func Concat(seqs ...Sequence) Sequence { return &concatSequence{seqs: seqs, i: 0} }

func (s *concatSequence) Scan() bool {
	for s.i < len(s.seqs) {
		if s.seqs[s.i].Scan() {
			return true
		}
		s.i++
	}
	return false
}
func (s *concatSequence) Value() Row { return s.seqs[s.i].Value() }
func (s *concatSequence) Err() error {
	for _, seq := range s.seqs {
		if err := seq.Err(); err != nil {
			return err
		}
	}
	return nil
}
func (s *concatSequence) Close() error {
	var first error
	for _, seq := range s.seqs {
		if err := seq.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// WithBaggage tags every row of inner with a fixed set of extra fields
// before they reach the consumer -- the mechanism
// referenceCountingRunner uses to stamp segment-id provenance onto every
// per-segment result row, whether or not bySegment is requested (§6
// response shape "{timestamp, segmentId, interval, rows=[...]}").
func WithBaggage(inner Sequence, baggage Row) Sequence {
	return Map(inner, func(r Row) Row {
		out := make(Row, len(r)+len(baggage))
		for k, v := range r {
			out[k] = v
		}
		for k, v := range baggage {
			out[k] = v
		}
		return out
	})
}

// Drain materializes a Sequence into a slice, closing it afterward.
// Used by merge stages (groupBy, topN) that must see every row before
// they can produce output, and by tests.
func Drain(seq Sequence) ([]Row, error) {
	defer seq.Close()
	var out []Row
	for seq.Scan() {
		out = append(out, seq.Value())
	}
	return out, seq.Err()
}
