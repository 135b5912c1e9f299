// Package segment implements C2: an immutable bundle of columns behind
// a StorageAdapter that manufactures Cursors, plus the reference-
// counting handle that mediates access to a segment whose lifetime is
// governed by an outer timeline this package does not implement.
package segment

import (
	"fmt"

	"github.com/segmentdb/qengine/column"
	"github.com/segmentdb/qengine/granularity"
)

// Identity content-addresses a segment by (dataSource, interval,
// version, partition number), the identity tuple §3 defines.
type Identity struct {
	DataSource string
	Interval   Interval
	Version    int64
	Partition  int32
}

func (id Identity) String() string {
	return fmt.Sprintf("%s_%d-%d_v%d_p%d", id.DataSource, id.Interval.Start, id.Interval.End, id.Version, id.Partition)
}

// Interval is a half-open time range [Start, End) in epoch milliseconds.
type Interval struct {
	Start, End int64
}

// Intersects reports whether i and o overlap as half-open ranges.
func (i Interval) Intersects(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

// Clip narrows i to the overlap with o, returning ok=false if disjoint
// (§4.2 step 1 "clip the requested interval to segment bounds").
func (i Interval) Clip(o Interval) (Interval, bool) {
	if !i.Intersects(o) {
		return Interval{}, false
	}
	start, end := i.Start, i.End
	if o.Start > start {
		start = o.Start
	}
	if o.End < end {
		end = o.End
	}
	return Interval{Start: start, End: end}, true
}

// Metadata carries the aggregator specs that produced a segment, its
// query granularity, and whether it was built with rollup enabled (§3).
type Metadata struct {
	AggregatorNames []string
	QueryGranularity granularity.Granularity
	Rollup           bool
}

// Segment is the immutable bundle of §3: an interval, a column set
// (time column mandatory), a bitmap factory, and metadata. It never
// mutates after construction; concurrent readers share it freely.
type Segment struct {
	ID       Identity
	Interval Interval
	Meta     Metadata

	timeColumn []int64 // per-row bucketed timestamp, ascending, mandatory
	dims       map[string]*column.DictionaryColumn
	metrics    map[string]*column.NumericColumn
	complex    map[string]*column.ComplexColumn
	factory    column.Factory
}

// New constructs a Segment from fully built columns. timeColumn must be
// non-decreasing: callers are responsible for producing rows in time
// order.
func New(id Identity, interval Interval, meta Metadata, timeColumn []int64,
	dims map[string]*column.DictionaryColumn, metrics map[string]*column.NumericColumn,
	complexCols map[string]*column.ComplexColumn) *Segment {
	return &Segment{
		ID:         id,
		Interval:   interval,
		Meta:       meta,
		timeColumn: timeColumn,
		dims:       dims,
		metrics:    metrics,
		complex:    complexCols,
		factory:    column.DefaultFactory,
	}
}

// NumRows is the row count, i.e. the length of the time column.
func (s *Segment) NumRows() int { return len(s.timeColumn) }

// GetMinTime and GetMaxTime bound the segment's occupied timestamps,
// which may be a strict subset of s.Interval (§4.2 StorageAdapter
// contract).
func (s *Segment) GetMinTime() int64 {
	if len(s.timeColumn) == 0 {
		return s.Interval.Start
	}
	return s.timeColumn[0]
}

func (s *Segment) GetMaxTime() int64 {
	if len(s.timeColumn) == 0 {
		return s.Interval.End
	}
	return s.timeColumn[len(s.timeColumn)-1] + 1
}

// DimensionNames and MetricNames list the segment's columns, the
// StorageAdapter "dimension list / metric list" contract (§4.2).
func (s *Segment) DimensionNames() []string {
	names := make([]string, 0, len(s.dims))
	for name := range s.dims {
		names = append(names, name)
	}
	return names
}

func (s *Segment) MetricNames() []string {
	names := make([]string, 0, len(s.metrics))
	for name := range s.metrics {
		names = append(names, name)
	}
	return names
}

// GetDimensionCardinality is part of the StorageAdapter contract (§4.2).
func (s *Segment) GetDimensionCardinality(dim string) int {
	d, ok := s.dims[dim]
	if !ok {
		return 0
	}
	return d.Cardinality()
}

// Capabilities returns the capabilities of a named column, searching
// dimensions, metrics, then complex columns in that order.
func (s *Segment) Capabilities(name string) (column.Capabilities, bool) {
	if d, ok := s.dims[name]; ok {
		return d.Capabilities(), true
	}
	if m, ok := s.metrics[name]; ok {
		return m.Capabilities(), true
	}
	if c, ok := s.complex[name]; ok {
		return c.Capabilities(), true
	}
	return column.Capabilities{}, false
}

func (s *Segment) dimensionColumn(name string) (*column.DictionaryColumn, bool) {
	d, ok := s.dims[name]
	return d, ok
}

func (s *Segment) metricColumn(name string) (*column.NumericColumn, bool) {
	m, ok := s.metrics[name]
	return m, ok
}
