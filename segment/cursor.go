package segment

import (
	"github.com/segmentdb/qengine/column"
)

// offset is the row-offset-stepping abstraction a Cursor drives. A
// bitmapOffset walks the set bits of a row bitmap; a fullRangeOffset
// walks every row in [0,n). Both compose with a timeWindowOffset
// wrapper (§4.2 step 4).
type offset interface {
	isDone() bool
	advance()
	reset()
	current() int
}

type fullRangeOffset struct {
	n          int
	cur        int
	descending bool
}

func newFullRangeOffset(n int, descending bool) *fullRangeOffset {
	o := &fullRangeOffset{n: n, descending: descending}
	o.reset()
	return o
}

func (o *fullRangeOffset) reset() {
	if o.descending {
		o.cur = o.n - 1
	} else {
		o.cur = 0
	}
}
func (o *fullRangeOffset) isDone() bool {
	if o.descending {
		return o.cur < 0
	}
	return o.cur >= o.n
}
func (o *fullRangeOffset) advance() {
	if o.descending {
		o.cur--
	} else {
		o.cur++
	}
}
func (o *fullRangeOffset) current() int { return o.cur }

// bitmapOffset walks the ascending set bits of a row bitmap; a
// descending cursor traverses the same physically-ascending array in
// reverse order (§3 "a descending cursor traverses a physically
// ascending column by reversed row ids").
type bitmapOffset struct {
	rows       []uint32
	i          int
	descending bool
}

func newBitmapOffset(b *column.Bitmap, descending bool) *bitmapOffset {
	rows := b.ToArray()
	o := &bitmapOffset{rows: rows, descending: descending}
	o.reset()
	return o
}

func (o *bitmapOffset) reset() {
	if o.descending {
		o.i = len(o.rows) - 1
	} else {
		o.i = 0
	}
}
func (o *bitmapOffset) isDone() bool {
	if o.descending {
		return o.i < 0
	}
	return o.i >= len(o.rows)
}
func (o *bitmapOffset) advance() {
	if o.descending {
		o.i--
	} else {
		o.i++
	}
}
func (o *bitmapOffset) current() int { return int(o.rows[o.i]) }

// timeWindowOffset wraps an inner offset, skipping rows whose bucketed
// timestamp falls outside [bucketStart, bucketEnd) (§4.2 step 4). If
// the bucket spans the full segment time range on both sides, callers
// pass equal bounds (0, 0) to disable the check and avoid the per-row
// comparison entirely.
type timeWindowOffset struct {
	inner      offset
	timeColumn []int64
	start, end int64 // inclusive start, exclusive end; start>=end disables the check
}

func newTimeWindowOffset(inner offset, timeColumn []int64, start, end int64) *timeWindowOffset {
	o := &timeWindowOffset{inner: inner, timeColumn: timeColumn, start: start, end: end}
	o.skipToValid()
	return o
}

func (o *timeWindowOffset) checkEnabled() bool { return o.start < o.end }

func (o *timeWindowOffset) inBucket(row int) bool {
	if !o.checkEnabled() {
		return true
	}
	t := o.timeColumn[row]
	return t >= o.start && t < o.end
}

func (o *timeWindowOffset) skipToValid() {
	for !o.inner.isDone() && !o.inBucket(o.inner.current()) {
		o.inner.advance()
	}
}

func (o *timeWindowOffset) isDone() bool { return o.inner.isDone() }
func (o *timeWindowOffset) current() int { return o.inner.current() }
func (o *timeWindowOffset) reset() {
	o.inner.reset()
	o.skipToValid()
}
func (o *timeWindowOffset) advance() {
	o.inner.advance()
	o.skipToValid()
}

// Cursor is the transient, per-granularity-bucket iterator of §3:
// "Emits selectors; isDone/advance/reset step an underlying offset."
// It applies the residual filter (§4.2 step 5) on top of the bitmap-
// filtered/time-windowed offset, and lazily caches one selector per
// column, closing them exactly once when the cursor is discarded.
type Cursor struct {
	seg        *Segment
	off        offset
	residual   residualMatcher
	selectors  map[string]interface{}
	bucketStart, bucketEnd int64
	rowPtr     int // mirrors off.current(); selectors bind to its address so Advance/Reset is visible to already-constructed selectors
}

// residualMatcher evaluates the part of a filter that bitmap planning
// could not answer, against the current cursor row (§4.2 step 5).
type residualMatcher interface {
	MatchesRow(s *Segment, row int) bool
}

// alwaysMatch is the residual matcher used when the entire filter was
// satisfied by the bitmap part, or no filter was given.
type alwaysMatch struct{}

func (alwaysMatch) MatchesRow(*Segment, int) bool { return true }

func newCursor(seg *Segment, off offset, residual residualMatcher, bucketStart, bucketEnd int64) *Cursor {
	if residual == nil {
		residual = alwaysMatch{}
	}
	c := &Cursor{seg: seg, off: off, residual: residual, selectors: make(map[string]interface{}), bucketStart: bucketStart, bucketEnd: bucketEnd}
	c.skipToMatch()
	c.syncRowPtr()
	return c
}

func (c *Cursor) skipToMatch() {
	for !c.off.isDone() && !c.residual.MatchesRow(c.seg, c.off.current()) {
		c.off.advance()
	}
}

func (c *Cursor) syncRowPtr() {
	if !c.off.isDone() {
		c.rowPtr = c.off.current()
	}
}

// IsDone reports whether the cursor has exhausted its bucket.
func (c *Cursor) IsDone() bool { return c.off.isDone() }

// Advance steps to the next qualifying row offset (§3 "an advancing
// cursor emits each qualifying row offset exactly once per traversal").
func (c *Cursor) Advance() {
	if c.off.isDone() {
		return
	}
	c.off.advance()
	c.skipToMatch()
	c.syncRowPtr()
}

// Reset rewinds the cursor to the first qualifying row of its bucket.
func (c *Cursor) Reset() {
	c.off.reset()
	c.skipToMatch()
	c.syncRowPtr()
}

// BucketStart is the bucketed timestamp this cursor's rows share.
func (c *Cursor) BucketStart() int64 { return c.bucketStart }

// Row returns the underlying row offset the cursor currently points
// at; valid only when !IsDone().
func (c *Cursor) Row() int { return c.off.current() }

// DimensionSelector returns (caching) a selector bound to this
// cursor's current row for the given dimension.
func (c *Cursor) DimensionSelector(name string) (column.DimensionSelector, bool) {
	if s, ok := c.selectors[name]; ok {
		return s.(column.DimensionSelector), true
	}
	d, ok := c.seg.dimensionColumn(name)
	if !ok {
		return nil, false
	}
	sel := column.NewDimensionSelector(d, &c.rowPtr)
	c.selectors[name] = sel
	return sel, true
}

// LongMetricSelector returns a LongSelector bound to this cursor's
// current row offset for a numeric metric column.
func (c *Cursor) LongMetricSelector(name string) (column.LongSelector, bool) {
	if s, ok := c.selectors["long:"+name]; ok {
		return s.(column.LongSelector), true
	}
	m, ok := c.seg.metricColumn(name)
	if !ok {
		return nil, false
	}
	sel := column.NewLongSelector(m, &c.rowPtr)
	c.selectors["long:"+name] = sel
	return sel, true
}

// DoubleMetricSelector returns a DoubleSelector bound to this cursor's
// current row offset for a numeric metric column.
func (c *Cursor) DoubleMetricSelector(name string) (column.DoubleSelector, bool) {
	if s, ok := c.selectors["double:"+name]; ok {
		return s.(column.DoubleSelector), true
	}
	m, ok := c.seg.metricColumn(name)
	if !ok {
		return nil, false
	}
	sel := column.NewDoubleSelector(m, &c.rowPtr)
	c.selectors["double:"+name] = sel
	return sel, true
}

// StringValue resolves the current row's value for a dimension or
// metric column as a string, the same rendering rowContext.StringValue
// uses for residual filter evaluation; package query's DimensionSpec
// extraction composes through this rather than duplicating the
// dimension/metric dispatch.
func (c *Cursor) StringValue(col string) string {
	if c.off.isDone() {
		return ""
	}
	return rowContext{seg: c.seg, row: c.rowPtr}.StringValue(col)
}

// MetricColumn exposes the raw numeric column for callers (e.g.
// aggregator Aggregate calls) that want offset-addressed access rather
// than a cursor-bound selector.
func (c *Cursor) MetricColumn(name string) (*column.NumericColumn, bool) {
	return c.seg.metricColumn(name)
}

// Close releases any lazily cached per-column readers. Column readers
// here are plain in-memory structs with nothing to close, but the hook
// exists so a future mmapped/streamed column implementation has a
// single place to release resources exactly once (§4.2 "on cursor
// close all readers are closed exactly once").
func (c *Cursor) Close() {
	for k := range c.selectors {
		delete(c.selectors, k)
	}
}
