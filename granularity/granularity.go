// Package granularity implements the bucketing functions used to truncate
// row timestamps for rollup (incindex) and to split a segment interval into
// per-bucket cursors (segment).
package granularity

import "time"

// Granularity buckets a millisecond timestamp onto a coarser boundary.
type Granularity int

const (
	// None leaves every timestamp in its own bucket (no truncation).
	None Granularity = iota
	// All collapses every timestamp into a single bucket.
	All
	Second
	Minute
	FifteenMinute
	Hour
	Day
)

func (g Granularity) String() string {
	switch g {
	case None:
		return "NONE"
	case All:
		return "ALL"
	case Second:
		return "SECOND"
	case Minute:
		return "MINUTE"
	case FifteenMinute:
		return "FIFTEEN_MINUTE"
	case Hour:
		return "HOUR"
	case Day:
		return "DAY"
	default:
		return "UNKNOWN"
	}
}

// period returns the bucket width in milliseconds, or 0 for None/All which
// have no fixed period.
func (g Granularity) period() int64 {
	switch g {
	case Second:
		return int64(time.Second / time.Millisecond)
	case Minute:
		return int64(time.Minute / time.Millisecond)
	case FifteenMinute:
		return 15 * int64(time.Minute/time.Millisecond)
	case Hour:
		return int64(time.Hour / time.Millisecond)
	case Day:
		return 24 * int64(time.Hour/time.Millisecond)
	default:
		return 0
	}
}

// Truncate maps a millisecond timestamp onto the start of its bucket.
func (g Granularity) Truncate(tsMillis int64, segmentStart int64) int64 {
	switch g {
	case None:
		return tsMillis
	case All:
		return segmentStart
	default:
		p := g.period()
		// Floor division that also works for tsMillis < 0.
		bucket := tsMillis - ((tsMillis%p + p) % p)
		return bucket
	}
}

// BucketEnd returns the exclusive end of the bucket that starts at
// bucketStart. For None and All, which Buckets treats as one bucket
// spanning the whole interval, that end is segmentEnd.
func (g Granularity) BucketEnd(bucketStart int64, segmentEnd int64) int64 {
	switch g {
	case None, All:
		return segmentEnd
	default:
		return bucketStart + g.period()
	}
}

// Buckets enumerates the bucket-start timestamps covering [start,end) for
// this granularity, in ascending order.
func Buckets(g Granularity, start, end int64) []int64 {
	if start >= end {
		return nil
	}
	if g == All {
		return []int64{start}
	}
	if g == None {
		// NONE covers the whole interval as a single pass-through bucket;
		// per-row truncation is the identity, so callers only need the
		// containing window, not per-millisecond buckets.
		return []int64{start}
	}
	var out []int64
	cur := g.Truncate(start, start)
	for cur < end {
		out = append(out, cur)
		cur += g.period()
	}
	return out
}
