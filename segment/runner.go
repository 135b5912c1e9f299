package segment

import (
	"context"

	"github.com/grailbio/base/traverse"

	"github.com/segmentdb/qengine/qerrors"
)

// Descriptor names one segment to run a per-segment task over: its
// handle, for the reference-counting acquire/release. The interval,
// granularity and filter come from the caller, not from the Descriptor.
type Descriptor struct {
	Handle *Handle
}

// PerSegmentFunc is the per-segment unit of work RunAll drives; it receives the already-acquired segment. Returning a
// qerrors MissingSegment error is the caller's cue (§4.2 "Reference-
// counting runner") to retry the affected descriptor elsewhere.
type PerSegmentFunc func(ctx context.Context, seg *Segment) error

// RunAll acquires each descriptor's handle, invokes fn, and releases on
// every exit path (§3 "release on all exit paths"), fanning out across
// at most parallelism concurrent workers. It is the Go rendering of
// §4.2's "Reference-counting runner" plus §5's bounded worker pool,
// adapted from fieldio.SeekReaders's traverse.Each(len(columns), ...)
// fan-out.
//
// RunAll returns the first error encountered (qerrors.Once semantics,
// §5 "a cancellation signal... workers observe interruption... Partial
// aggregator state is released"); ctx cancellation surfaces as an
// Interrupted error from whichever workers observe it first.
func RunAll(ctx context.Context, descs []Descriptor, parallelism int, fn PerSegmentFunc) error {
	if parallelism <= 0 {
		parallelism = len(descs)
	}
	var once qerrors.Once
	traverse.T{Limit: parallelism}.Each(len(descs), func(i int) error { // nolint: errcheck
		if ctx.Err() != nil {
			once.Set(qerrors.E(qerrors.Interrupted, "segment: context done before acquiring "+descs[i].Handle.Seg.ID.String()))
			return nil
		}
		err := descs[i].Handle.WithAcquired(func(*Token) error {
			if ctx.Err() != nil {
				return qerrors.E(qerrors.Interrupted, "segment: context done while holding "+descs[i].Handle.Seg.ID.String())
			}
			return fn(ctx, descs[i].Handle.Seg)
		})
		if err != nil {
			once.Set(err)
		}
		return nil
	})
	return once.Err()
}
