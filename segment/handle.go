package segment

import (
	"sync/atomic"

	"github.com/segmentdb/qengine/qerrors"
)

// Handle mediates access to a Segment with a shared, atomically
// mutated reference count (§4.2, §5 "a segment's reference count is
// shared; mutation is atomic increment/decrement"). Handle itself is
// safe for concurrent use; each successful Acquire must be paired with
// exactly one Release.
type Handle struct {
	Seg        *Segment
	refs       int64 // atomic; live reference count
	retracted  int32 // atomic bool
}

// NewHandle wraps seg with a fresh, live (refs==0) handle.
func NewHandle(seg *Segment) *Handle {
	return &Handle{Seg: seg}
}

// Token is the opaque close-once proof of one successful Acquire (§5
// "readers hold an opaque close-once token obtained from the
// increment"). Calling Release more than once on the same Token is a
// programming error; it is guarded to be a safe no-op rather than
// double-decrementing a shared counter.
type Token struct {
	h        *Handle
	released int32 // atomic bool
}

// Release gives back this token's increment. Safe to call multiple
// times or on exit paths guarded by defer; only the first call has any
// effect.
func (t *Token) Release() {
	if t == nil {
		return
	}
	if atomic.CompareAndSwapInt32(&t.released, 0, 1) {
		atomic.AddInt64(&t.h.refs, -1)
	}
}

// Acquire increments the handle's reference count and returns a Token
// good for exactly one Release, unless the segment has been retracted,
// in which case it returns a missing-segment error the caller should
// treat as a cue to retry against a fresh segment descriptor (§4.2
// "Reference-counting runner").
func (h *Handle) Acquire() (*Token, error) {
	if atomic.LoadInt32(&h.retracted) != 0 {
		return nil, qerrors.E(qerrors.MissingSegment, "segment: handle retracted for "+h.Seg.ID.String())
	}
	atomic.AddInt64(&h.refs, 1)
	// Re-check retraction: a Retract racing between our load and our
	// increment must not let an Acquire succeed against a segment that
	// is already torn down from the caller's point of view.
	if atomic.LoadInt32(&h.retracted) != 0 {
		atomic.AddInt64(&h.refs, -1)
		return nil, qerrors.E(qerrors.MissingSegment, "segment: handle retracted for "+h.Seg.ID.String())
	}
	return &Token{h: h}, nil
}

// Retract marks the handle retracted: all outstanding tokens remain
// valid to Release, but no further Acquire succeeds. Retract is a
// no-op if called more than once.
func (h *Handle) Retract() {
	atomic.StoreInt32(&h.retracted, 1)
}

// RefCount reports the current live reference count; exposed for tests
// and diagnostics only, never for acquire/release decisions outside
// this file.
func (h *Handle) RefCount() int64 {
	return atomic.LoadInt64(&h.refs)
}

// WithAcquired runs fn with a Token held, releasing it on every exit
// path including a panic unwinding through fn -- the "scoped
// acquisition" pattern of §3 ("release on all exit paths") rendered as
// a single call instead of relying on every call site remembering
// defer.
func (h *Handle) WithAcquired(fn func(*Token) error) error {
	tok, err := h.Acquire()
	if err != nil {
		return err
	}
	defer tok.Release()
	return fn(tok)
}
