package query

import (
	"context"
	"sync"

	"github.com/segmentdb/qengine/qerrors"
)

// Watcher is the broker-wide cancellation registry of §7: "Timeout,
// explicit cancellation, and thread interruption all collapse into the
// Interrupted error kind at the point a running query observes them."
// One Watcher is shared across all in-flight queries; each query
// registers under its own id, and the per-segment layer
// (segment.RunAll, perSegmentRunner) takes the returned context.Context
// so a single Cancel call unwinds the whole fan-out. The merge stages
// take no context and do not observe Cancel.
type Watcher struct {
	mu      sync.Mutex
	entries map[string]context.CancelFunc
}

// NewWatcher returns an empty Watcher.
func NewWatcher() *Watcher {
	return &Watcher{entries: make(map[string]context.CancelFunc)}
}

// Register derives a cancelable, optionally deadline-bound context from
// parent for queryID and records its CancelFunc. The returned done func
// must be deferred by the caller to deregister the entry once the query
// completes normally, so Cancel calls after completion are harmless
// no-ops rather than registry leaks.
func (w *Watcher) Register(parent context.Context, queryID string) (ctx context.Context, done func()) {
	ctx, cancel := context.WithCancel(parent)
	w.mu.Lock()
	w.entries[queryID] = cancel
	w.mu.Unlock()
	return ctx, func() {
		w.mu.Lock()
		delete(w.entries, queryID)
		w.mu.Unlock()
		cancel()
	}
}

// Cancel unwinds the named query's context, if still registered. Every
// blocking consumer of that context observes ctx.Err() and must
// translate it to qerrors.Interrupted before returning (the translation
// itself lives at each call site -- segment.RunAll and
// perSegmentRunner -- since only they know what partial work to
// discard).
func (w *Watcher) Cancel(queryID string) {
	w.mu.Lock()
	cancel, ok := w.entries[queryID]
	w.mu.Unlock()
	if ok {
		cancel()
	}
}

// Active reports whether queryID is currently registered.
func (w *Watcher) Active(queryID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.entries[queryID]
	return ok
}

// AsInterrupted maps a context error to qerrors.Interrupted, the
// collapse point §7 describes; non-context errors pass through
// unchanged.
func AsInterrupted(queryID string, err error) error {
	if err == context.Canceled || err == context.DeadlineExceeded {
		return qerrors.E(qerrors.Interrupted, err).WithQuery(queryID)
	}
	return err
}
