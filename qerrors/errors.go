// Package qerrors defines the error kinds of §7, shared by every layer
// (incindex, segment, query) so that a worker fan-out in one layer can
// propagate a typed error the merge consumer in another layer knows how
// to react to (cancel siblings, retry a segment, decimate logging).
//
// It is built on github.com/grailbio/base/errors, the teacher's own
// error-handling dependency (observed in encoding/pam/fieldio/reader.go:
// `e.Kind == errors.NotExist`, and markduplicates/mark_duplicates.go's
// `errors.Once{}` accumulator).
package qerrors

import (
	baseerrors "github.com/grailbio/base/errors"
)

// Kind discriminates the six error kinds of §7. Each maps onto a
// baseerrors.Kind so existing *errors.Error-aware code (e.g. a
// recoverable-vs-fatal switch) keeps working, while Kind gives call
// sites the exact vocabulary spec.md uses.
type Kind int

const (
	// InvalidQuery: unparseable or semantically inconsistent request.
	// Surfaced to caller; not retried.
	InvalidQuery Kind = iota
	// ParseError: an input row cannot be parsed during ingestion.
	ParseError
	// MissingSegment: a segment handle could not be acquired.
	MissingSegment
	// Interrupted: cancellation, timeout, or thread interruption.
	Interrupted
	// CapacityExceeded: incremental index passed maxRowsInMemory or
	// maxOccupationInMemory.
	CapacityExceeded
	// Internal: invariant violation.
	Internal
)

func (k Kind) String() string {
	switch k {
	case InvalidQuery:
		return "invalid-query"
	case ParseError:
		return "parse-error"
	case MissingSegment:
		return "missing-segment"
	case Interrupted:
		return "interrupted"
	case CapacityExceeded:
		return "capacity-exceeded"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

func (k Kind) baseKind() baseerrors.Kind {
	switch k {
	case InvalidQuery, ParseError:
		return baseerrors.Invalid
	case MissingSegment:
		return baseerrors.NotExist
	case Interrupted:
		return baseerrors.Canceled
	case CapacityExceeded:
		return baseerrors.Precondition
	default:
		return baseerrors.Internal
	}
}

// Error is a qerrors.Kind-tagged error carrying the diagnostic context
// §7 requires for the `internal` kind (query id, segment id) and usable
// for every other kind too.
type Error struct {
	Kind    Kind
	QueryID string
	SegID   string
	inner   *baseerrors.Error
}

func (e *Error) Error() string { return e.inner.Error() }
func (e *Error) Unwrap() error { return e.inner.Err }

// E constructs a qerrors.Error the way github.com/grailbio/base/errors.E
// builds a *baseerrors.Error: args may include an underlying error, a
// message, and context values; the Kind is always explicit here rather
// than inferred, since spec.md's six kinds are an exhaustive, engine-
// specific vocabulary baseerrors.Kind doesn't carry on its own.
func E(kind Kind, args ...interface{}) *Error {
	baseArgs := append([]interface{}{kind.baseKind()}, args...)
	return &Error{Kind: kind, inner: baseerrors.E(baseArgs...)}
}

// WithQuery and WithSegment attach diagnostic context, used by the
// `internal` kind's "surfaces with a diagnostic context including query
// id and segment id" requirement.
func (e *Error) WithQuery(queryID string) *Error { e.QueryID = queryID; return e }
func (e *Error) WithSegment(segID string) *Error { e.SegID = segID; return e }

// Is reports whether err carries the given Kind (mirrors the
// `e.Kind == errors.NotExist` idiom from fieldio.Reader.NewReader).
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}

// Once accumulates the first error reported to it and discards the
// rest, the same accumulator idiom as fieldio.Reader.err and
// markduplicates.mark_duplicates's errors.Once{} -- used by the
// segment.RunAll worker fan-out, which must surface only the first
// failure to the merge consumer.
type Once struct {
	inner baseerrors.Once
}

func (o *Once) Set(err error) { o.inner.Set(err) }
func (o *Once) Err() error    { return o.inner.Err() }
