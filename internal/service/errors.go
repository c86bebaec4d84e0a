// Package service implements the scheduling use cases on top of the
// repository layer: semester and member provisioning, preference
// submission, the batch lifecycle (run → review/edit → publish) and the
// export projection.  Every operation runs as one TxManager unit of work,
// so a mid-operation failure leaves no partial state.
package service

import "errors"

// Error kinds of the scheduling operations.  Callers classify with
// errors.Is; the wrapped message carries the operation-specific detail.
// The four kinds map onto the HTTP layer as 400 / 404 / 409 / 400-no-data,
// and anything outside them is an unexpected storage failure (500).
var (
	// ErrInvalidInput marks malformed or out-of-range request values,
	// rejected before any state is touched.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a missing semester, batch, slot, member or
	// assignment.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks operations that would violate a batch invariant:
	// occupied slots, duplicate (member, slot) pairs, edits to published
	// batches.  The caller may retry with different parameters; nothing is
	// resolved silently.
	ErrConflict = errors.New("conflict")
	// ErrNoData marks a run against a semester with no slot inventory or
	// no member preferences — distinct from conflict, since the fix is to
	// create slots or wait for submissions.
	ErrNoData = errors.New("no data")
)
