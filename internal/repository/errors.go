// Package repository implements the persistence boundary of the
// scheduler: hand-written SQL over database/sql, one repository per
// entity.  This file defines sentinel errors reused across repositories so
// higher layers can distinguish failure scenarios with errors.Is instead
// of inspecting driver errors.
package repository

import "errors"

// Not-found sentinels, one per entity, returned by Get* lookups.  Find*
// lookups used for occupancy checks return (nil, nil) instead, because an
// absent row is a normal answer there, not a failure.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrSemesterNotFound   = errors.New("semester not found")
	ErrSlotNotFound       = errors.New("slot not found")
	ErrBatchNotFound      = errors.New("schedule batch not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
)

// ErrConflict is returned when an insert or update cannot proceed because
// of conflicting existing state, such as a duplicate student number.
// Handlers translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
