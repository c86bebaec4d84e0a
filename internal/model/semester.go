package model

import "time"

// Semester is the scheduling period.  At most one semester is active at a
// time; the active one is the default target for every scheduling
// operation that does not name a semester explicitly.  Semesters are never
// deleted, only deactivated when a newer one is activated.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – human readable label, e.g. "2026 Spring".
//  StartDate – first day of the semester (date only).
//  EndDate   – last day of the semester (date only).
//  IsActive  – whether this is the current scheduling default.
//  CreatedAt – timestamp when the semester was created.
type Semester struct {
	ID        uint64    // semesters.id
	Name      string    // semesters.name
	StartDate string    // semesters.start_date (YYYY-MM-DD)
	EndDate   string    // semesters.end_date (YYYY-MM-DD)
	IsActive  bool      // semesters.is_active
	CreatedAt time.Time // semesters.created_at
}
