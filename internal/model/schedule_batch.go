package model

import "time"

// Batch status values.  A batch moves from proposed to published exactly
// once; published is terminal and freezes the batch and its rows.
const (
	BatchProposed  = "proposed"
	BatchPublished = "published"
)

// ScheduleBatch is one versioned snapshot of slot→member assignments for a
// semester.  At most one proposed batch exists per semester (a new run
// replaces it); any number of published batches accumulate as history, and
// the most recently published one is the member-facing schedule.
//
// Fields:
//  ID          – primary key identifier.
//  SemesterID  – semester the batch schedules.
//  Status      – proposed or published.
//  CreatedBy   – admin who triggered the run (nullable for system runs).
//  PublishedBy – admin who published, nil while proposed.
//  Note        – free-text note recorded at creation.
//  CreatedAt   – timestamp when the run created the batch.
//  PublishedAt – timestamp of publication, nil while proposed.
type ScheduleBatch struct {
	ID          uint64     // schedule_batches.id
	SemesterID  uint64     // schedule_batches.semester_id
	Status      string     // schedule_batches.status
	CreatedBy   *uint64    // schedule_batches.created_by (nullable)
	PublishedBy *uint64    // schedule_batches.published_by (nullable)
	Note        string     // schedule_batches.note
	CreatedAt   time.Time  // schedule_batches.created_at
	PublishedAt *time.Time // schedule_batches.published_at (nullable)
}
