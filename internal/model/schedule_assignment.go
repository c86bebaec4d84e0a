package model

// ScheduleAssignment binds one member to one slot inside one batch.  Its
// status mirrors the batch's status at the time of the last write.  Within
// a batch a slot appears in at most one assignment and a member in at most
// two; every write path must preserve both invariants.
//
// Fields:
//  ID         – primary key identifier.
//  BatchID    – owning batch.
//  SemesterID – denormalized semester reference for direct queries.
//  UserID     – assigned member.
//  SlotID     – assigned slot.
//  Status     – proposed or published, mirroring the batch.
type ScheduleAssignment struct {
	ID         uint64 // schedule_assignments.id
	BatchID    uint64 // schedule_assignments.batch_id
	SemesterID uint64 // schedule_assignments.semester_id
	UserID     uint64 // schedule_assignments.user_id
	SlotID     uint64 // schedule_assignments.slot_id
	Status     string // schedule_assignments.status
}

// AssignmentDetail is an assignment joined with its slot and member for
// the admin review screen.
type AssignmentDetail struct {
	ID            uint64 `json:"id"`
	UserID        uint64 `json:"user_id"`
	StudentNumber string `json:"student_number"`
	DisplayName   string `json:"display_name"`
	SlotID        uint64 `json:"slot_id"`
	RoomNo        int    `json:"room_no"`
	DayOfWeek     int    `json:"day_of_week"`
	Hour          int    `json:"hour"`
	Status        string `json:"status"`
}

// MemberAssignment is an assignment joined with its slot for the
// member-facing "my assignment" view.
type MemberAssignment struct {
	ID        uint64 `json:"id"`
	RoomNo    int    `json:"room_no"`
	DayOfWeek int    `json:"day_of_week"`
	Hour      int    `json:"hour"`
}

// GridCell is one cell of the export grid: a semester slot together with
// its assignee in a particular batch, empty when the slot is unassigned.
// The export collaborator renders these into whatever sheet format it
// wants; this service only exposes the joined data.
type GridCell struct {
	SlotID        uint64 `json:"slot_id"`
	RoomNo        int    `json:"room_no"`
	DayOfWeek     int    `json:"day_of_week"`
	Hour          int    `json:"hour"`
	UserID        uint64 `json:"user_id,omitempty"`
	DisplayName   string `json:"display_name,omitempty"`
	StudentNumber string `json:"student_number,omitempty"`
}
