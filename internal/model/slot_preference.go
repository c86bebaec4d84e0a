package model

// SlotPreference records one member's declared interest in one slot for a
// semester.  A member may hold any number of preferences per semester; a
// submission wholly replaces the member's prior set, it never merges.
//
// Fields:
//  ID         – primary key identifier.
//  SemesterID – semester the preference applies to.
//  UserID     – member who declared the interest.
//  SlotID     – slot of interest.
type SlotPreference struct {
	ID         uint64 // slot_preferences.id
	SemesterID uint64 // slot_preferences.semester_id
	UserID     uint64 // slot_preferences.user_id
	SlotID     uint64 // slot_preferences.slot_id
}
