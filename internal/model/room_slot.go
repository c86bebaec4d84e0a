package model

// Grid dimensions for a semester's slot inventory.  The full cartesian
// grid (rooms × days × hours) is generated once when the semester is
// created and is immutable afterwards.
const (
	RoomCount = 2  // practice rooms 1..RoomCount
	FirstHour = 8  // earliest bookable hour of the day
	LastHour  = 21 // latest bookable hour of the day
)

// RoomSlot is one bookable (room, day-of-week, hour) unit belonging to
// exactly one semester.
//
// Fields:
//  ID         – primary key identifier.
//  SemesterID – owning semester.
//  RoomNo     – practice room number, 1-based.
//  DayOfWeek  – 0 (Sunday) through 6 (Saturday).
//  Hour       – start hour of the one-hour slot, FirstHour..LastHour.
type RoomSlot struct {
	ID         uint64 // room_slots.id
	SemesterID uint64 // room_slots.semester_id
	RoomNo     int    // room_slots.room_no
	DayOfWeek  int    // room_slots.day_of_week
	Hour       int    // room_slots.hour
}

// SlotBoardEntry is a RoomSlot augmented with preference information for
// the member viewing the board: how many members selected the slot and
// whether the viewer is one of them.
type SlotBoardEntry struct {
	ID            uint64 `json:"id"`
	RoomNo        int    `json:"room_no"`
	DayOfWeek     int    `json:"day_of_week"`
	Hour          int    `json:"hour"`
	SelectedCount int    `json:"selected_count"`
	SelectedByMe  bool   `json:"selected_by_me"`
}
