// Package scheduler implements the practice-room allocation engine: a
// demand model derived from one semester's slot inventory and member
// preferences, and a deterministic two-phase greedy allocator over it.
// Everything in this package is pure computation; persistence of the
// resulting batch is the service layer's job.
package scheduler

import "errors"

// ErrNoData is returned when a run has nothing to work with: the semester
// has no slots, or no member submitted a valid preference.  The caller
// should surface this as a distinct condition (create slots first, or wait
// for submissions) rather than a generic failure.
var ErrNoData = errors.New("no slots or member preferences to schedule")

// Slot is the subset of a room slot the engine cares about.
type Slot struct {
	ID        uint64
	RoomNo    int
	DayOfWeek int
	Hour      int
}

// Preference is one (member, slot) interest pair as loaded from storage.
type Preference struct {
	UserID uint64
	SlotID uint64
}

// DemandModel is the computation-ready view of one semester's scheduling
// input.  It is rebuilt from scratch on every run — preferences may have
// changed between runs — and is immutable after construction.
type DemandModel struct {
	slots  map[uint64]Slot            // valid slots by id
	demand map[uint64]int             // slot id -> number of members who selected it
	prefs  map[uint64]map[uint64]bool // member id -> set of valid selected slot ids
}

// BuildDemandModel derives a DemandModel from the semester's slot rows and
// preference rows.  Preferences referencing slots outside the semester are
// dropped (stale references must not skew demand), and only members left
// with at least one valid preference participate in allocation.  Returns
// ErrNoData when the slot inventory is empty or no member has a valid
// preference.
func BuildDemandModel(slots []Slot, prefs []Preference) (*DemandModel, error) {
	if len(slots) == 0 {
		return nil, ErrNoData
	}

	m := &DemandModel{
		slots:  make(map[uint64]Slot, len(slots)),
		demand: make(map[uint64]int),
		prefs:  make(map[uint64]map[uint64]bool),
	}
	for _, s := range slots {
		m.slots[s.ID] = s
	}
	for _, p := range prefs {
		if _, ok := m.slots[p.SlotID]; !ok {
			continue // stale reference to a slot outside this semester
		}
		set := m.prefs[p.UserID]
		if set == nil {
			set = make(map[uint64]bool)
			m.prefs[p.UserID] = set
		}
		if !set[p.SlotID] {
			set[p.SlotID] = true
			m.demand[p.SlotID]++
		}
	}
	if len(m.prefs) == 0 {
		return nil, ErrNoData
	}
	return m, nil
}

// MemberCount returns the number of members participating in allocation.
func (m *DemandModel) MemberCount() int { return len(m.prefs) }

// Demand returns how many members selected the given slot.
func (m *DemandModel) Demand(slotID uint64) int { return m.demand[slotID] }

// HasPreference reports whether the member holds a valid preference for
// the slot.
func (m *DemandModel) HasPreference(userID, slotID uint64) bool {
	return m.prefs[userID][slotID]
}
