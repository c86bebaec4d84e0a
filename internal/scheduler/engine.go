package scheduler

import "sort"

// Phase-2 scoring weights.  A candidate slot scores its demand count times
// demandWeight plus at most one adjacency bonus against the member's
// existing assignment: adjacentBonus when a same-day slot sits exactly one
// hour away, nearBonus when exactly two hours away.
const (
	demandWeight  = 10
	adjacentBonus = 6
	nearBonus     = 2
)

// Assignment is one (member, slot) pair produced by Allocate.
type Assignment struct {
	UserID uint64
	SlotID uint64
}

// Stats summarizes an allocation for the admin who triggered the run.
type Stats struct {
	TotalMembers     int `json:"total_members"`
	WithAtLeastOne   int `json:"members_with_at_least_one"`
	WithTwo          int `json:"members_with_two"`
	Unassigned       int `json:"unassigned_members"`
	TotalAssignments int `json:"total_assignments"`
}

// Allocate runs the two-phase greedy allocation and returns the flat
// assignment list plus summary statistics.
//
// Phase 1 maximizes the number of members who receive at least one slot:
// members are processed most-constrained-first (fewest preferences, ties
// by member id), and each takes the still-available preferred slot with
// the lowest demand (ties by slot id).  Phase 2 hands a second slot to
// members who got exactly one, scarcest-remaining-first, scoring each
// candidate by demand and hour adjacency to the member's existing slot.
// A slot taken in either phase is gone for everyone afterwards.
//
// The result is a pure function of the model: no randomness, no clock.
// Running twice on the same model yields the same assignment set.
func (m *DemandModel) Allocate() ([]Assignment, Stats) {
	available := make(map[uint64]bool, len(m.slots))
	for id := range m.slots {
		available[id] = true
	}
	assigned := make(map[uint64][]uint64, len(m.prefs))

	memberIDs := make([]uint64, 0, len(m.prefs))
	for id := range m.prefs {
		memberIDs = append(memberIDs, id)
	}

	// Phase 1: fairness pass.  Fewest options first so constrained members
	// are not starved by flexible ones.
	phase1 := append([]uint64(nil), memberIDs...)
	sort.Slice(phase1, func(i, j int) bool {
		a, b := phase1[i], phase1[j]
		if len(m.prefs[a]) != len(m.prefs[b]) {
			return len(m.prefs[a]) < len(m.prefs[b])
		}
		return a < b
	})
	for _, uid := range phase1 {
		slotID, ok := m.lowestDemandCandidate(uid, available, nil)
		if !ok {
			continue // nothing left from this member's preferences
		}
		assigned[uid] = append(assigned[uid], slotID)
		delete(available, slotID)
	}

	// Phase 2: utilization pass.  Remaining-candidate counts are snapshotted
	// once here; the order does not re-adjust as slots disappear mid-phase.
	remaining := make(map[uint64]int, len(memberIDs))
	for _, uid := range memberIDs {
		n := 0
		for slotID := range m.prefs[uid] {
			if available[slotID] {
				n++
			}
		}
		remaining[uid] = n
	}
	phase2 := append([]uint64(nil), memberIDs...)
	sort.Slice(phase2, func(i, j int) bool {
		a, b := phase2[i], phase2[j]
		if remaining[a] != remaining[b] {
			return remaining[a] < remaining[b]
		}
		return a < b
	})
	for _, uid := range phase2 {
		if len(assigned[uid]) != 1 {
			continue // zero slots: phase 1 already failed them; two: capped
		}
		slotID, ok := m.bestSecondCandidate(uid, available, assigned[uid])
		if !ok {
			continue
		}
		assigned[uid] = append(assigned[uid], slotID)
		delete(available, slotID)
	}

	out := make([]Assignment, 0, len(memberIDs))
	stats := Stats{TotalMembers: len(memberIDs)}
	sort.Slice(memberIDs, func(i, j int) bool { return memberIDs[i] < memberIDs[j] })
	for _, uid := range memberIDs {
		slots := assigned[uid]
		for _, slotID := range slots {
			out = append(out, Assignment{UserID: uid, SlotID: slotID})
		}
		switch {
		case len(slots) >= 2:
			stats.WithTwo++
			stats.WithAtLeastOne++
		case len(slots) == 1:
			stats.WithAtLeastOne++
		}
	}
	stats.Unassigned = stats.TotalMembers - stats.WithAtLeastOne
	stats.TotalAssignments = len(out)
	return out, stats
}

// lowestDemandCandidate picks the member's available preferred slot with
// the lowest demand count, ties broken by lowest slot id.  The exclude
// list holds slots the member already occupies.
func (m *DemandModel) lowestDemandCandidate(userID uint64, available map[uint64]bool, exclude []uint64) (uint64, bool) {
	var best uint64
	bestDemand := 0
	found := false
	for slotID := range m.prefs[userID] {
		if !available[slotID] || contains(exclude, slotID) {
			continue
		}
		d := m.demand[slotID]
		if !found || d < bestDemand || (d == bestDemand && slotID < best) {
			best, bestDemand, found = slotID, d, true
		}
	}
	return best, found
}

// bestSecondCandidate scores each remaining preferred slot for a second
// assignment and returns the highest scorer, ties broken by lowest slot
// id.  Higher demand wins (the slot is contested, better to use it), and
// an hour adjacent to the member's existing slot earns a bonus so weekly
// plans stay practical.
func (m *DemandModel) bestSecondCandidate(userID uint64, available map[uint64]bool, existing []uint64) (uint64, bool) {
	var best uint64
	bestScore := 0
	found := false
	for slotID := range m.prefs[userID] {
		if !available[slotID] || contains(existing, slotID) {
			continue
		}
		score := m.secondSlotScore(slotID, existing)
		if !found || score > bestScore || (score == bestScore && slotID < best) {
			best, bestScore, found = slotID, score, true
		}
	}
	return best, found
}

// secondSlotScore computes demandWeight*demand plus the single largest
// applicable adjacency bonus against the member's existing assignments.
func (m *DemandModel) secondSlotScore(slotID uint64, existing []uint64) int {
	score := m.demand[slotID] * demandWeight
	slot, ok := m.slots[slotID]
	if !ok {
		return score
	}
	bonus := 0
	for _, heldID := range existing {
		held, ok := m.slots[heldID]
		if !ok || held.DayOfWeek != slot.DayOfWeek {
			continue
		}
		dist := held.Hour - slot.Hour
		if dist < 0 {
			dist = -dist
		}
		switch dist {
		case 1:
			if bonus < adjacentBonus {
				bonus = adjacentBonus
			}
		case 2:
			if bonus < nearBonus {
				bonus = nearBonus
			}
		}
	}
	return score + bonus
}

func contains(ids []uint64, id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
