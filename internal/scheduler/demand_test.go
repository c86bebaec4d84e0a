package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDemandModel_NoSlots(t *testing.T) {
	_, err := BuildDemandModel(nil, []Preference{{UserID: 1, SlotID: 1}})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestBuildDemandModel_NoPreferences(t *testing.T) {
	slots := []Slot{{ID: 1, RoomNo: 1, DayOfWeek: 0, Hour: 8}}

	_, err := BuildDemandModel(slots, nil)
	assert.ErrorIs(t, err, ErrNoData)

	// Preferences pointing at slots outside the inventory count as none.
	_, err = BuildDemandModel(slots, []Preference{{UserID: 1, SlotID: 99}})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestBuildDemandModel_DropsStaleAndDuplicatePreferences(t *testing.T) {
	slots := []Slot{
		{ID: 1, RoomNo: 1, DayOfWeek: 0, Hour: 8},
		{ID: 2, RoomNo: 1, DayOfWeek: 0, Hour: 9},
	}
	prefs := []Preference{
		{UserID: 10, SlotID: 1},
		{UserID: 10, SlotID: 1}, // duplicate row, must not double-count demand
		{UserID: 10, SlotID: 99}, // stale slot from a previous semester
		{UserID: 11, SlotID: 1},
		{UserID: 12, SlotID: 99}, // only stale prefs: excluded from the model
	}

	m, err := BuildDemandModel(slots, prefs)
	require.NoError(t, err)

	assert.Equal(t, 2, m.MemberCount())
	assert.Equal(t, 2, m.Demand(1))
	assert.Equal(t, 0, m.Demand(2))
	assert.Equal(t, 0, m.Demand(99))
	assert.True(t, m.HasPreference(10, 1))
	assert.False(t, m.HasPreference(10, 99))
	assert.False(t, m.HasPreference(12, 99))
}
