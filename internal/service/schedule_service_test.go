package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/club-practice-scheduler/internal/model"
)

func newScheduleService(st *memStore) *ScheduleService {
	return NewScheduleService(newMemTxManager(st))
}

func TestGenerateSchedule_NoActiveSemester(t *testing.T) {
	st := newMemStore()
	svc := newScheduleService(st)

	_, err := svc.GenerateSchedule(context.Background(), 0, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGenerateSchedule_NoSlots(t *testing.T) {
	st := newMemStore()
	st.addSemester("2026 Spring", true)
	svc := newScheduleService(st)

	_, err := svc.GenerateSchedule(context.Background(), 0, 1)
	assert.ErrorIs(t, err, ErrNoData)
	assert.Empty(t, st.batches)
}

func TestGenerateSchedule_NoPreferences(t *testing.T) {
	st := newMemStore()
	sem := st.addSemester("2026 Spring", true)
	st.addSlot(sem.ID, 1, 0, 8)
	svc := newScheduleService(st)

	_, err := svc.GenerateSchedule(context.Background(), 0, 1)
	assert.ErrorIs(t, err, ErrNoData)
	assert.Empty(t, st.batches)
}

func TestGenerateSchedule_CreatesProposedBatch(t *testing.T) {
	st := newMemStore()
	sem := st.addSemester("2026 Spring", true)
	m1 := st.addMember("s001", "Ada")
	m2 := st.addMember("s002", "Ben")
	m3 := st.addMember("s003", "Cleo")
	s1 := st.addSlot(sem.ID, 1, 0, 8)
	s2 := st.addSlot(sem.ID, 1, 0, 9)
	s3 := st.addSlot(sem.ID, 1, 0, 10)
	// Ring of overlapping preferences: every slot has demand 2.
	st.addPref(sem.ID, m1.ID, s1.ID)
	st.addPref(sem.ID, m1.ID, s2.ID)
	st.addPref(sem.ID, m2.ID, s2.ID)
	st.addPref(sem.ID, m2.ID, s3.ID)
	st.addPref(sem.ID, m3.ID, s3.ID)
	st.addPref(sem.ID, m3.ID, s1.ID)
	svc := newScheduleService(st)

	result, err := svc.GenerateSchedule(context.Background(), 0, 42)
	require.NoError(t, err)

	assert.Equal(t, sem.ID, result.SemesterID)
	assert.Equal(t, 3, result.Stats.TotalMembers)
	assert.Equal(t, 3, result.Stats.WithAtLeastOne)
	assert.Equal(t, 0, result.Stats.Unassigned)
	assert.Equal(t, 3, result.Stats.TotalAssignments)

	batch := st.batches[result.BatchID]
	require.NotNil(t, batch)
	assert.Equal(t, model.BatchProposed, batch.Status)
	assert.Equal(t, "Auto-generated by fairness-first scheduler", batch.Note)
	require.NotNil(t, batch.CreatedBy)
	assert.Equal(t, uint64(42), *batch.CreatedBy)

	// Equal demand everywhere: ties resolve to each member's lowest slot id.
	bySlot := map[uint64]uint64{}
	for _, a := range st.batchAssignments(batch.ID) {
		assert.Equal(t, model.BatchProposed, a.Status)
		bySlot[a.SlotID] = a.UserID
	}
	assert.Equal(t, m1.ID, bySlot[s1.ID])
	assert.Equal(t, m2.ID, bySlot[s2.ID])
	assert.Equal(t, m3.ID, bySlot[s3.ID])
}

func TestGenerateSchedule_RerunReplacesProposedBatch(t *testing.T) {
	st := newMemStore()
	sem := st.addSemester("2026 Spring", true)
	m := st.addMember("s001", "Ada")
	s1 := st.addSlot(sem.ID, 1, 0, 8)
	st.addPref(sem.ID, m.ID, s1.ID)
	svc := newScheduleService(st)

	first, err := svc.GenerateSchedule(context.Background(), 0, 1)
	require.NoError(t, err)
	second, err := svc.GenerateSchedule(context.Background(), 0, 1)
	require.NoError(t, err)

	assert.NotEqual(t, first.BatchID, second.BatchID)
	assert.Len(t, st.proposedBatches(sem.ID), 1)
	assert.Empty(t, st.batchAssignments(first.BatchID))
	assert.Len(t, st.batchAssignments(second.BatchID), 1)
}

// manualFixture seeds a proposed batch with two members and three slots
// for the manual-edit tests.  Member A holds slot 1, member B holds
// slot 2; slot 3 is free.
type manualFixture struct {
	st         *memStore
	svc        *ScheduleService
	sem        *model.Semester
	memberA    *model.User
	memberB    *model.User
	s1, s2, s3 *model.RoomSlot
	batch      *model.ScheduleBatch
	aA, aB     *model.ScheduleAssignment
}

func newManualFixture(t *testing.T) *manualFixture {
	t.Helper()
	st := newMemStore()
	f := &manualFixture{st: st, svc: newScheduleService(st)}
	f.sem = st.addSemester("2026 Spring", true)
	f.memberA = st.addMember("s001", "Ada")
	f.memberB = st.addMember("s002", "Ben")
	f.s1 = st.addSlot(f.sem.ID, 1, 0, 8)
	f.s2 = st.addSlot(f.sem.ID, 1, 0, 9)
	f.s3 = st.addSlot(f.sem.ID, 2, 3, 15)
	f.batch = st.addBatch(f.sem.ID, model.BatchProposed)
	f.aA = st.addAssignment(f.batch.ID, f.sem.ID, f.memberA.ID, f.s1.ID, model.BatchProposed)
	f.aB = st.addAssignment(f.batch.ID, f.sem.ID, f.memberB.ID, f.s2.ID, model.BatchProposed)
	return f
}

func TestCreateAssignment_Idempotent(t *testing.T) {
	f := newManualFixture(t)

	// Same pair as the existing row, batch resolved implicitly: succeeds
	// without creating anything.
	a, created, err := f.svc.CreateAssignment(context.Background(), CreateAssignmentInput{
		UserID: f.memberA.ID,
		SlotID: f.s1.ID,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, f.aA.ID, a.ID)
	assert.Len(t, f.st.batchAssignments(f.batch.ID), 2)
}

func TestCreateAssignment_NewRow(t *testing.T) {
	f := newManualFixture(t)

	a, created, err := f.svc.CreateAssignment(context.Background(), CreateAssignmentInput{
		BatchID: f.batch.ID,
		UserID:  f.memberA.ID,
		SlotID:  f.s3.ID,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.BatchProposed, a.Status)
	assert.Len(t, f.st.batchAssignments(f.batch.ID), 3)
}

func TestCreateAssignment_OccupiedSlotConflict(t *testing.T) {
	f := newManualFixture(t)

	_, _, err := f.svc.CreateAssignment(context.Background(), CreateAssignmentInput{
		UserID: f.memberA.ID,
		SlotID: f.s2.ID, // held by member B
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateAssignment_TwoSlotCap(t *testing.T) {
	f := newManualFixture(t)
	f.st.addAssignment(f.batch.ID, f.sem.ID, f.memberA.ID, f.s3.ID, model.BatchProposed)
	s4 := f.st.addSlot(f.sem.ID, 2, 4, 16)

	_, _, err := f.svc.CreateAssignment(context.Background(), CreateAssignmentInput{
		UserID: f.memberA.ID,
		SlotID: s4.ID,
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateAssignment_UnknownMember(t *testing.T) {
	f := newManualFixture(t)

	_, _, err := f.svc.CreateAssignment(context.Background(), CreateAssignmentInput{
		UserID: 9999,
		SlotID: f.s3.ID,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMoveAssignment_FreeTarget(t *testing.T) {
	f := newManualFixture(t)

	result, err := f.svc.MoveAssignment(context.Background(), MoveAssignmentInput{
		AssignmentID: f.aA.ID,
		TargetSlotID: f.s3.ID,
	})
	require.NoError(t, err)
	assert.False(t, result.Swapped)
	assert.Equal(t, f.s3.ID, result.SlotID)
	assert.Equal(t, f.s3.ID, f.st.assignments[f.aA.ID].SlotID)
}

func TestMoveAssignment_OccupiedWithoutSwap(t *testing.T) {
	f := newManualFixture(t)

	_, err := f.svc.MoveAssignment(context.Background(), MoveAssignmentInput{
		AssignmentID:   f.aA.ID,
		TargetSlotID:   f.s2.ID,
		SwapIfOccupied: false,
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, f.s1.ID, f.st.assignments[f.aA.ID].SlotID)
}

func TestMoveAssignment_SwapsOccupiedTarget(t *testing.T) {
	f := newManualFixture(t)

	result, err := f.svc.MoveAssignment(context.Background(), MoveAssignmentInput{
		AssignmentID:   f.aA.ID,
		TargetSlotID:   f.s2.ID,
		SwapIfOccupied: true,
	})
	require.NoError(t, err)
	assert.True(t, result.Swapped)
	assert.Equal(t, f.aB.ID, result.SwappedWithID)
	assert.Equal(t, f.s2.ID, f.st.assignments[f.aA.ID].SlotID)
	assert.Equal(t, f.s1.ID, f.st.assignments[f.aB.ID].SlotID)
}

func TestMoveAssignment_SwapRejectedWhenOccupantWouldHoldDuplicate(t *testing.T) {
	f := newManualFixture(t)
	// Member A holds both slot 1 and slot 3.  Moving the slot-1 row onto
	// slot 3 would hand its occupant (A again) a slot they already hold,
	// so the swap is rejected and nothing changes.
	extra := f.st.addAssignment(f.batch.ID, f.sem.ID, f.memberA.ID, f.s3.ID, model.BatchProposed)

	_, err := f.svc.MoveAssignment(context.Background(), MoveAssignmentInput{
		AssignmentID:   f.aA.ID,
		TargetSlotID:   f.s3.ID,
		SwapIfOccupied: true,
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, f.s1.ID, f.st.assignments[f.aA.ID].SlotID)
	assert.Equal(t, f.s3.ID, f.st.assignments[extra.ID].SlotID)
}

func TestMoveAssignment_SwapRejectedWhenMoverWouldHoldDuplicate(t *testing.T) {
	f := newManualFixture(t)
	// Mirror case: moving member A's slot-3 row onto their own slot-1 row
	// must be rejected the same way regardless of which side is checked
	// first.
	extra := f.st.addAssignment(f.batch.ID, f.sem.ID, f.memberA.ID, f.s3.ID, model.BatchProposed)

	_, err := f.svc.MoveAssignment(context.Background(), MoveAssignmentInput{
		AssignmentID:   extra.ID,
		TargetSlotID:   f.s1.ID,
		SwapIfOccupied: true,
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, f.s1.ID, f.st.assignments[f.aA.ID].SlotID)
	assert.Equal(t, f.s3.ID, f.st.assignments[extra.ID].SlotID)
}

func TestMoveAssignment_PublishedBatchRejected(t *testing.T) {
	f := newManualFixture(t)
	f.st.batches[f.batch.ID].Status = model.BatchPublished

	_, err := f.svc.MoveAssignment(context.Background(), MoveAssignmentInput{
		AssignmentID: f.aA.ID,
		TargetSlotID: f.s3.ID,
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMoveAssignment_TargetInOtherSemester(t *testing.T) {
	f := newManualFixture(t)
	other := f.st.addSemester("2026 Fall", false)
	foreign := f.st.addSlot(other.ID, 1, 0, 8)

	_, err := f.svc.MoveAssignment(context.Background(), MoveAssignmentInput{
		AssignmentID: f.aA.ID,
		TargetSlotID: foreign.ID,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteAssignment(t *testing.T) {
	f := newManualFixture(t)

	require.NoError(t, f.svc.DeleteAssignment(context.Background(), f.aA.ID))
	assert.Len(t, f.st.batchAssignments(f.batch.ID), 1)

	assert.ErrorIs(t, f.svc.DeleteAssignment(context.Background(), f.aA.ID), ErrNotFound)
}

func TestDeleteAssignment_PublishedBatchRejected(t *testing.T) {
	f := newManualFixture(t)
	f.st.batches[f.batch.ID].Status = model.BatchPublished

	assert.ErrorIs(t, f.svc.DeleteAssignment(context.Background(), f.aA.ID), ErrConflict)
}

func TestPublishBatch_FlipsBatchAndAssignments(t *testing.T) {
	st := newMemStore()
	sem := st.addSemester("2026 Spring", true)
	m7 := st.addMember("s007", "Greta")
	m9 := st.addMember("s009", "Ines")
	s1 := st.addSlot(sem.ID, 1, 0, 8)
	s2 := st.addSlot(sem.ID, 1, 0, 9)
	batch := st.addBatch(sem.ID, model.BatchProposed)
	a1 := st.addAssignment(batch.ID, sem.ID, m7.ID, s1.ID, model.BatchProposed)
	st.addAssignment(batch.ID, sem.ID, m9.ID, s2.ID, model.BatchProposed)
	svc := newScheduleService(st)

	result, err := svc.PublishBatch(context.Background(), batch.ID, 42)
	require.NoError(t, err)

	assert.Equal(t, []uint64{m7.ID, m9.ID}, result.UserIDs)
	assert.Equal(t, "2026 Spring", result.SemesterName)

	published := st.batches[batch.ID]
	assert.Equal(t, model.BatchPublished, published.Status)
	require.NotNil(t, published.PublishedBy)
	assert.Equal(t, uint64(42), *published.PublishedBy)
	assert.NotNil(t, published.PublishedAt)
	for _, a := range st.batchAssignments(batch.ID) {
		assert.Equal(t, model.BatchPublished, a.Status)
	}

	// Published means frozen: edits and re-publishing are conflicts.
	assert.ErrorIs(t, svc.DeleteAssignment(context.Background(), a1.ID), ErrConflict)
	_, err = svc.PublishBatch(context.Background(), batch.ID, 42)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestPublishBatch_UnknownBatch(t *testing.T) {
	st := newMemStore()
	svc := newScheduleService(st)

	_, err := svc.PublishBatch(context.Background(), 123, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProposedBatch_AbsentBatchIsNotAnError(t *testing.T) {
	st := newMemStore()
	sem := st.addSemester("2026 Spring", true)
	m := st.addMember("s001", "Ada")
	s1 := st.addSlot(sem.ID, 1, 0, 8)
	st.addPref(sem.ID, m.ID, s1.ID)
	st.addMember("s002", "Ben") // no preferences: omitted from summaries
	svc := newScheduleService(st)

	view, err := svc.ProposedBatch(context.Background(), 0)
	require.NoError(t, err)

	assert.Nil(t, view.Batch)
	assert.Empty(t, view.Assignments)
	require.Len(t, view.Members, 1)
	assert.Equal(t, m.ID, view.Members[0].UserID)
	assert.Equal(t, 1, view.Members[0].PreferenceCount)
	assert.Equal(t, 0, view.Members[0].AssignedCount)
}

func TestProposedBatch_MemberSummaries(t *testing.T) {
	f := newManualFixture(t)
	f.st.addPref(f.sem.ID, f.memberA.ID, f.s1.ID)
	f.st.addPref(f.sem.ID, f.memberA.ID, f.s2.ID)

	view, err := f.svc.ProposedBatch(context.Background(), f.sem.ID)
	require.NoError(t, err)

	require.NotNil(t, view.Batch)
	assert.Equal(t, f.batch.ID, view.Batch.ID)
	assert.Len(t, view.Assignments, 2)

	require.Len(t, view.Members, 2)
	assert.Equal(t, 2, view.Members[0].PreferenceCount)
	assert.Equal(t, 1, view.Members[0].AssignedCount)
	// Member B never submitted preferences but holds an assignment: still
	// listed, with a zero preference count.
	assert.Equal(t, 0, view.Members[1].PreferenceCount)
	assert.Equal(t, 1, view.Members[1].AssignedCount)
}

func TestScheduleGrid_CoversEverySlot(t *testing.T) {
	f := newManualFixture(t)

	view, err := f.svc.ScheduleGrid(context.Background(), 0, f.sem.ID)
	require.NoError(t, err)

	assert.Equal(t, f.batch.ID, view.Batch.ID)
	require.Len(t, view.Cells, 3) // every semester slot, assigned or not

	byID := map[uint64]model.GridCell{}
	for _, cell := range view.Cells {
		byID[cell.SlotID] = cell
	}
	assert.Equal(t, f.memberA.ID, byID[f.s1.ID].UserID)
	assert.Equal(t, "Ada", byID[f.s1.ID].DisplayName)
	assert.Equal(t, f.memberB.ID, byID[f.s2.ID].UserID)
	assert.Zero(t, byID[f.s3.ID].UserID) // free slot renders empty
}

func TestScheduleGrid_FallsBackToPublished(t *testing.T) {
	st := newMemStore()
	sem := st.addSemester("2026 Spring", true)
	m := st.addMember("s001", "Ada")
	s1 := st.addSlot(sem.ID, 1, 0, 8)
	batch := st.addBatch(sem.ID, model.BatchPublished)
	st.addAssignment(batch.ID, sem.ID, m.ID, s1.ID, model.BatchPublished)
	svc := newScheduleService(st)

	view, err := svc.ScheduleGrid(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, batch.ID, view.Batch.ID)

	_, err = svc.ScheduleGrid(context.Background(), 999, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}
