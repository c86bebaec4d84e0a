package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/club-practice-scheduler/internal/model"
	"github.com/iliyamo/club-practice-scheduler/internal/repository"
	"github.com/iliyamo/club-practice-scheduler/internal/scheduler"
)

// MaxPreferenceSlots caps one submission; the full grid is 196 slots, so
// the cap only guards against abusive payloads.
const MaxPreferenceSlots = 500

// runNote is recorded on every batch the automatic run creates.
const runNote = "Auto-generated by fairness-first scheduler"

// ScheduleService is the batch lifecycle manager.  It owns the proposed →
// published state machine and is the only component allowed to mutate
// batches and assignments.  All methods accept semesterID == 0 to mean
// "the active semester".
type ScheduleService struct {
	txm repository.TxManager
}

// NewScheduleService returns a service running its operations through the
// given transaction manager.
func NewScheduleService(txm repository.TxManager) *ScheduleService {
	return &ScheduleService{txm: txm}
}

// RunResult reports a completed scheduling run.
type RunResult struct {
	BatchID    uint64          `json:"batch_id"`
	SemesterID uint64          `json:"semester_id"`
	Stats      scheduler.Stats `json:"stats"`
}

// GenerateSchedule builds the demand model for the semester, allocates
// slots with the two-phase engine and atomically replaces any prior
// proposed batch with the new one.  Returns ErrNoData when the semester
// has no slots or no member submitted a valid preference.
func (s *ScheduleService) GenerateSchedule(ctx context.Context, semesterID, actorID uint64) (*RunResult, error) {
	var result *RunResult
	err := s.txm.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		sem, err := resolveSemester(ctx, repos, semesterID)
		if err != nil {
			return err
		}

		slotRows, err := repos.Slots.ListBySemester(ctx, sem.ID)
		if err != nil {
			return err
		}
		if len(slotRows) == 0 {
			return fmt.Errorf("%w: no room slots configured for this semester", ErrNoData)
		}
		prefRows, err := repos.Preferences.ListMemberPreferences(ctx, sem.ID)
		if err != nil {
			return err
		}

		dm, err := scheduler.BuildDemandModel(engineSlots(slotRows), enginePrefs(prefRows))
		if errors.Is(err, scheduler.ErrNoData) {
			return fmt.Errorf("%w: no member preferences found for this semester", ErrNoData)
		}
		if err != nil {
			return err
		}
		assignments, stats := dm.Allocate()

		// A new run supersedes any existing proposed batch: hard-delete the
		// old batch and its rows before inserting the replacement.
		old, err := repos.Batches.ListProposedBySemester(ctx, sem.ID)
		if err != nil {
			return err
		}
		for _, b := range old {
			if _, err := repos.Assignments.DeleteByBatch(ctx, b.ID); err != nil {
				return err
			}
			if err := repos.Batches.Delete(ctx, b.ID); err != nil {
				return err
			}
		}

		batch := &model.ScheduleBatch{
			SemesterID: sem.ID,
			CreatedBy:  actorRef(actorID),
			Note:       runNote,
		}
		if err := repos.Batches.Create(ctx, batch); err != nil {
			return err
		}
		rows := make([]model.ScheduleAssignment, 0, len(assignments))
		for _, a := range assignments {
			rows = append(rows, model.ScheduleAssignment{
				BatchID:    batch.ID,
				SemesterID: sem.ID,
				UserID:     a.UserID,
				SlotID:     a.SlotID,
			})
		}
		if err := repos.Assignments.BulkCreate(ctx, rows); err != nil {
			return err
		}

		result = &RunResult{BatchID: batch.ID, SemesterID: sem.ID, Stats: stats}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MemberSummary is one row of the review screen's per-member overview.
type MemberSummary struct {
	UserID          uint64 `json:"user_id"`
	StudentNumber   string `json:"student_number"`
	DisplayName     string `json:"display_name"`
	PreferenceCount int    `json:"preference_count"`
	AssignedCount   int    `json:"assigned_count"`
}

// ProposedView is the admin review projection of the current proposed
// batch.  Batch is nil when no run has happened since the last publish.
type ProposedView struct {
	Semester    *model.Semester          `json:"semester"`
	Batch       *model.ScheduleBatch     `json:"batch"`
	Assignments []model.AssignmentDetail `json:"assignments"`
	Members     []MemberSummary          `json:"members"`
}

// ProposedBatch loads the semester's proposed batch with its assignments
// and per-member summaries.  An absent batch is not an error: the view
// simply carries no batch and no assignments.
func (s *ScheduleService) ProposedBatch(ctx context.Context, semesterID uint64) (*ProposedView, error) {
	var view *ProposedView
	err := s.txm.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		sem, err := resolveSemester(ctx, repos, semesterID)
		if err != nil {
			return err
		}
		view = &ProposedView{Semester: sem}

		batch, err := repos.Batches.LatestProposedBySemester(ctx, sem.ID)
		if errors.Is(err, repository.ErrBatchNotFound) {
			batch = nil
		} else if err != nil {
			return err
		}
		view.Batch = batch

		prefCounts, err := repos.Preferences.CountByUser(ctx, sem.ID)
		if err != nil {
			return err
		}
		assignedCounts := map[uint64]int{}
		if batch != nil {
			if assignedCounts, err = repos.Assignments.CountsByUser(ctx, batch.ID); err != nil {
				return err
			}
			if view.Assignments, err = repos.Assignments.ListDetailedByBatch(ctx, batch.ID); err != nil {
				return err
			}
		}

		members, err := repos.Users.ListMembers(ctx)
		if err != nil {
			return err
		}
		for _, m := range members {
			if prefCounts[m.ID] == 0 && assignedCounts[m.ID] == 0 {
				continue // never submitted, never assigned: nothing to review
			}
			view.Members = append(view.Members, MemberSummary{
				UserID:          m.ID,
				StudentNumber:   m.StudentNumber,
				DisplayName:     m.DisplayName,
				PreferenceCount: prefCounts[m.ID],
				AssignedCount:   assignedCounts[m.ID],
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// CreateAssignmentInput names the target of a manual assignment.  BatchID
// 0 selects the latest proposed batch of the slot's semester.
type CreateAssignmentInput struct {
	BatchID uint64
	UserID  uint64
	SlotID  uint64
}

// CreateAssignment adds one assignment to a proposed batch.  Repeating an
// identical (member, slot) request succeeds idempotently and reports
// created == false; a slot occupied by someone else, or a member already
// at the two-slot cap, is a conflict.
func (s *ScheduleService) CreateAssignment(ctx context.Context, in CreateAssignmentInput) (*model.ScheduleAssignment, bool, error) {
	var (
		out     *model.ScheduleAssignment
		created bool
	)
	err := s.txm.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		slot, err := repos.Slots.GetByID(ctx, in.SlotID)
		if errors.Is(err, repository.ErrSlotNotFound) {
			return fmt.Errorf("%w: target slot not found", ErrNotFound)
		}
		if err != nil {
			return err
		}

		batch, err := s.resolveProposedBatch(ctx, repos, in.BatchID, slot.SemesterID)
		if err != nil {
			return err
		}
		if batch.SemesterID != slot.SemesterID {
			return fmt.Errorf("%w: batch and slot are from different semesters", ErrInvalidInput)
		}

		if _, err := repos.Users.GetMemberByID(ctx, in.UserID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return fmt.Errorf("%w: member not found", ErrNotFound)
			}
			return err
		}

		occupied, err := repos.Assignments.FindBySlot(ctx, batch.ID, in.SlotID, 0)
		if err != nil {
			return err
		}
		if occupied != nil {
			if occupied.UserID == in.UserID {
				out = occupied // identical pair: idempotent success
				return nil
			}
			return fmt.Errorf("%w: target slot is already occupied", ErrConflict)
		}

		n, err := repos.Assignments.CountByUser(ctx, batch.ID, in.UserID)
		if err != nil {
			return err
		}
		if n >= 2 {
			return fmt.Errorf("%w: member already holds two slots in this batch", ErrConflict)
		}

		a := &model.ScheduleAssignment{
			BatchID:    batch.ID,
			SemesterID: batch.SemesterID,
			UserID:     in.UserID,
			SlotID:     in.SlotID,
		}
		if err := repos.Assignments.Create(ctx, a); err != nil {
			return err
		}
		out, created = a, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, created, nil
}

// MoveAssignmentInput describes a manual move or swap.
type MoveAssignmentInput struct {
	AssignmentID   uint64
	TargetSlotID   uint64
	SwapIfOccupied bool
}

// MoveResult reports where an assignment ended up and, for swaps, whose
// assignment it traded places with.
type MoveResult struct {
	AssignmentID  uint64 `json:"assignment_id"`
	SlotID        uint64 `json:"slot_id"`
	Swapped       bool   `json:"swapped"`
	SwappedWithID uint64 `json:"swapped_with_assignment_id,omitempty"`
}

// MoveAssignment points a proposed assignment at a new slot.  A free
// target is an in-place update.  An occupied target is a conflict unless
// SwapIfOccupied, in which case the two assignments exchange slots —
// but only when neither party would end up holding a duplicate slot:
// both directions are checked before anything is written.
func (s *ScheduleService) MoveAssignment(ctx context.Context, in MoveAssignmentInput) (*MoveResult, error) {
	var result *MoveResult
	err := s.txm.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		a, err := repos.Assignments.GetByID(ctx, in.AssignmentID)
		if errors.Is(err, repository.ErrAssignmentNotFound) {
			return fmt.Errorf("%w: assignment not found", ErrNotFound)
		}
		if err != nil {
			return err
		}
		batch, err := repos.Batches.GetByID(ctx, a.BatchID)
		if err != nil {
			return err
		}
		if batch.Status != model.BatchProposed {
			return fmt.Errorf("%w: assignment belongs to a published batch", ErrConflict)
		}

		target, err := repos.Slots.GetByID(ctx, in.TargetSlotID)
		if errors.Is(err, repository.ErrSlotNotFound) {
			return fmt.Errorf("%w: target slot not found", ErrNotFound)
		}
		if err != nil {
			return err
		}
		if target.SemesterID != a.SemesterID {
			return fmt.Errorf("%w: target slot is not in this semester", ErrInvalidInput)
		}

		occupied, err := repos.Assignments.FindBySlot(ctx, batch.ID, in.TargetSlotID, a.ID)
		if err != nil {
			return err
		}
		if occupied == nil {
			if err := repos.Assignments.UpdateSlot(ctx, a.ID, in.TargetSlotID); err != nil {
				return err
			}
			result = &MoveResult{AssignmentID: a.ID, SlotID: in.TargetSlotID}
			return nil
		}
		if !in.SwapIfOccupied {
			return fmt.Errorf("%w: target slot is already occupied in this proposed batch", ErrConflict)
		}

		// Both parties are checked before either row changes, so the swap is
		// rejected whenever either member would end up with a duplicate slot.
		dup, err := repos.Assignments.FindByUserAndSlot(ctx, batch.ID, occupied.UserID, a.SlotID, occupied.ID)
		if err != nil {
			return err
		}
		if dup != nil {
			return fmt.Errorf("%w: swap would give the occupying member a duplicate slot", ErrConflict)
		}
		dup, err = repos.Assignments.FindByUserAndSlot(ctx, batch.ID, a.UserID, in.TargetSlotID, a.ID)
		if err != nil {
			return err
		}
		if dup != nil {
			return fmt.Errorf("%w: swap would give the moved member a duplicate slot", ErrConflict)
		}

		if err := repos.Assignments.UpdateSlot(ctx, occupied.ID, a.SlotID); err != nil {
			return err
		}
		if err := repos.Assignments.UpdateSlot(ctx, a.ID, in.TargetSlotID); err != nil {
			return err
		}
		result = &MoveResult{AssignmentID: a.ID, SlotID: in.TargetSlotID, Swapped: true, SwappedWithID: occupied.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteAssignment removes one assignment from a proposed batch.  Rows of
// published batches are immutable and deleting them is a conflict.
func (s *ScheduleService) DeleteAssignment(ctx context.Context, assignmentID uint64) error {
	return s.txm.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		a, err := repos.Assignments.GetByID(ctx, assignmentID)
		if errors.Is(err, repository.ErrAssignmentNotFound) {
			return fmt.Errorf("%w: assignment not found", ErrNotFound)
		}
		if err != nil {
			return err
		}
		batch, err := repos.Batches.GetByID(ctx, a.BatchID)
		if err != nil {
			return err
		}
		if batch.Status != model.BatchProposed {
			return fmt.Errorf("%w: assignment belongs to a published batch", ErrConflict)
		}
		return repos.Assignments.Delete(ctx, a.ID)
	})
}

// PublishResult reports a publication: which members are affected, so the
// notification collaborator can reach them.
type PublishResult struct {
	BatchID      uint64    `json:"batch_id"`
	SemesterID   uint64    `json:"semester_id"`
	SemesterName string    `json:"semester_name"`
	UserIDs      []uint64  `json:"user_ids"`
	PublishedAt  time.Time `json:"published_at"`
}

// PublishBatch flips a proposed batch and all of its assignment rows to
// published in one transaction.  Publishing is terminal: the batch cannot
// be edited or reopened afterwards, and it becomes the member-facing
// schedule, superseding the visibility of any earlier published batch.
func (s *ScheduleService) PublishBatch(ctx context.Context, batchID, actorID uint64) (*PublishResult, error) {
	var result *PublishResult
	err := s.txm.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		batch, err := repos.Batches.GetByID(ctx, batchID)
		if errors.Is(err, repository.ErrBatchNotFound) {
			return fmt.Errorf("%w: schedule batch not found", ErrNotFound)
		}
		if err != nil {
			return err
		}
		if batch.Status != model.BatchProposed {
			return fmt.Errorf("%w: only proposed batches can be published", ErrConflict)
		}

		userIDs, err := repos.Assignments.DistinctUserIDs(ctx, batch.ID)
		if err != nil {
			return err
		}
		if err := repos.Batches.MarkPublished(ctx, batch.ID, actorID); err != nil {
			return err
		}
		if err := repos.Assignments.MarkPublishedByBatch(ctx, batch.ID); err != nil {
			return err
		}
		sem, err := repos.Semesters.GetByID(ctx, batch.SemesterID)
		if err != nil {
			return err
		}
		result = &PublishResult{
			BatchID:      batch.ID,
			SemesterID:   batch.SemesterID,
			SemesterName: sem.Name,
			UserIDs:      userIDs,
			PublishedAt:  time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GridView is the export collaborator's input: every slot of the
// semester with its assignee in the chosen batch.
type GridView struct {
	Semester *model.Semester      `json:"semester"`
	Batch    *model.ScheduleBatch `json:"batch"`
	Cells    []model.GridCell     `json:"cells"`
}

// ScheduleGrid returns the grid projection for a batch.  With batchID 0
// it picks the semester's newest proposed batch, falling back to the
// newest published one.
func (s *ScheduleService) ScheduleGrid(ctx context.Context, batchID, semesterID uint64) (*GridView, error) {
	var view *GridView
	err := s.txm.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		var batch *model.ScheduleBatch
		var err error
		if batchID != 0 {
			batch, err = repos.Batches.GetByID(ctx, batchID)
		} else {
			var sem *model.Semester
			if sem, err = resolveSemester(ctx, repos, semesterID); err != nil {
				return err
			}
			batch, err = repos.Batches.LatestForExport(ctx, sem.ID)
		}
		if errors.Is(err, repository.ErrBatchNotFound) {
			return fmt.Errorf("%w: no schedule batch available for export", ErrNotFound)
		}
		if err != nil {
			return err
		}

		sem, err := repos.Semesters.GetByID(ctx, batch.SemesterID)
		if err != nil {
			return err
		}
		cells, err := repos.Assignments.ListGrid(ctx, batch.ID, batch.SemesterID)
		if err != nil {
			return err
		}
		view = &GridView{Semester: sem, Batch: batch, Cells: cells}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// resolveProposedBatch maps an optional batch id to the proposed batch a
// manual edit targets.  An explicit id must name a proposed batch; 0
// selects the latest proposed batch of the slot's semester.
func (s *ScheduleService) resolveProposedBatch(ctx context.Context, repos repository.TxRepositories, batchID, semesterID uint64) (*model.ScheduleBatch, error) {
	if batchID != 0 {
		batch, err := repos.Batches.GetByID(ctx, batchID)
		if errors.Is(err, repository.ErrBatchNotFound) {
			return nil, fmt.Errorf("%w: no proposed schedule batch found", ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		if batch.Status != model.BatchProposed {
			return nil, fmt.Errorf("%w: no proposed schedule batch found", ErrNotFound)
		}
		return batch, nil
	}
	batch, err := repos.Batches.LatestProposedBySemester(ctx, semesterID)
	if errors.Is(err, repository.ErrBatchNotFound) {
		return nil, fmt.Errorf("%w: no proposed schedule batch found", ErrNotFound)
	}
	return batch, err
}

// actorRef converts an actor id to the nullable column reference, keeping
// 0 (system/unknown) as NULL.
func actorRef(actorID uint64) *uint64 {
	if actorID == 0 {
		return nil
	}
	return &actorID
}

// engineSlots projects storage rows into the engine's slot type.
func engineSlots(rows []model.RoomSlot) []scheduler.Slot {
	out := make([]scheduler.Slot, 0, len(rows))
	for _, r := range rows {
		out = append(out, scheduler.Slot{ID: r.ID, RoomNo: r.RoomNo, DayOfWeek: r.DayOfWeek, Hour: r.Hour})
	}
	return out
}

// enginePrefs projects storage rows into the engine's preference type.
func enginePrefs(rows []model.SlotPreference) []scheduler.Preference {
	out := make([]scheduler.Preference, 0, len(rows))
	for _, r := range rows {
		out = append(out, scheduler.Preference{UserID: r.UserID, SlotID: r.SlotID})
	}
	return out
}
