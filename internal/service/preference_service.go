package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/club-practice-scheduler/internal/model"
	"github.com/iliyamo/club-practice-scheduler/internal/repository"
)

// PreferenceService handles the member-facing side of scheduling: the
// slot board, preference submission and the published-assignment view.
type PreferenceService struct {
	txm repository.TxManager
}

// NewPreferenceService returns a service running its operations through
// the given transaction manager.
func NewPreferenceService(txm repository.TxManager) *PreferenceService {
	return &PreferenceService{txm: txm}
}

// SlotBoard returns the semester's slots with demand counts and the
// viewing member's current selections.
func (s *PreferenceService) SlotBoard(ctx context.Context, semesterID, userID uint64) (*model.Semester, []model.SlotBoardEntry, error) {
	var (
		sem     *model.Semester
		entries []model.SlotBoardEntry
	)
	err := s.txm.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		var err error
		if sem, err = resolveSemester(ctx, repos, semesterID); err != nil {
			return err
		}
		entries, err = repos.Slots.ListBoard(ctx, sem.ID, userID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return sem, entries, nil
}

// ReplacePreferences stores a member's submission.  The new set wholly
// replaces the old one — delete then insert in one transaction — after
// verifying every slot id belongs to the semester.  Duplicate ids in the
// payload collapse to one.
func (s *PreferenceService) ReplacePreferences(ctx context.Context, semesterID, userID uint64, slotIDs []uint64) (*model.Semester, int, error) {
	if len(slotIDs) > MaxPreferenceSlots {
		return nil, 0, fmt.Errorf("%w: at most %d slots per submission", ErrInvalidInput, MaxPreferenceSlots)
	}
	unique := make([]uint64, 0, len(slotIDs))
	seen := make(map[uint64]struct{}, len(slotIDs))
	for _, id := range slotIDs {
		if id == 0 {
			return nil, 0, fmt.Errorf("%w: slot ids must be positive", ErrInvalidInput)
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}

	var sem *model.Semester
	err := s.txm.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		var err error
		if sem, err = resolveSemester(ctx, repos, semesterID); err != nil {
			return err
		}
		if len(unique) > 0 {
			valid, err := repos.Preferences.CountValidSlots(ctx, sem.ID, unique)
			if err != nil {
				return err
			}
			if valid != len(unique) {
				return fmt.Errorf("%w: one or more slot ids do not belong to the selected semester", ErrInvalidInput)
			}
		}
		if _, err := repos.Preferences.DeleteByUserAndSemester(ctx, sem.ID, userID); err != nil {
			return err
		}
		prefs := make([]model.SlotPreference, 0, len(unique))
		for _, slotID := range unique {
			prefs = append(prefs, model.SlotPreference{SemesterID: sem.ID, UserID: userID, SlotID: slotID})
		}
		return repos.Preferences.BulkCreate(ctx, prefs)
	})
	if err != nil {
		return nil, 0, err
	}
	return sem, len(unique), nil
}

// MyAssignmentsView is a member's published schedule for a semester.
type MyAssignmentsView struct {
	Semester     *model.Semester          `json:"semester"`
	HasPublished bool                     `json:"has_published_schedule"`
	Batch        *model.ScheduleBatch     `json:"batch,omitempty"`
	Assignments  []model.MemberAssignment `json:"assignments"`
}

// MyAssignments returns the member's rows in the most recently published
// batch.  No published batch is a normal answer, not an error.
func (s *PreferenceService) MyAssignments(ctx context.Context, semesterID, userID uint64) (*MyAssignmentsView, error) {
	var view *MyAssignmentsView
	err := s.txm.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		sem, err := resolveSemester(ctx, repos, semesterID)
		if err != nil {
			return err
		}
		view = &MyAssignmentsView{Semester: sem, Assignments: []model.MemberAssignment{}}

		batch, err := repos.Batches.LatestPublishedBySemester(ctx, sem.ID)
		if errors.Is(err, repository.ErrBatchNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		view.HasPublished = true
		view.Batch = batch
		view.Assignments, err = repos.Assignments.ListForUser(ctx, batch.ID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// resolveSemester is shared by the services in this package; the method
// on ScheduleService delegates here as well.
func resolveSemester(ctx context.Context, repos repository.TxRepositories, semesterID uint64) (*model.Semester, error) {
	if semesterID != 0 {
		sem, err := repos.Semesters.GetByID(ctx, semesterID)
		if errors.Is(err, repository.ErrSemesterNotFound) {
			return nil, fmt.Errorf("%w: semester not found", ErrNotFound)
		}
		return sem, err
	}
	sem, err := repos.Semesters.Active(ctx)
	if errors.Is(err, repository.ErrSemesterNotFound) {
		return nil, fmt.Errorf("%w: no active semester; ask an admin to create or activate one", ErrNotFound)
	}
	return sem, err
}
