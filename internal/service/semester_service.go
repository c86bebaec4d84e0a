package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/club-practice-scheduler/internal/model"
	"github.com/iliyamo/club-practice-scheduler/internal/repository"
)

// SemesterService creates and resolves semesters.  Creating a semester
// also generates its immutable slot grid, in the same transaction.
type SemesterService struct {
	txm repository.TxManager
}

// NewSemesterService returns a service running its operations through the
// given transaction manager.
func NewSemesterService(txm repository.TxManager) *SemesterService {
	return &SemesterService{txm: txm}
}

// CreateSemesterInput carries the admin's semester parameters.
type CreateSemesterInput struct {
	Name      string
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	Activate  bool
}

// CreateSemester inserts a semester and its full slot grid (rooms ×
// days × hours) atomically.  When Activate is set, every other semester
// is deactivated first so at most one stays active.  The grid is never
// touched again after this call.
func (s *SemesterService) CreateSemester(ctx context.Context, in CreateSemesterInput) (*model.Semester, int, error) {
	if in.Name == "" {
		return nil, 0, fmt.Errorf("%w: semester name is required", ErrInvalidInput)
	}
	start, err := time.Parse("2006-01-02", in.StartDate)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrInvalidInput)
	}
	end, err := time.Parse("2006-01-02", in.EndDate)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: end_date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if end.Before(start) {
		return nil, 0, fmt.Errorf("%w: end_date is before start_date", ErrInvalidInput)
	}

	var (
		sem       *model.Semester
		slotCount int
	)
	err = s.txm.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		if in.Activate {
			if err := repos.Semesters.DeactivateAll(ctx); err != nil {
				return err
			}
		}
		sem = &model.Semester{
			Name:      in.Name,
			StartDate: in.StartDate,
			EndDate:   in.EndDate,
			IsActive:  in.Activate,
		}
		if err := repos.Semesters.Create(ctx, sem); err != nil {
			return err
		}

		grid := make([]model.RoomSlot, 0, model.RoomCount*7*(model.LastHour-model.FirstHour+1))
		for room := 1; room <= model.RoomCount; room++ {
			for day := 0; day <= 6; day++ {
				for hour := model.FirstHour; hour <= model.LastHour; hour++ {
					grid = append(grid, model.RoomSlot{
						SemesterID: sem.ID,
						RoomNo:     room,
						DayOfWeek:  day,
						Hour:       hour,
					})
				}
			}
		}
		if err := repos.Slots.BulkCreate(ctx, grid); err != nil {
			return err
		}
		slotCount = len(grid)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return sem, slotCount, nil
}

// CurrentSemester returns the active semester and its slot count.
func (s *SemesterService) CurrentSemester(ctx context.Context) (*model.Semester, int, error) {
	var (
		sem       *model.Semester
		slotCount int
	)
	err := s.txm.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		var err error
		sem, err = repos.Semesters.Active(ctx)
		if errors.Is(err, repository.ErrSemesterNotFound) {
			return fmt.Errorf("%w: no active semester", ErrNotFound)
		}
		if err != nil {
			return err
		}
		slotCount, err = repos.Slots.CountBySemester(ctx, sem.ID)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return sem, slotCount, nil
}
