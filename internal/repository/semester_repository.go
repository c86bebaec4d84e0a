package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/club-practice-scheduler/internal/model"
)

// SemesterRepository provides access to semesters.  Semesters are created
// by administrators and never deleted; activation is exclusive, so
// activating one deactivates the rest in the same transaction.
type SemesterRepository interface {
	// Create inserts a semester and populates its generated ID.
	Create(ctx context.Context, s *model.Semester) error
	// GetByID returns ErrSemesterNotFound when the id does not exist.
	GetByID(ctx context.Context, id uint64) (*model.Semester, error)
	// Active returns the currently active semester, ErrSemesterNotFound
	// when none is active.
	Active(ctx context.Context) (*model.Semester, error)
	// DeactivateAll clears the active flag on every semester.
	DeactivateAll(ctx context.Context) error
}

// SemesterMySQLRepository implements SemesterRepository.
type SemesterMySQLRepository struct {
	q Querier
}

// NewSemesterMySQLRepository binds the repository to a pool or transaction.
func NewSemesterMySQLRepository(q Querier) *SemesterMySQLRepository {
	return &SemesterMySQLRepository{q: q}
}

func (r *SemesterMySQLRepository) Create(ctx context.Context, s *model.Semester) error {
	const q = `INSERT INTO semesters (name, start_date, end_date, is_active) VALUES (?, ?, ?, ?)`
	res, err := r.q.ExecContext(ctx, q, s.Name, s.StartDate, s.EndDate, s.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

func (r *SemesterMySQLRepository) GetByID(ctx context.Context, id uint64) (*model.Semester, error) {
	const q = `SELECT id, name, start_date, end_date, is_active, created_at FROM semesters WHERE id = ?`
	return r.scanOne(r.q.QueryRowContext(ctx, q, id))
}

func (r *SemesterMySQLRepository) Active(ctx context.Context) (*model.Semester, error) {
	// Newest active wins if data ever ends up with more than one.
	const q = `SELECT id, name, start_date, end_date, is_active, created_at
	           FROM semesters WHERE is_active = 1 ORDER BY id DESC LIMIT 1`
	return r.scanOne(r.q.QueryRowContext(ctx, q))
}

func (r *SemesterMySQLRepository) DeactivateAll(ctx context.Context) error {
	const q = `UPDATE semesters SET is_active = 0 WHERE is_active = 1`
	_, err := r.q.ExecContext(ctx, q)
	return err
}

func (r *SemesterMySQLRepository) scanOne(row *sql.Row) (*model.Semester, error) {
	var s model.Semester
	err := row.Scan(&s.ID, &s.Name, &s.StartDate, &s.EndDate, &s.IsActive, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSemesterNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
