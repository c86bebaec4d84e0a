package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/club-practice-scheduler/internal/model"
)

// UserRepository provides access to club accounts.  Only the operations
// the scheduler needs are exposed: provisioning member accounts and the
// lookups that validate manual assignments.
type UserRepository interface {
	// CreateMember inserts a MEMBER account and populates its generated ID.
	CreateMember(ctx context.Context, u *model.User) error
	// GetMemberByID returns the user when it exists and has the member
	// role; ErrUserNotFound otherwise.  Admin accounts are deliberately not
	// assignable to practice slots.
	GetMemberByID(ctx context.Context, id uint64) (*model.User, error)
	// FindByStudentNumber returns (nil, nil) when no account carries the
	// student number.
	FindByStudentNumber(ctx context.Context, studentNumber string) (*model.User, error)
	// ListMembers returns all member accounts ordered by id.
	ListMembers(ctx context.Context) ([]model.User, error)
}

// UserMySQLRepository implements UserRepository with hand-written SQL.
type UserMySQLRepository struct {
	q Querier
}

// NewUserMySQLRepository binds the repository to a pool or transaction.
func NewUserMySQLRepository(q Querier) *UserMySQLRepository { return &UserMySQLRepository{q: q} }

func (r *UserMySQLRepository) CreateMember(ctx context.Context, u *model.User) error {
	const q = `INSERT INTO users (student_number, display_name, email, role, password_hash)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.q.ExecContext(ctx, q, u.StudentNumber, u.DisplayName, u.Email, model.RoleMember, u.PasswordHash)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	u.Role = model.RoleMember
	return nil
}

func (r *UserMySQLRepository) GetMemberByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT id, student_number, display_name, email, role, created_at
	           FROM users WHERE id = ? AND role = ?`
	var u model.User
	err := r.q.QueryRowContext(ctx, q, id, model.RoleMember).
		Scan(&u.ID, &u.StudentNumber, &u.DisplayName, &u.Email, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserMySQLRepository) FindByStudentNumber(ctx context.Context, studentNumber string) (*model.User, error) {
	const q = `SELECT id, student_number, display_name, email, role, created_at
	           FROM users WHERE student_number = ?`
	var u model.User
	err := r.q.QueryRowContext(ctx, q, studentNumber).
		Scan(&u.ID, &u.StudentNumber, &u.DisplayName, &u.Email, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserMySQLRepository) ListMembers(ctx context.Context) ([]model.User, error) {
	const q = `SELECT id, student_number, display_name, email, role, created_at
	           FROM users WHERE role = ? ORDER BY id`
	rows, err := r.q.QueryContext(ctx, q, model.RoleMember)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.StudentNumber, &u.DisplayName, &u.Email, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
