package repository

import (
	"context"
	"database/sql"
)

// Querier is the common surface of *sql.DB and *sql.Tx that repositories
// execute against.  Binding repositories to this interface lets the same
// implementation serve pooled reads and transactional units of work.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxRepositories bundles every repository bound to one open transaction.
// A unit of work receives this bundle from TxManager.WithTx and performs
// all of its precondition reads and writes through it, so the whole
// operation commits or rolls back as one.
type TxRepositories struct {
	Users       UserRepository
	Semesters   SemesterRepository
	Slots       SlotRepository
	Preferences PreferenceRepository
	Batches     BatchRepository
	Assignments AssignmentRepository
}

// TxManager runs a function inside a database transaction.  The function's
// error aborts and rolls back the transaction; a nil return commits it.
// Context cancellation or a caller-supplied deadline bounds the whole unit
// of work.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}

// MySQLTxManager is the production TxManager over a *sql.DB pool.
type MySQLTxManager struct {
	db *sql.DB
}

// NewMySQLTxManager returns a TxManager bound to the given pool.
func NewMySQLTxManager(db *sql.DB) *MySQLTxManager {
	return &MySQLTxManager{db: db}
}

// WithTx opens a READ COMMITTED transaction, builds the repository bundle
// over it and invokes fn.  Concurrent runs for the same semester may race,
// but each sees a consistent committed view, which is all the invariants
// require.
func (m *MySQLTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}

	repos := TxRepositories{
		Users:       NewUserMySQLRepository(tx),
		Semesters:   NewSemesterMySQLRepository(tx),
		Slots:       NewSlotMySQLRepository(tx),
		Preferences: NewPreferenceMySQLRepository(tx),
		Batches:     NewBatchMySQLRepository(tx),
		Assignments: NewAssignmentMySQLRepository(tx),
	}

	if err := fn(ctx, repos); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return rollbackErr
		}
		return err
	}

	return tx.Commit()
}
