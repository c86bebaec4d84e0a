package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/club-practice-scheduler/internal/model"
)

// BatchRepository provides access to schedule batches.  A batch is only
// ever written together with its assignment rows, so every mutating
// method here is expected to run inside a TxManager unit of work.
type BatchRepository interface {
	// Create inserts a proposed batch and populates its generated ID.
	Create(ctx context.Context, b *model.ScheduleBatch) error
	// GetByID returns ErrBatchNotFound when the id does not exist.
	GetByID(ctx context.Context, id uint64) (*model.ScheduleBatch, error)
	// ListProposedBySemester returns every proposed batch for the semester,
	// oldest first.  The single-proposed-batch invariant means this returns
	// zero or one row in healthy data, but the run deletes whatever it finds.
	ListProposedBySemester(ctx context.Context, semesterID uint64) ([]model.ScheduleBatch, error)
	// LatestProposedBySemester returns the newest proposed batch for the
	// semester, ErrBatchNotFound when there is none.
	LatestProposedBySemester(ctx context.Context, semesterID uint64) (*model.ScheduleBatch, error)
	// LatestPublishedBySemester returns the member-facing batch: the most
	// recently published one.  ErrBatchNotFound when nothing was published.
	LatestPublishedBySemester(ctx context.Context, semesterID uint64) (*model.ScheduleBatch, error)
	// LatestForExport prefers the newest proposed batch and falls back to
	// the newest published one, ErrBatchNotFound when the semester has
	// neither.
	LatestForExport(ctx context.Context, semesterID uint64) (*model.ScheduleBatch, error)
	// Delete removes a batch row.  Assignment rows must be removed first.
	Delete(ctx context.Context, id uint64) error
	// MarkPublished flips the batch to published, recording the publisher
	// and the publish timestamp.
	MarkPublished(ctx context.Context, id, publishedBy uint64) error
}

// BatchMySQLRepository implements BatchRepository.
type BatchMySQLRepository struct {
	q Querier
}

// NewBatchMySQLRepository binds the repository to a pool or transaction.
func NewBatchMySQLRepository(q Querier) *BatchMySQLRepository { return &BatchMySQLRepository{q: q} }

const batchColumns = `id, semester_id, status, created_by, published_by, note, created_at, published_at`

func (r *BatchMySQLRepository) Create(ctx context.Context, b *model.ScheduleBatch) error {
	const q = `INSERT INTO schedule_batches (semester_id, status, created_by, note) VALUES (?, ?, ?, ?)`
	res, err := r.q.ExecContext(ctx, q, b.SemesterID, model.BatchProposed, b.CreatedBy, b.Note)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.Status = model.BatchProposed
	return nil
}

func (r *BatchMySQLRepository) GetByID(ctx context.Context, id uint64) (*model.ScheduleBatch, error) {
	return r.scanOne(r.q.QueryRowContext(ctx,
		`SELECT `+batchColumns+` FROM schedule_batches WHERE id = ?`, id))
}

func (r *BatchMySQLRepository) ListProposedBySemester(ctx context.Context, semesterID uint64) ([]model.ScheduleBatch, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+batchColumns+` FROM schedule_batches
		 WHERE semester_id = ? AND status = ? ORDER BY id`,
		semesterID, model.BatchProposed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ScheduleBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *BatchMySQLRepository) LatestProposedBySemester(ctx context.Context, semesterID uint64) (*model.ScheduleBatch, error) {
	return r.scanOne(r.q.QueryRowContext(ctx,
		`SELECT `+batchColumns+` FROM schedule_batches
		 WHERE semester_id = ? AND status = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		semesterID, model.BatchProposed))
}

func (r *BatchMySQLRepository) LatestPublishedBySemester(ctx context.Context, semesterID uint64) (*model.ScheduleBatch, error) {
	return r.scanOne(r.q.QueryRowContext(ctx,
		`SELECT `+batchColumns+` FROM schedule_batches
		 WHERE semester_id = ? AND status = ?
		 ORDER BY COALESCE(published_at, created_at) DESC, id DESC LIMIT 1`,
		semesterID, model.BatchPublished))
}

func (r *BatchMySQLRepository) LatestForExport(ctx context.Context, semesterID uint64) (*model.ScheduleBatch, error) {
	return r.scanOne(r.q.QueryRowContext(ctx,
		`SELECT `+batchColumns+` FROM schedule_batches
		 WHERE semester_id = ? AND status IN (?, ?)
		 ORDER BY CASE WHEN status = ? THEN 0 ELSE 1 END,
		          COALESCE(published_at, created_at) DESC, id DESC
		 LIMIT 1`,
		semesterID, model.BatchProposed, model.BatchPublished, model.BatchProposed))
}

func (r *BatchMySQLRepository) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM schedule_batches WHERE id = ?`
	_, err := r.q.ExecContext(ctx, q, id)
	return err
}

func (r *BatchMySQLRepository) MarkPublished(ctx context.Context, id, publishedBy uint64) error {
	const q = `UPDATE schedule_batches
	           SET status = ?, published_by = ?, published_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	_, err := r.q.ExecContext(ctx, q, model.BatchPublished, publishedBy, id)
	return err
}

// rowScanner lets scanBatch serve both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *BatchMySQLRepository) scanOne(row *sql.Row) (*model.ScheduleBatch, error) {
	b, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func scanBatch(s rowScanner) (*model.ScheduleBatch, error) {
	var b model.ScheduleBatch
	var createdBy, publishedBy sql.NullInt64
	var publishedAt sql.NullTime
	if err := s.Scan(&b.ID, &b.SemesterID, &b.Status, &createdBy, &publishedBy, &b.Note, &b.CreatedAt, &publishedAt); err != nil {
		return nil, err
	}
	if createdBy.Valid {
		v := uint64(createdBy.Int64)
		b.CreatedBy = &v
	}
	if publishedBy.Valid {
		v := uint64(publishedBy.Int64)
		b.PublishedBy = &v
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		b.PublishedAt = &t
	}
	return &b, nil
}
