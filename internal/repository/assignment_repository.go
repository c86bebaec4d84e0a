package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/club-practice-scheduler/internal/model"
)

// AssignmentRepository provides access to schedule assignments.  Every
// mutating method runs inside a TxManager unit of work so the batch
// invariants — one occupant per slot, at most two slots per member — hold
// after each operation, never mid-operation.
type AssignmentRepository interface {
	// BulkCreate inserts engine-produced rows in a single statement.
	BulkCreate(ctx context.Context, rows []model.ScheduleAssignment) error
	// Create inserts one manual assignment and populates its generated ID.
	Create(ctx context.Context, a *model.ScheduleAssignment) error
	// GetByID returns ErrAssignmentNotFound when the id does not exist.
	GetByID(ctx context.Context, id uint64) (*model.ScheduleAssignment, error)
	// FindBySlot returns the assignment occupying the slot in the batch,
	// (nil, nil) when the slot is free.  excludeID skips one assignment id
	// (the one being moved); pass 0 to exclude nothing.
	FindBySlot(ctx context.Context, batchID, slotID, excludeID uint64) (*model.ScheduleAssignment, error)
	// FindByUserAndSlot returns the batch's assignment binding the member
	// to the slot, (nil, nil) when absent.  excludeID as in FindBySlot.
	FindByUserAndSlot(ctx context.Context, batchID, userID, slotID, excludeID uint64) (*model.ScheduleAssignment, error)
	// CountByUser returns how many slots the member holds in the batch.
	CountByUser(ctx context.Context, batchID, userID uint64) (int, error)
	// UpdateSlot points an assignment at a different slot.
	UpdateSlot(ctx context.Context, id, slotID uint64) error
	// Delete removes one assignment row.
	Delete(ctx context.Context, id uint64) error
	// DeleteByBatch removes all of a batch's rows and reports the count.
	DeleteByBatch(ctx context.Context, batchID uint64) (int, error)
	// MarkPublishedByBatch flips every row of the batch to published.
	MarkPublishedByBatch(ctx context.Context, batchID uint64) error
	// DistinctUserIDs returns the members appearing in the batch, for the
	// notification hook.
	DistinctUserIDs(ctx context.Context, batchID uint64) ([]uint64, error)
	// ListDetailedByBatch joins assignments with slot and member metadata
	// for the admin review screen, in grid order.
	ListDetailedByBatch(ctx context.Context, batchID uint64) ([]model.AssignmentDetail, error)
	// ListForUser returns the member's assignments in the batch joined
	// with slot metadata.
	ListForUser(ctx context.Context, batchID, userID uint64) ([]model.MemberAssignment, error)
	// CountsByUser returns per-member assignment counts for the batch.
	CountsByUser(ctx context.Context, batchID uint64) (map[uint64]int, error)
	// ListGrid returns every semester slot left-joined with its assignee in
	// the batch — the export collaborator's input.
	ListGrid(ctx context.Context, batchID, semesterID uint64) ([]model.GridCell, error)
}

// AssignmentMySQLRepository implements AssignmentRepository.
type AssignmentMySQLRepository struct {
	q Querier
}

// NewAssignmentMySQLRepository binds the repository to a pool or transaction.
func NewAssignmentMySQLRepository(q Querier) *AssignmentMySQLRepository {
	return &AssignmentMySQLRepository{q: q}
}

func (r *AssignmentMySQLRepository) BulkCreate(ctx context.Context, rowsIn []model.ScheduleAssignment) error {
	if len(rowsIn) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO schedule_assignments (batch_id, semester_id, user_id, slot_id, status) VALUES `)
	args := make([]any, 0, len(rowsIn)*5)
	for i, a := range rowsIn {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, a.BatchID, a.SemesterID, a.UserID, a.SlotID, model.BatchProposed)
	}
	_, err := r.q.ExecContext(ctx, sb.String(), args...)
	return err
}

func (r *AssignmentMySQLRepository) Create(ctx context.Context, a *model.ScheduleAssignment) error {
	const q = `INSERT INTO schedule_assignments (batch_id, semester_id, user_id, slot_id, status)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.q.ExecContext(ctx, q, a.BatchID, a.SemesterID, a.UserID, a.SlotID, model.BatchProposed)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	a.Status = model.BatchProposed
	return nil
}

const assignmentColumns = `id, batch_id, semester_id, user_id, slot_id, status`

func (r *AssignmentMySQLRepository) GetByID(ctx context.Context, id uint64) (*model.ScheduleAssignment, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM schedule_assignments WHERE id = ?`, id)
	a, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AssignmentMySQLRepository) FindBySlot(ctx context.Context, batchID, slotID, excludeID uint64) (*model.ScheduleAssignment, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM schedule_assignments
		 WHERE batch_id = ? AND slot_id = ? AND id != ? LIMIT 1`,
		batchID, slotID, excludeID)
	return scanOptionalAssignment(row)
}

func (r *AssignmentMySQLRepository) FindByUserAndSlot(ctx context.Context, batchID, userID, slotID, excludeID uint64) (*model.ScheduleAssignment, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM schedule_assignments
		 WHERE batch_id = ? AND user_id = ? AND slot_id = ? AND id != ? LIMIT 1`,
		batchID, userID, slotID, excludeID)
	return scanOptionalAssignment(row)
}

func (r *AssignmentMySQLRepository) CountByUser(ctx context.Context, batchID, userID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM schedule_assignments WHERE batch_id = ? AND user_id = ?`
	var n int
	if err := r.q.QueryRowContext(ctx, q, batchID, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *AssignmentMySQLRepository) UpdateSlot(ctx context.Context, id, slotID uint64) error {
	const q = `UPDATE schedule_assignments SET slot_id = ? WHERE id = ?`
	_, err := r.q.ExecContext(ctx, q, slotID, id)
	return err
}

func (r *AssignmentMySQLRepository) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM schedule_assignments WHERE id = ?`
	_, err := r.q.ExecContext(ctx, q, id)
	return err
}

func (r *AssignmentMySQLRepository) DeleteByBatch(ctx context.Context, batchID uint64) (int, error) {
	const q = `DELETE FROM schedule_assignments WHERE batch_id = ?`
	res, err := r.q.ExecContext(ctx, q, batchID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *AssignmentMySQLRepository) MarkPublishedByBatch(ctx context.Context, batchID uint64) error {
	const q = `UPDATE schedule_assignments SET status = ? WHERE batch_id = ?`
	_, err := r.q.ExecContext(ctx, q, model.BatchPublished, batchID)
	return err
}

func (r *AssignmentMySQLRepository) DistinctUserIDs(ctx context.Context, batchID uint64) ([]uint64, error) {
	const q = `SELECT DISTINCT user_id FROM schedule_assignments WHERE batch_id = ? ORDER BY user_id`
	rows, err := r.q.QueryContext(ctx, q, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *AssignmentMySQLRepository) ListDetailedByBatch(ctx context.Context, batchID uint64) ([]model.AssignmentDetail, error) {
	const q = `SELECT
	             sa.id, sa.user_id, u.student_number, u.display_name,
	             sa.slot_id, rs.room_no, rs.day_of_week, rs.hour, sa.status
	           FROM schedule_assignments sa
	           JOIN users u ON u.id = sa.user_id
	           JOIN room_slots rs ON rs.id = sa.slot_id
	           WHERE sa.batch_id = ?
	           ORDER BY rs.day_of_week, rs.hour, rs.room_no`
	rows, err := r.q.QueryContext(ctx, q, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AssignmentDetail
	for rows.Next() {
		var d model.AssignmentDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.StudentNumber, &d.DisplayName,
			&d.SlotID, &d.RoomNo, &d.DayOfWeek, &d.Hour, &d.Status); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *AssignmentMySQLRepository) ListForUser(ctx context.Context, batchID, userID uint64) ([]model.MemberAssignment, error) {
	const q = `SELECT sa.id, rs.room_no, rs.day_of_week, rs.hour
	           FROM schedule_assignments sa
	           JOIN room_slots rs ON rs.id = sa.slot_id
	           WHERE sa.batch_id = ? AND sa.user_id = ?
	           ORDER BY rs.day_of_week, rs.hour, rs.room_no`
	rows, err := r.q.QueryContext(ctx, q, batchID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MemberAssignment
	for rows.Next() {
		var a model.MemberAssignment
		if err := rows.Scan(&a.ID, &a.RoomNo, &a.DayOfWeek, &a.Hour); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AssignmentMySQLRepository) CountsByUser(ctx context.Context, batchID uint64) (map[uint64]int, error) {
	const q = `SELECT user_id, COUNT(*) FROM schedule_assignments WHERE batch_id = ? GROUP BY user_id`
	rows, err := r.q.QueryContext(ctx, q, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint64]int)
	for rows.Next() {
		var uid uint64
		var n int
		if err := rows.Scan(&uid, &n); err != nil {
			return nil, err
		}
		out[uid] = n
	}
	return out, rows.Err()
}

func (r *AssignmentMySQLRepository) ListGrid(ctx context.Context, batchID, semesterID uint64) ([]model.GridCell, error) {
	const q = `SELECT
	             rs.id, rs.room_no, rs.day_of_week, rs.hour,
	             COALESCE(sa.user_id, 0), COALESCE(u.display_name, ''), COALESCE(u.student_number, '')
	           FROM room_slots rs
	           LEFT JOIN schedule_assignments sa ON sa.slot_id = rs.id AND sa.batch_id = ?
	           LEFT JOIN users u ON u.id = sa.user_id
	           WHERE rs.semester_id = ?
	           ORDER BY rs.day_of_week, rs.hour, rs.room_no`
	rows, err := r.q.QueryContext(ctx, q, batchID, semesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.GridCell
	for rows.Next() {
		var c model.GridCell
		if err := rows.Scan(&c.SlotID, &c.RoomNo, &c.DayOfWeek, &c.Hour,
			&c.UserID, &c.DisplayName, &c.StudentNumber); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanAssignment(row *sql.Row) (*model.ScheduleAssignment, error) {
	var a model.ScheduleAssignment
	if err := row.Scan(&a.ID, &a.BatchID, &a.SemesterID, &a.UserID, &a.SlotID, &a.Status); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanOptionalAssignment(row *sql.Row) (*model.ScheduleAssignment, error) {
	a, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
