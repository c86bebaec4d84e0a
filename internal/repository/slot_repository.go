package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/club-practice-scheduler/internal/model"
)

// SlotRepository provides access to the immutable slot grid of a
// semester.  Slots are generated in bulk when the semester is created and
// only read afterwards.
type SlotRepository interface {
	// BulkCreate inserts the semester's slot grid in a single statement.
	BulkCreate(ctx context.Context, slots []model.RoomSlot) error
	// GetByID returns ErrSlotNotFound when the id does not exist.
	GetByID(ctx context.Context, id uint64) (*model.RoomSlot, error)
	// ListBySemester returns the semester's slots ordered by day, hour,
	// room — the natural grid order.
	ListBySemester(ctx context.Context, semesterID uint64) ([]model.RoomSlot, error)
	// CountBySemester returns how many slots the semester has.
	CountBySemester(ctx context.Context, semesterID uint64) (int, error)
	// ListBoard returns the semester's slots with per-slot selection counts
	// and the viewing member's own selection flag.
	ListBoard(ctx context.Context, semesterID, userID uint64) ([]model.SlotBoardEntry, error)
}

// SlotMySQLRepository implements SlotRepository.
type SlotMySQLRepository struct {
	q Querier
}

// NewSlotMySQLRepository binds the repository to a pool or transaction.
func NewSlotMySQLRepository(q Querier) *SlotMySQLRepository { return &SlotMySQLRepository{q: q} }

func (r *SlotMySQLRepository) BulkCreate(ctx context.Context, slots []model.RoomSlot) error {
	if len(slots) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO room_slots (semester_id, room_no, day_of_week, hour) VALUES `)
	args := make([]any, 0, len(slots)*4)
	for i, s := range slots {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?)")
		args = append(args, s.SemesterID, s.RoomNo, s.DayOfWeek, s.Hour)
	}
	_, err := r.q.ExecContext(ctx, sb.String(), args...)
	return err
}

func (r *SlotMySQLRepository) GetByID(ctx context.Context, id uint64) (*model.RoomSlot, error) {
	const q = `SELECT id, semester_id, room_no, day_of_week, hour FROM room_slots WHERE id = ?`
	var s model.RoomSlot
	err := r.q.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.SemesterID, &s.RoomNo, &s.DayOfWeek, &s.Hour)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SlotMySQLRepository) ListBySemester(ctx context.Context, semesterID uint64) ([]model.RoomSlot, error) {
	const q = `SELECT id, semester_id, room_no, day_of_week, hour
	           FROM room_slots WHERE semester_id = ?
	           ORDER BY day_of_week, hour, room_no`
	rows, err := r.q.QueryContext(ctx, q, semesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RoomSlot
	for rows.Next() {
		var s model.RoomSlot
		if err := rows.Scan(&s.ID, &s.SemesterID, &s.RoomNo, &s.DayOfWeek, &s.Hour); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SlotMySQLRepository) CountBySemester(ctx context.Context, semesterID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM room_slots WHERE semester_id = ?`
	var n int
	if err := r.q.QueryRowContext(ctx, q, semesterID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *SlotMySQLRepository) ListBoard(ctx context.Context, semesterID, userID uint64) ([]model.SlotBoardEntry, error) {
	const q = `SELECT
	             rs.id, rs.room_no, rs.day_of_week, rs.hour,
	             COALESCE(pc.cnt, 0) AS selected_count,
	             CASE WHEN mine.id IS NULL THEN 0 ELSE 1 END AS selected_by_me
	           FROM room_slots rs
	           LEFT JOIN (
	             SELECT slot_id, COUNT(*) AS cnt
	             FROM slot_preferences
	             WHERE semester_id = ?
	             GROUP BY slot_id
	           ) pc ON pc.slot_id = rs.id
	           LEFT JOIN slot_preferences mine
	             ON mine.slot_id = rs.id AND mine.user_id = ? AND mine.semester_id = ?
	           WHERE rs.semester_id = ?
	           ORDER BY rs.day_of_week, rs.hour, rs.room_no`
	rows, err := r.q.QueryContext(ctx, q, semesterID, userID, semesterID, semesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SlotBoardEntry
	for rows.Next() {
		var e model.SlotBoardEntry
		var mine int
		if err := rows.Scan(&e.ID, &e.RoomNo, &e.DayOfWeek, &e.Hour, &e.SelectedCount, &mine); err != nil {
			return nil, err
		}
		e.SelectedByMe = mine == 1
		out = append(out, e)
	}
	return out, rows.Err()
}
