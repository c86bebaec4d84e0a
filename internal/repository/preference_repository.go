package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/club-practice-scheduler/internal/model"
)

// PreferenceRepository provides access to member slot preferences.  A
// submission replaces the member's whole set for the semester, so the
// write surface is delete-then-bulk-insert inside one transaction.
type PreferenceRepository interface {
	// DeleteByUserAndSemester removes the member's current set and returns
	// how many rows went away.
	DeleteByUserAndSemester(ctx context.Context, semesterID, userID uint64) (int, error)
	// BulkCreate inserts preference rows in a single statement.
	BulkCreate(ctx context.Context, prefs []model.SlotPreference) error
	// ListMemberPreferences returns all (user, slot) pairs for the semester
	// restricted to accounts with the member role — the raw input of the
	// demand model.
	ListMemberPreferences(ctx context.Context, semesterID uint64) ([]model.SlotPreference, error)
	// CountByUser returns per-member preference counts for the semester,
	// used by the admin review screen's member summaries.
	CountByUser(ctx context.Context, semesterID uint64) (map[uint64]int, error)
	// CountValidSlots returns how many of the given slot ids belong to the
	// semester; callers compare against len(slotIDs) to reject stale ids.
	CountValidSlots(ctx context.Context, semesterID uint64, slotIDs []uint64) (int, error)
}

// PreferenceMySQLRepository implements PreferenceRepository.
type PreferenceMySQLRepository struct {
	q Querier
}

// NewPreferenceMySQLRepository binds the repository to a pool or transaction.
func NewPreferenceMySQLRepository(q Querier) *PreferenceMySQLRepository {
	return &PreferenceMySQLRepository{q: q}
}

func (r *PreferenceMySQLRepository) DeleteByUserAndSemester(ctx context.Context, semesterID, userID uint64) (int, error) {
	const q = `DELETE FROM slot_preferences WHERE semester_id = ? AND user_id = ?`
	res, err := r.q.ExecContext(ctx, q, semesterID, userID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *PreferenceMySQLRepository) BulkCreate(ctx context.Context, prefs []model.SlotPreference) error {
	if len(prefs) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO slot_preferences (semester_id, user_id, slot_id) VALUES `)
	args := make([]any, 0, len(prefs)*3)
	for i, p := range prefs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?)")
		args = append(args, p.SemesterID, p.UserID, p.SlotID)
	}
	_, err := r.q.ExecContext(ctx, sb.String(), args...)
	return err
}

func (r *PreferenceMySQLRepository) ListMemberPreferences(ctx context.Context, semesterID uint64) ([]model.SlotPreference, error) {
	const q = `SELECT sp.id, sp.semester_id, sp.user_id, sp.slot_id
	           FROM slot_preferences sp
	           JOIN users u ON u.id = sp.user_id AND u.role = ?
	           WHERE sp.semester_id = ?
	           ORDER BY sp.user_id, sp.slot_id`
	rows, err := r.q.QueryContext(ctx, q, model.RoleMember, semesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SlotPreference
	for rows.Next() {
		var p model.SlotPreference
		if err := rows.Scan(&p.ID, &p.SemesterID, &p.UserID, &p.SlotID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PreferenceMySQLRepository) CountByUser(ctx context.Context, semesterID uint64) (map[uint64]int, error) {
	const q = `SELECT user_id, COUNT(*) FROM slot_preferences WHERE semester_id = ? GROUP BY user_id`
	rows, err := r.q.QueryContext(ctx, q, semesterID)
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

func (r *PreferenceMySQLRepository) CountValidSlots(ctx context.Context, semesterID uint64, slotIDs []uint64) (int, error) {
	if len(slotIDs) == 0 {
		return 0, nil
	}
	var sb strings.Builder
	sb.WriteString(`SELECT COUNT(*) FROM room_slots WHERE semester_id = ? AND id IN (`)
	args := make([]any, 0, len(slotIDs)+1)
	args = append(args, semesterID)
	for i, id := range slotIDs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("?")
		args = append(args, id)
	}
	sb.WriteString(")")
	var n int
	if err := r.q.QueryRowContext(ctx, sb.String(), args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
