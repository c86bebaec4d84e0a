package service

// In-memory repository doubles for the service tests.  They reproduce the
// query semantics the MySQL repositories promise (sentinel errors,
// (nil, nil) for absent rows, result ordering) over plain maps, so the
// tests exercise the real transaction bodies without a database.  Writes
// are applied immediately; tests never rely on rollback.

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/club-practice-scheduler/internal/model"
	"github.com/iliyamo/club-practice-scheduler/internal/repository"
)

type memStore struct {
	users       map[uint64]*model.User
	semesters   map[uint64]*model.Semester
	slots       map[uint64]*model.RoomSlot
	prefs       map[uint64]*model.SlotPreference
	batches     map[uint64]*model.ScheduleBatch
	assignments map[uint64]*model.ScheduleAssignment
	seq         uint64
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[uint64]*model.User{},
		semesters:   map[uint64]*model.Semester{},
		slots:       map[uint64]*model.RoomSlot{},
		prefs:       map[uint64]*model.SlotPreference{},
		batches:     map[uint64]*model.ScheduleBatch{},
		assignments: map[uint64]*model.ScheduleAssignment{},
	}
}

func (s *memStore) nextID() uint64 {
	s.seq++
	return s.seq
}

// Seeding helpers.

func (s *memStore) addSemester(name string, active bool) *model.Semester {
	sem := &model.Semester{
		ID:        s.nextID(),
		Name:      name,
		StartDate: "2026-03-01",
		EndDate:   "2026-06-30",
		IsActive:  active,
	}
	s.semesters[sem.ID] = sem
	return sem
}

func (s *memStore) addMember(studentNumber, name string) *model.User {
	u := &model.User{
		ID:            s.nextID(),
		StudentNumber: studentNumber,
		DisplayName:   name,
		Role:          model.RoleMember,
	}
	s.users[u.ID] = u
	return u
}

func (s *memStore) addSlot(semesterID uint64, room, day, hour int) *model.RoomSlot {
	sl := &model.RoomSlot{
		ID:         s.nextID(),
		SemesterID: semesterID,
		RoomNo:     room,
		DayOfWeek:  day,
		Hour:       hour,
	}
	s.slots[sl.ID] = sl
	return sl
}

func (s *memStore) addPref(semesterID, userID, slotID uint64) {
	p := &model.SlotPreference{
		ID:         s.nextID(),
		SemesterID: semesterID,
		UserID:     userID,
		SlotID:     slotID,
	}
	s.prefs[p.ID] = p
}

func (s *memStore) addBatch(semesterID uint64, status string) *model.ScheduleBatch {
	b := &model.ScheduleBatch{
		ID:         s.nextID(),
		SemesterID: semesterID,
		Status:     status,
		CreatedAt:  time.Now().UTC(),
	}
	s.batches[b.ID] = b
	return b
}

func (s *memStore) addAssignment(batchID, semesterID, userID, slotID uint64, status string) *model.ScheduleAssignment {
	a := &model.ScheduleAssignment{
		ID:         s.nextID(),
		BatchID:    batchID,
		SemesterID: semesterID,
		UserID:     userID,
		SlotID:     slotID,
		Status:     status,
	}
	s.assignments[a.ID] = a
	return a
}

func (s *memStore) proposedBatches(semesterID uint64) []*model.ScheduleBatch {
	var out []*model.ScheduleBatch
	for _, b := range s.batches {
		if b.SemesterID == semesterID && b.Status == model.BatchProposed {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) batchAssignments(batchID uint64) []*model.ScheduleAssignment {
	var out []*model.ScheduleAssignment
	for _, a := range s.assignments {
		if a.BatchID == batchID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// memTxManager satisfies repository.TxManager without transactions.

type memTxManager struct {
	store *memStore
}

func newMemTxManager(store *memStore) *memTxManager {
	return &memTxManager{store: store}
}

func (m *memTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepositories) error) error {
	return fn(ctx, repository.TxRepositories{
		Users:       &memUserRepo{m.store},
		Semesters:   &memSemesterRepo{m.store},
		Slots:       &memSlotRepo{m.store},
		Preferences: &memPrefRepo{m.store},
		Batches:     &memBatchRepo{m.store},
		Assignments: &memAssignmentRepo{m.store},
	})
}

// --- users ---

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) CreateMember(ctx context.Context, u *model.User) error {
	u.ID = r.s.nextID()
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetMemberByID(ctx context.Context, id uint64) (*model.User, error) {
	u, ok := r.s.users[id]
	if !ok || u.Role != model.RoleMember {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) FindByStudentNumber(ctx context.Context, studentNumber string) (*model.User, error) {
	for _, u := range r.s.users {
		if u.StudentNumber == studentNumber {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) ListMembers(ctx context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.s.users {
		if u.Role == model.RoleMember {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- semesters ---

type memSemesterRepo struct{ s *memStore }

func (r *memSemesterRepo) Create(ctx context.Context, sem *model.Semester) error {
	sem.ID = r.s.nextID()
	cp := *sem
	r.s.semesters[sem.ID] = &cp
	return nil
}

func (r *memSemesterRepo) GetByID(ctx context.Context, id uint64) (*model.Semester, error) {
	sem, ok := r.s.semesters[id]
	if !ok {
		return nil, repository.ErrSemesterNotFound
	}
	cp := *sem
	return &cp, nil
}

func (r *memSemesterRepo) Active(ctx context.Context) (*model.Semester, error) {
	var best *model.Semester
	for _, sem := range r.s.semesters {
		if sem.IsActive && (best == nil || sem.ID > best.ID) {
			best = sem
		}
	}
	if best == nil {
		return nil, repository.ErrSemesterNotFound
	}
	cp := *best
	return &cp, nil
}

func (r *memSemesterRepo) DeactivateAll(ctx context.Context) error {
	for _, sem := range r.s.semesters {
		sem.IsActive = false
	}
	return nil
}

// --- slots ---

type memSlotRepo struct{ s *memStore }

func (r *memSlotRepo) BulkCreate(ctx context.Context, slots []model.RoomSlot) error {
	for i := range slots {
		slots[i].ID = r.s.nextID()
		cp := slots[i]
		r.s.slots[cp.ID] = &cp
	}
	return nil
}

func (r *memSlotRepo) GetByID(ctx context.Context, id uint64) (*model.RoomSlot, error) {
	sl, ok := r.s.slots[id]
	if !ok {
		return nil, repository.ErrSlotNotFound
	}
	cp := *sl
	return &cp, nil
}

func (r *memSlotRepo) ListBySemester(ctx context.Context, semesterID uint64) ([]model.RoomSlot, error) {
	var out []model.RoomSlot
	for _, sl := range r.s.slots {
		if sl.SemesterID == semesterID {
			out = append(out, *sl)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		if a.Hour != b.Hour {
			return a.Hour < b.Hour
		}
		return a.RoomNo < b.RoomNo
	})
	return out, nil
}

func (r *memSlotRepo) CountBySemester(ctx context.Context, semesterID uint64) (int, error) {
	n := 0
	for _, sl := range r.s.slots {
		if sl.SemesterID == semesterID {
			n++
		}
	}
	return n, nil
}

func (r *memSlotRepo) ListBoard(ctx context.Context, semesterID, userID uint64) ([]model.SlotBoardEntry, error) {
	rows, _ := r.ListBySemester(ctx, semesterID)
	out := make([]model.SlotBoardEntry, 0, len(rows))
	for _, sl := range rows {
		entry := model.SlotBoardEntry{
			ID:        sl.ID,
			RoomNo:    sl.RoomNo,
			DayOfWeek: sl.DayOfWeek,
			Hour:      sl.Hour,
		}
		for _, p := range r.s.prefs {
			if p.SlotID != sl.ID || p.SemesterID != semesterID {
				continue
			}
			entry.SelectedCount++
			if p.UserID == userID {
				entry.SelectedByMe = true
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

// --- preferences ---

type memPrefRepo struct{ s *memStore }

func (r *memPrefRepo) DeleteByUserAndSemester(ctx context.Context, semesterID, userID uint64) (int, error) {
	n := 0
	for id, p := range r.s.prefs {
		if p.SemesterID == semesterID && p.UserID == userID {
			delete(r.s.prefs, id)
			n++
		}
	}
	return n, nil
}

func (r *memPrefRepo) BulkCreate(ctx context.Context, prefs []model.SlotPreference) error {
	for i := range prefs {
		prefs[i].ID = r.s.nextID()
		cp := prefs[i]
		r.s.prefs[cp.ID] = &cp
	}
	return nil
}

func (r *memPrefRepo) ListMemberPreferences(ctx context.Context, semesterID uint64) ([]model.SlotPreference, error) {
	var out []model.SlotPreference
	for _, p := range r.s.prefs {
		if p.SemesterID != semesterID {
			continue
		}
		if u, ok := r.s.users[p.UserID]; !ok || u.Role != model.RoleMember {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memPrefRepo) CountByUser(ctx context.Context, semesterID uint64) (map[uint64]int, error) {
	out := map[uint64]int{}
	for _, p := range r.s.prefs {
		if p.SemesterID == semesterID {
			out[p.UserID]++
		}
	}
	return out, nil
}

func (r *memPrefRepo) CountValidSlots(ctx context.Context, semesterID uint64, slotIDs []uint64) (int, error) {
	n := 0
	for _, id := range slotIDs {
		if sl, ok := r.s.slots[id]; ok && sl.SemesterID == semesterID {
			n++
		}
	}
	return n, nil
}

// --- batches ---

type memBatchRepo struct{ s *memStore }

func (r *memBatchRepo) Create(ctx context.Context, b *model.ScheduleBatch) error {
	b.ID = r.s.nextID()
	b.Status = model.BatchProposed
	b.CreatedAt = time.Now().UTC()
	cp := *b
	r.s.batches[b.ID] = &cp
	return nil
}

func (r *memBatchRepo) GetByID(ctx context.Context, id uint64) (*model.ScheduleBatch, error) {
	b, ok := r.s.batches[id]
	if !ok {
		return nil, repository.ErrBatchNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memBatchRepo) ListProposedBySemester(ctx context.Context, semesterID uint64) ([]model.ScheduleBatch, error) {
	var out []model.ScheduleBatch
	for _, b := range r.s.proposedBatches(semesterID) {
		out = append(out, *b)
	}
	return out, nil
}

func (r *memBatchRepo) LatestProposedBySemester(ctx context.Context, semesterID uint64) (*model.ScheduleBatch, error) {
	proposed := r.s.proposedBatches(semesterID)
	if len(proposed) == 0 {
		return nil, repository.ErrBatchNotFound
	}
	cp := *proposed[len(proposed)-1]
	return &cp, nil
}

func (r *memBatchRepo) LatestPublishedBySemester(ctx context.Context, semesterID uint64) (*model.ScheduleBatch, error) {
	var best *model.ScheduleBatch
	for _, b := range r.s.batches {
		if b.SemesterID != semesterID || b.Status != model.BatchPublished {
			continue
		}
		if best == nil || b.ID > best.ID {
			best = b
		}
	}
	if best == nil {
		return nil, repository.ErrBatchNotFound
	}
	cp := *best
	return &cp, nil
}

func (r *memBatchRepo) LatestForExport(ctx context.Context, semesterID uint64) (*model.ScheduleBatch, error) {
	if b, err := r.LatestProposedBySemester(ctx, semesterID); err == nil {
		return b, nil
	}
	return r.LatestPublishedBySemester(ctx, semesterID)
}

func (r *memBatchRepo) Delete(ctx context.Context, id uint64) error {
	delete(r.s.batches, id)
	return nil
}

func (r *memBatchRepo) MarkPublished(ctx context.Context, id, publishedBy uint64) error {
	b, ok := r.s.batches[id]
	if !ok {
		return repository.ErrBatchNotFound
	}
	now := time.Now().UTC()
	b.Status = model.BatchPublished
	b.PublishedBy = &publishedBy
	b.PublishedAt = &now
	return nil
}

// --- assignments ---

type memAssignmentRepo struct{ s *memStore }

func (r *memAssignmentRepo) BulkCreate(ctx context.Context, rows []model.ScheduleAssignment) error {
	for i := range rows {
		rows[i].ID = r.s.nextID()
		if rows[i].Status == "" {
			rows[i].Status = model.BatchProposed
		}
		cp := rows[i]
		r.s.assignments[cp.ID] = &cp
	}
	return nil
}

func (r *memAssignmentRepo) Create(ctx context.Context, a *model.ScheduleAssignment) error {
	a.ID = r.s.nextID()
	if a.Status == "" {
		a.Status = model.BatchProposed
	}
	cp := *a
	r.s.assignments[a.ID] = &cp
	return nil
}

func (r *memAssignmentRepo) GetByID(ctx context.Context, id uint64) (*model.ScheduleAssignment, error) {
	a, ok := r.s.assignments[id]
	if !ok {
		return nil, repository.ErrAssignmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAssignmentRepo) FindBySlot(ctx context.Context, batchID, slotID, excludeID uint64) (*model.ScheduleAssignment, error) {
	for _, a := range r.s.assignments {
		if a.BatchID == batchID && a.SlotID == slotID && a.ID != excludeID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memAssignmentRepo) FindByUserAndSlot(ctx context.Context, batchID, userID, slotID, excludeID uint64) (*model.ScheduleAssignment, error) {
	for _, a := range r.s.assignments {
		if a.BatchID == batchID && a.UserID == userID && a.SlotID == slotID && a.ID != excludeID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memAssignmentRepo) CountByUser(ctx context.Context, batchID, userID uint64) (int, error) {
	n := 0
	for _, a := range r.s.assignments {
		if a.BatchID == batchID && a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *memAssignmentRepo) UpdateSlot(ctx context.Context, id, slotID uint64) error {
	a, ok := r.s.assignments[id]
	if !ok {
		return repository.ErrAssignmentNotFound
	}
	a.SlotID = slotID
	return nil
}

func (r *memAssignmentRepo) Delete(ctx context.Context, id uint64) error {
	delete(r.s.assignments, id)
	return nil
}

func (r *memAssignmentRepo) DeleteByBatch(ctx context.Context, batchID uint64) (int, error) {
	n := 0
	for id, a := range r.s.assignments {
		if a.BatchID == batchID {
			delete(r.s.assignments, id)
			n++
		}
	}
	return n, nil
}

func (r *memAssignmentRepo) MarkPublishedByBatch(ctx context.Context, batchID uint64) error {
	for _, a := range r.s.assignments {
		if a.BatchID == batchID {
			a.Status = model.BatchPublished
		}
	}
	return nil
}

func (r *memAssignmentRepo) DistinctUserIDs(ctx context.Context, batchID uint64) ([]uint64, error) {
	seen := map[uint64]bool{}
	var out []uint64
	for _, a := range r.s.assignments {
		if a.BatchID == batchID && !seen[a.UserID] {
			seen[a.UserID] = true
			out = append(out, a.UserID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *memAssignmentRepo) ListDetailedByBatch(ctx context.Context, batchID uint64) ([]model.AssignmentDetail, error) {
	var out []model.AssignmentDetail
	for _, a := range r.s.batchAssignments(batchID) {
		d := model.AssignmentDetail{
			ID:     a.ID,
			UserID: a.UserID,
			SlotID: a.SlotID,
			Status: a.Status,
		}
		if u, ok := r.s.users[a.UserID]; ok {
			d.StudentNumber = u.StudentNumber
			d.DisplayName = u.DisplayName
		}
		if sl, ok := r.s.slots[a.SlotID]; ok {
			d.RoomNo = sl.RoomNo
			d.DayOfWeek = sl.DayOfWeek
			d.Hour = sl.Hour
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *memAssignmentRepo) ListForUser(ctx context.Context, batchID, userID uint64) ([]model.MemberAssignment, error) {
	var out []model.MemberAssignment
	for _, a := range r.s.batchAssignments(batchID) {
		if a.UserID != userID {
			continue
		}
		m := model.MemberAssignment{ID: a.ID}
		if sl, ok := r.s.slots[a.SlotID]; ok {
			m.RoomNo = sl.RoomNo
			m.DayOfWeek = sl.DayOfWeek
			m.Hour = sl.Hour
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *memAssignmentRepo) CountsByUser(ctx context.Context, batchID uint64) (map[uint64]int, error) {
	out := map[uint64]int{}
	for _, a := range r.s.assignments {
		if a.BatchID == batchID {
			out[a.UserID]++
		}
	}
	return out, nil
}

func (r *memAssignmentRepo) ListGrid(ctx context.Context, batchID, semesterID uint64) ([]model.GridCell, error) {
	bySlot := map[uint64]*model.ScheduleAssignment{}
	for _, a := range r.s.assignments {
		if a.BatchID == batchID {
			bySlot[a.SlotID] = a
		}
	}
	slots, _ := (&memSlotRepo{r.s}).ListBySemester(ctx, semesterID)
	out := make([]model.GridCell, 0, len(slots))
	for _, sl := range slots {
		cell := model.GridCell{
			SlotID:    sl.ID,
			RoomNo:    sl.RoomNo,
			DayOfWeek: sl.DayOfWeek,
			Hour:      sl.Hour,
		}
		if a, ok := bySlot[sl.ID]; ok {
			cell.UserID = a.UserID
			if u, uok := r.s.users[a.UserID]; uok {
				cell.DisplayName = u.DisplayName
				cell.StudentNumber = u.StudentNumber
			}
		}
		out = append(out, cell)
	}
	return out, nil
}
