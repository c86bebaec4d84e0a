package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/club-practice-scheduler/internal/model"
	"github.com/iliyamo/club-practice-scheduler/internal/utils"
)

// Low bcrypt cost keeps the tests fast; production cost comes from config.
func newMemberService(st *memStore) *MemberService {
	return NewMemberService(newMemTxManager(st), 4)
}

func TestCreateMember(t *testing.T) {
	st := newMemStore()
	svc := newMemberService(st)

	u, err := svc.CreateMember(context.Background(), CreateMemberInput{
		StudentNumber: " s001 ",
		DisplayName:   "Ada",
		Email:         "Ada@Club.Example",
		Password:      "correct horse",
	})
	require.NoError(t, err)

	assert.Equal(t, "s001", u.StudentNumber)
	assert.Equal(t, "ada@club.example", u.Email)
	assert.Equal(t, model.RoleMember, u.Role)
	assert.Empty(t, u.PasswordHash)

	stored := st.users[u.ID]
	require.NotNil(t, stored)
	assert.True(t, utils.VerifyPassword(stored.PasswordHash, "correct horse"))
}

func TestCreateMember_DuplicateStudentNumber(t *testing.T) {
	st := newMemStore()
	st.addMember("s001", "Ada")
	svc := newMemberService(st)

	_, err := svc.CreateMember(context.Background(), CreateMemberInput{
		StudentNumber: "s001",
		DisplayName:   "Imposter",
		Password:      "long enough",
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateMember_InvalidInput(t *testing.T) {
	svc := newMemberService(newMemStore())

	_, err := svc.CreateMember(context.Background(), CreateMemberInput{
		DisplayName: "Ada", Password: "long enough",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateMember(context.Background(), CreateMemberInput{
		StudentNumber: "s001", DisplayName: "Ada", Password: "short",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListMembers_OmitsPasswordHashes(t *testing.T) {
	st := newMemStore()
	a := st.addMember("s001", "Ada")
	st.users[a.ID].PasswordHash = "$2a$10$secret"
	st.addMember("s002", "Ben")
	svc := newMemberService(st)

	members, err := svc.ListMembers(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "s001", members[0].StudentNumber)
	for _, m := range members {
		assert.Empty(t, m.PasswordHash)
	}
}
