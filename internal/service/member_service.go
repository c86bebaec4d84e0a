package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/club-practice-scheduler/internal/model"
	"github.com/iliyamo/club-practice-scheduler/internal/repository"
	"github.com/iliyamo/club-practice-scheduler/internal/utils"
)

// MemberService provisions and lists club member accounts.  Only admins
// reach these operations; sign-in itself is handled by the club's SSO
// gateway, this service just stores the credential hash.
type MemberService struct {
	txm        repository.TxManager
	bcryptCost int
}

// NewMemberService returns a service running its operations through the
// given transaction manager, hashing initial passwords at the given
// bcrypt cost.
func NewMemberService(txm repository.TxManager, bcryptCost int) *MemberService {
	return &MemberService{txm: txm, bcryptCost: bcryptCost}
}

// CreateMemberInput carries a new member's account details.
type CreateMemberInput struct {
	StudentNumber string
	DisplayName   string
	Email         string
	Password      string
}

// CreateMember creates a MEMBER account.  Student numbers are unique;
// re-using one is a conflict, not an upsert.
func (s *MemberService) CreateMember(ctx context.Context, in CreateMemberInput) (*model.User, error) {
	in.StudentNumber = strings.TrimSpace(in.StudentNumber)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.StudentNumber == "" || in.DisplayName == "" {
		return nil, fmt.Errorf("%w: student_number and display_name are required", ErrInvalidInput)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	var user *model.User
	err = s.txm.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		existing, err := repos.Users.FindByStudentNumber(ctx, in.StudentNumber)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: student number already registered", ErrConflict)
		}
		user = &model.User{
			StudentNumber: in.StudentNumber,
			DisplayName:   in.DisplayName,
			Email:         in.Email,
			Role:          model.RoleMember,
			PasswordHash:  hash,
		}
		return repos.Users.CreateMember(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	user.PasswordHash = "" // never leaves the service layer
	return user, nil
}

// ListMembers returns all MEMBER accounts, ordered by student number.
func (s *MemberService) ListMembers(ctx context.Context) ([]model.User, error) {
	var members []model.User
	err := s.txm.WithTx(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		var err error
		members, err = repos.Users.ListMembers(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	for i := range members {
		members[i].PasswordHash = ""
	}
	return members, nil
}
