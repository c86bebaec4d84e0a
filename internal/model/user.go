package model

import "time"

// Role values stored in users.role.  ADMIN accounts manage semesters and
// schedule batches; MEMBER accounts submit slot preferences and receive
// practice-room assignments.
const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// User represents a club account.  Accounts are provisioned by an
// administrator; login and token issuance happen in a separate identity
// service, so this model only carries what the scheduler itself needs:
// identity, role and the bcrypt hash set at provisioning time.
//
// Fields:
//  ID            – primary key identifier.
//  StudentNumber – unique campus identifier, shown on exports.
//  DisplayName   – name shown on the schedule grid.
//  Email         – contact address handed to the notification collaborator.
//  Role          – ADMIN or MEMBER.
//  PasswordHash  – bcrypt hash of the initial password.
//  CreatedAt     – timestamp when the account was created.
type User struct {
	ID            uint64    // users.id
	StudentNumber string    // users.student_number
	DisplayName   string    // users.display_name
	Email         string    // users.email
	Role          string    // users.role
	PasswordHash  string    // users.password_hash
	CreatedAt     time.Time // users.created_at
}
