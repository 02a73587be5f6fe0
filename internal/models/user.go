package models

import "time"

// UserRole represents the available roles in the directory.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// CanSubmitRequests reports whether the role is allowed to open
// schedule-change requests.
func (r UserRole) CanSubmitRequests() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// User maps an external chat identity to a role and profile attributes.
// The id is the external identity (Telegram user id), not generated.
// Email and password hash are only populated for admin accounts that
// log into the desktop REST API.
type User struct {
	ID           int64      `db:"user_id" json:"id"`
	Role         UserRole   `db:"role" json:"role"`
	Specialty    *string    `db:"specialty" json:"specialty,omitempty"`
	GroupName    *string    `db:"group_name" json:"group_name,omitempty"`
	FullName     *string    `db:"full_name" json:"full_name,omitempty"`
	Email        *string    `db:"email" json:"email,omitempty"`
	PasswordHash *string    `db:"password_hash" json:"-"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// DisplayName returns the best human-readable name available.
func (u *User) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return ""
}
