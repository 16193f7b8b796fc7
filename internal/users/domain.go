package users

import (
	"strings"
	"time"
)

// RoleRef is the optional role assignment of a user.
type RoleRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// User represents a user account for management.
type User struct {
	ID          int64      `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	Avatar      string     `json:"avatar"`
	Job         string     `json:"job"`
	Role        *RoleRef   `json:"role,omitempty"`
	IsActive    bool       `json:"isActive"`
	IsConfirmed bool       `json:"isConfirmed"`
	LoginCount  int        `json:"loginCount"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	LastLoginIP string     `json:"lastLoginIP,omitempty"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Deleted reports whether the user is soft-deleted.
func (u User) Deleted() bool {
	return u.DeletedAt != nil
}

// RoleID returns the assigned role id or zero.
func (u User) RoleID() int64 {
	if u.Role == nil {
		return 0
	}
	return u.Role.ID
}

// CountByRole counts live users per role id. Unassigned users are counted under zero.
func CountByRole(us []User) map[int64]int {
	counts := make(map[int64]int)
	for _, u := range us {
		if u.Deleted() {
			continue
		}
		counts[u.RoleID()]++
	}
	return counts
}

// UserInput carries the writable attributes of a user. A nil IsActive means active.
type UserInput struct {
	FirstName   string `json:"firstName" validate:"required,max=100"`
	LastName    string `json:"lastName" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Avatar      string `json:"avatar" validate:"max=500"`
	Job         string `json:"job" validate:"max=100"`
	RoleID      *int64 `json:"roleId" validate:"omitempty,gt=0"`
	IsActive    *bool  `json:"isActive"`
	IsConfirmed bool   `json:"isConfirmed"`
}

// Active resolves the IsActive default.
func (in UserInput) Active() bool {
	if in.IsActive == nil {
		return true
	}
	return *in.IsActive
}

// RoleAssignment is the body of a role change; a nil RoleID unassigns.
type RoleAssignment struct {
	RoleID *int64 `json:"roleId" validate:"omitempty,gt=0"`
}

// LoginEvent records a successful sign-in.
type LoginEvent struct {
	IP string `json:"ip" validate:"omitempty,ip"`
}
