package roles

import (
	"context"
	"time"
)

// Role represents a role for management.
type Role struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RoleInput carries the writable attributes of a role. A nil IsActive means active.
type RoleInput struct {
	Name     string `json:"name" validate:"required,max=64"`
	IsActive *bool  `json:"isActive"`
}

// Active resolves the IsActive default.
func (in RoleInput) Active() bool {
	if in.IsActive == nil {
		return true
	}
	return *in.IsActive
}

// DeleteHook runs before a role is removed so dependants can drop references to it.
type DeleteHook func(ctx context.Context, roleID int64) error
