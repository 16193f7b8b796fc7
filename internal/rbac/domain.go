// Package rbac manages per-role module permissions.
package rbac

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// RolePermission grants capabilities on a module to a role.
type RolePermission struct {
	ID           int64  `json:"id"`
	RoleID       int64  `json:"role_id"`
	MainModule   string `json:"main_module"`
	ModuleName   string `json:"module_name"`
	ViewAccess   bool   `json:"view_access"`
	CreateAccess bool   `json:"create_access"`
	UpdateAccess bool   `json:"update_access"`
	DeleteAccess bool   `json:"delete_access"`
}

// Grants reports whether the permission carries the capability.
func (p RolePermission) Grants(c Capability) bool {
	switch c {
	case CapabilityView:
		return p.ViewAccess
	case CapabilityCreate:
		return p.CreateAccess
	case CapabilityUpdate:
		return p.UpdateAccess
	case CapabilityDelete:
		return p.DeleteAccess
	}
	return false
}

// PermissionInput carries the writable attributes of a permission.
type PermissionInput struct {
	RoleID       int64  `json:"role_id" validate:"gt=0"`
	MainModule   string `json:"main_module" validate:"required,max=100"`
	ModuleName   string `json:"module_name" validate:"required,max=100"`
	ViewAccess   bool   `json:"view_access"`
	CreateAccess bool   `json:"create_access"`
	UpdateAccess bool   `json:"update_access"`
	DeleteAccess bool   `json:"delete_access"`
}

// Capability is a single access flag.
type Capability string

const (
	CapabilityView   Capability = "view"
	CapabilityCreate Capability = "create"
	CapabilityUpdate Capability = "update"
	CapabilityDelete Capability = "delete"
)

// ParseCapability reads a capability name such as "update", case-insensitively.
func ParseCapability(raw string) (Capability, error) {
	c := Capability(strings.ToLower(strings.TrimSpace(raw)))
	switch c {
	case CapabilityView, CapabilityCreate, CapabilityUpdate, CapabilityDelete:
		return c, nil
	}
	return "", fmt.Errorf("%w: unknown capability %q", shared.ErrValidation, raw)
}

// AccessCheck is the answer to a capability question for one role and module.
type AccessCheck struct {
	RoleID     int64      `json:"role_id"`
	Module     string     `json:"module"`
	Capability Capability `json:"capability"`
	Allowed    bool       `json:"allowed"`
}

// Filter narrows permission listings.
type Filter struct {
	RoleID *int64
}

// Matches reports whether p passes the filter.
func (f Filter) Matches(p RolePermission) bool {
	return f.RoleID == nil || p.RoleID == *f.RoleID
}

// ParseRoleFilter parses the roleId query value. Empty means no filter.
func ParseRoleFilter(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, shared.ErrInvalidRoleID
	}
	return &id, nil
}
