package rbac

import (
	"context"
	"fmt"
	"sync"

	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// MemoryRepository keeps role permissions in process memory, ordered by id.
type MemoryRepository struct {
	mu     sync.RWMutex
	perms  []RolePermission
	nextID int64
}

// NewMemoryRepository constructs a repository holding the given permissions.
func NewMemoryRepository(seed []RolePermission) *MemoryRepository {
	repo := &MemoryRepository{perms: append([]RolePermission(nil), seed...)}
	for _, p := range seed {
		if p.ID > repo.nextID {
			repo.nextID = p.ID
		}
	}
	return repo
}

// Fixtures returns the default permission matrix, two modules per role.
func Fixtures() []RolePermission {
	return []RolePermission{
		{ID: 1, RoleID: 1, MainModule: "Dashboard", ModuleName: "Admin Panel", ViewAccess: true, CreateAccess: true, UpdateAccess: true, DeleteAccess: true},
		{ID: 2, RoleID: 1, MainModule: "User Management", ModuleName: "Users", ViewAccess: true, CreateAccess: true, UpdateAccess: true, DeleteAccess: true},
		{ID: 3, RoleID: 2, MainModule: "Dashboard", ModuleName: "Editor Panel", ViewAccess: true, CreateAccess: true},
		{ID: 4, RoleID: 2, MainModule: "User Management", ModuleName: "Users", ViewAccess: true, CreateAccess: true},
		{ID: 5, RoleID: 3, MainModule: "Dashboard", ModuleName: "Viewer Panel", ViewAccess: true},
		{ID: 6, RoleID: 3, MainModule: "User Management", ModuleName: "Users", ViewAccess: true},
	}
}

// List returns one page of permissions passing the filter and the filtered total.
func (r *MemoryRepository) List(_ context.Context, filter Filter, page shared.PageRequest) ([]RolePermission, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := r.matching(filter)
	return shared.Paginate(matched, page), len(matched), nil
}

// All returns every permission passing the filter.
func (r *MemoryRepository) All(_ context.Context, filter Filter) ([]RolePermission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.matching(filter), nil
}

// Get fetches a permission by ID.
func (r *MemoryRepository) Get(_ context.Context, id int64) (RolePermission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return RolePermission{}, fmt.Errorf("role permission %d: %w", id, shared.ErrNotFound)
	}
	return r.perms[idx], nil
}

// Create inserts a permission.
func (r *MemoryRepository) Create(_ context.Context, in PermissionInput) (RolePermission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p := fromInput(r.nextID, in)
	r.perms = append(r.perms, p)
	return p, nil
}

// Update replaces a permission.
func (r *MemoryRepository) Update(_ context.Context, id int64, in PermissionInput) (RolePermission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return RolePermission{}, fmt.Errorf("role permission %d: %w", id, shared.ErrNotFound)
	}
	r.perms[idx] = fromInput(id, in)
	return r.perms[idx], nil
}

// Delete removes a permission.
func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("role permission %d: %w", id, shared.ErrNotFound)
	}
	r.perms = append(r.perms[:idx], r.perms[idx+1:]...)
	return nil
}

// DeleteByRole removes every permission of a role and returns how many were removed.
func (r *MemoryRepository) DeleteByRole(_ context.Context, roleID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.perms[:0]
	removed := 0
	for _, p := range r.perms {
		if p.RoleID == roleID {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	r.perms = kept
	return removed, nil
}

func (r *MemoryRepository) matching(filter Filter) []RolePermission {
	out := make([]RolePermission, 0, len(r.perms))
	for _, p := range r.perms {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

func (r *MemoryRepository) indexOf(id int64) int {
	for i, p := range r.perms {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func fromInput(id int64, in PermissionInput) RolePermission {
	return RolePermission{
		ID:           id,
		RoleID:       in.RoleID,
		MainModule:   in.MainModule,
		ModuleName:   in.ModuleName,
		ViewAccess:   in.ViewAccess,
		CreateAccess: in.CreateAccess,
		UpdateAccess: in.UpdateAccess,
		DeleteAccess: in.DeleteAccess,
	}
}
