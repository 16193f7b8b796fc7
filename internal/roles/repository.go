package roles

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// MemoryRepository keeps roles in process memory, ordered by id.
type MemoryRepository struct {
	mu     sync.RWMutex
	roles  []Role
	nextID int64
	now    func() time.Time
}

// NewMemoryRepository constructs a repository holding the given roles.
func NewMemoryRepository(seed []Role) *MemoryRepository {
	repo := &MemoryRepository{now: func() time.Time { return time.Now().UTC() }}
	for _, role := range seed {
		repo.roles = append(repo.roles, role)
		if role.ID > repo.nextID {
			repo.nextID = role.ID
		}
	}
	return repo
}

// Fixtures returns the default role set.
func Fixtures() []Role {
	created := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)
	return []Role{
		{ID: 1, Name: "Admin", IsActive: true, CreatedAt: created, UpdatedAt: created},
		{ID: 2, Name: "Editor", IsActive: true, CreatedAt: created, UpdatedAt: created},
		{ID: 3, Name: "Viewer", IsActive: true, CreatedAt: created, UpdatedAt: created},
	}
}

// List returns one page of roles and the total count.
func (r *MemoryRepository) List(_ context.Context, page shared.PageRequest) ([]Role, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return shared.Paginate(r.roles, page), len(r.roles), nil
}

// All returns every role.
func (r *MemoryRepository) All(_ context.Context) ([]Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Role, len(r.roles))
	copy(out, r.roles)
	return out, nil
}

// Get fetches a role by ID.
func (r *MemoryRepository) Get(_ context.Context, id int64) (Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return Role{}, fmt.Errorf("role %d: %w", id, shared.ErrNotFound)
	}
	return r.roles[idx], nil
}

// Create inserts a new role.
func (r *MemoryRepository) Create(_ context.Context, in RoleInput) (Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTaken(in.Name, 0) {
		return Role{}, fmt.Errorf("role %q: %w", in.Name, shared.ErrDuplicate)
	}
	r.nextID++
	now := r.now()
	role := Role{ID: r.nextID, Name: in.Name, IsActive: in.Active(), CreatedAt: now, UpdatedAt: now}
	r.roles = append(r.roles, role)
	return role, nil
}

// Update replaces the writable attributes of a role.
func (r *MemoryRepository) Update(_ context.Context, id int64, in RoleInput) (Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return Role{}, fmt.Errorf("role %d: %w", id, shared.ErrNotFound)
	}
	if r.nameTaken(in.Name, id) {
		return Role{}, fmt.Errorf("role %q: %w", in.Name, shared.ErrDuplicate)
	}
	role := r.roles[idx]
	role.Name = in.Name
	role.IsActive = in.Active()
	role.UpdatedAt = r.now()
	r.roles[idx] = role
	return role, nil
}

// Delete removes a role by ID.
func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("role %d: %w", id, shared.ErrNotFound)
	}
	r.roles = append(r.roles[:idx], r.roles[idx+1:]...)
	return nil
}

func (r *MemoryRepository) indexOf(id int64) int {
	for i, role := range r.roles {
		if role.ID == id {
			return i
		}
	}
	return -1
}

func (r *MemoryRepository) nameTaken(name string, except int64) bool {
	for _, role := range r.roles {
		if role.ID != except && strings.EqualFold(role.Name, name) {
			return true
		}
	}
	return false
}
