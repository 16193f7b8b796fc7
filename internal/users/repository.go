package users

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// MemoryRepository keeps users in process memory, ordered by id.
type MemoryRepository struct {
	mu     sync.RWMutex
	users  []User
	nextID int64
	now    func() time.Time
}

// NewMemoryRepository constructs a repository holding the given users.
func NewMemoryRepository(seed []User) *MemoryRepository {
	repo := &MemoryRepository{now: func() time.Time { return time.Now().UTC() }}
	for _, u := range seed {
		repo.users = append(repo.users, u)
		if u.ID > repo.nextID {
			repo.nextID = u.ID
		}
	}
	return repo
}

// Fixtures returns the default user set.
func Fixtures() []User {
	created := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)
	return []User{
		{ID: 1, FirstName: "John", LastName: "Doe", Email: "john@example.com", Job: "Developer", Role: &RoleRef{ID: 1}, IsActive: true, IsConfirmed: true, CreatedAt: created, UpdatedAt: created},
		{ID: 2, FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Job: "Designer", Role: &RoleRef{ID: 2}, IsActive: false, IsConfirmed: true, CreatedAt: created, UpdatedAt: created},
	}
}

// List returns one page of users that are not soft-deleted.
func (r *MemoryRepository) List(_ context.Context, page shared.PageRequest) ([]User, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	live := r.live()
	return shared.Paginate(live, page), len(live), nil
}

// All returns every user that is not soft-deleted.
func (r *MemoryRepository) All(_ context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.live(), nil
}

// Get fetches a user by ID, including soft-deleted users.
func (r *MemoryRepository) Get(_ context.Context, id int64) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexOf(id, true)
	if idx < 0 {
		return User{}, fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
	}
	return clone(r.users[idx]), nil
}

// Create inserts a new user.
func (r *MemoryRepository) Create(_ context.Context, in UserInput) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTaken(in.Email, 0) {
		return User{}, fmt.Errorf("email %q: %w", in.Email, shared.ErrDuplicate)
	}
	r.nextID++
	now := r.now()
	u := User{ID: r.nextID, CreatedAt: now}
	apply(&u, in, now)
	r.users = append(r.users, u)
	return clone(u), nil
}

// Update replaces the writable attributes of a live user.
func (r *MemoryRepository) Update(_ context.Context, id int64, in UserInput) (User, error) {
	return r.mutate(id, func(u *User, now time.Time) error {
		if r.emailTaken(in.Email, id) {
			return fmt.Errorf("email %q: %w", in.Email, shared.ErrDuplicate)
		}
		apply(u, in, now)
		return nil
	})
}

// SetActive flips the active flag of a live user.
func (r *MemoryRepository) SetActive(_ context.Context, id int64, active bool) (User, error) {
	return r.mutate(id, func(u *User, now time.Time) error {
		u.IsActive = active
		u.UpdatedAt = now
		return nil
	})
}

// SetRole assigns or clears the role of a live user.
func (r *MemoryRepository) SetRole(_ context.Context, id int64, roleID *int64) (User, error) {
	return r.mutate(id, func(u *User, now time.Time) error {
		u.Role = roleRef(roleID)
		u.UpdatedAt = now
		return nil
	})
}

// RecordLogin bumps the login counter and stores the last login metadata.
func (r *MemoryRepository) RecordLogin(_ context.Context, id int64, ip string, at time.Time) (User, error) {
	return r.mutate(id, func(u *User, now time.Time) error {
		u.LoginCount++
		u.LastLoginAt = &at
		u.LastLoginIP = ip
		u.UpdatedAt = now
		return nil
	})
}

// SoftDelete marks a live user as deleted.
func (r *MemoryRepository) SoftDelete(_ context.Context, id int64, at time.Time) error {
	_, err := r.mutate(id, func(u *User, now time.Time) error {
		u.DeletedAt = &at
		u.IsActive = false
		u.UpdatedAt = now
		return nil
	})
	return err
}

// ClearRole unassigns roleID from every user holding it and returns how many changed.
func (r *MemoryRepository) ClearRole(_ context.Context, roleID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	now := r.now()
	for i := range r.users {
		if r.users[i].RoleID() == roleID {
			r.users[i].Role = nil
			r.users[i].UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) mutate(id int64, fn func(*User, time.Time) error) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOf(id, false)
	if idx < 0 {
		return User{}, fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
	}
	u := clone(r.users[idx])
	if err := fn(&u, r.now()); err != nil {
		return User{}, err
	}
	r.users[idx] = u
	return clone(u), nil
}

func (r *MemoryRepository) live() []User {
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		if !u.Deleted() {
			out = append(out, clone(u))
		}
	}
	return out
}

func (r *MemoryRepository) indexOf(id int64, includeDeleted bool) int {
	for i, u := range r.users {
		if u.ID == id && (includeDeleted || !u.Deleted()) {
			return i
		}
	}
	return -1
}

func (r *MemoryRepository) emailTaken(email string, except int64) bool {
	for _, u := range r.users {
		if u.ID != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func apply(u *User, in UserInput, now time.Time) {
	u.FirstName = in.FirstName
	u.LastName = in.LastName
	u.Email = in.Email
	u.Avatar = in.Avatar
	u.Job = in.Job
	u.Role = roleRef(in.RoleID)
	u.IsActive = in.Active()
	u.IsConfirmed = in.IsConfirmed
	u.UpdatedAt = now
}

func roleRef(id *int64) *RoleRef {
	if id == nil {
		return nil
	}
	return &RoleRef{ID: *id}
}

// clone copies pointer fields so callers cannot mutate stored rows.
func clone(u User) User {
	if u.Role != nil {
		ref := *u.Role
		u.Role = &ref
	}
	if u.LastLoginAt != nil {
		at := *u.LastLoginAt
		u.LastLoginAt = &at
	}
	if u.DeletedAt != nil {
		at := *u.DeletedAt
		u.DeletedAt = &at
	}
	return u
}
