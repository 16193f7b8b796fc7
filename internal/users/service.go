package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-admin/internal/activities"
	"github.com/odyssey-erp/odyssey-admin/internal/roles"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context, page shared.PageRequest) ([]User, int, error)
	All(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, in UserInput) (User, error)
	Update(ctx context.Context, id int64, in UserInput) (User, error)
	SetActive(ctx context.Context, id int64, active bool) (User, error)
	SetRole(ctx context.Context, id int64, roleID *int64) (User, error)
	RecordLogin(ctx context.Context, id int64, ip string, at time.Time) (User, error)
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	ClearRole(ctx context.Context, roleID int64) (int, error)
}

// RoleLookup resolves role references. Satisfied by *roles.Service.
type RoleLookup interface {
	Get(ctx context.Context, id int64) (roles.Role, error)
	All(ctx context.Context) ([]roles.Role, error)
}

// Service handles user business logic.
type Service struct {
	repo     RepositoryPort
	roles    RoleLookup
	validate *validator.Validate
	activity activities.Recorder
	cache    shared.Invalidator
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, roleLookup RoleLookup, recorder activities.Recorder, cache shared.Invalidator, logger *slog.Logger) *Service {
	if recorder == nil {
		recorder = activities.NopRecorder{}
	}
	if cache == nil {
		cache = shared.NopInvalidator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		roles:    roleLookup,
		validate: shared.NewValidator(),
		activity: recorder,
		cache:    cache,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// List returns one page of users that are not soft-deleted, with role names resolved.
func (s *Service) List(ctx context.Context, page shared.PageRequest) (shared.Page[User], error) {
	rows, total, err := s.repo.List(ctx, page.Normalize())
	if err != nil {
		return shared.Page[User]{}, err
	}
	if err := s.resolve(ctx, rows); err != nil {
		return shared.Page[User]{}, err
	}
	return shared.NewPage(rows, total), nil
}

// All returns every user that is not soft-deleted.
func (s *Service) All(ctx context.Context) ([]User, error) {
	rows, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	return rows, s.resolve(ctx, rows)
}

// Get fetches a user by ID.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	return s.one(ctx, u)
}

// Create inserts a new user.
func (s *Service) Create(ctx context.Context, in UserInput) (User, error) {
	in, err := s.clean(ctx, in)
	if err != nil {
		return User{}, err
	}
	u, err := s.repo.Create(ctx, in)
	if err != nil {
		return User{}, err
	}
	s.changed(ctx, "User created: "+u.FullName())
	return s.one(ctx, u)
}

// Update replaces the writable attributes of a user.
func (s *Service) Update(ctx context.Context, id int64, in UserInput) (User, error) {
	in, err := s.clean(ctx, in)
	if err != nil {
		return User{}, err
	}
	u, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return User{}, err
	}
	s.changed(ctx, "User updated: "+u.FullName())
	return s.one(ctx, u)
}

// Activate marks a user active.
func (s *Service) Activate(ctx context.Context, id int64) (User, error) {
	return s.setActive(ctx, id, true)
}

// Deactivate marks a user inactive.
func (s *Service) Deactivate(ctx context.Context, id int64) (User, error) {
	return s.setActive(ctx, id, false)
}

func (s *Service) setActive(ctx context.Context, id int64, active bool) (User, error) {
	u, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return User{}, err
	}
	verb := "deactivated"
	if active {
		verb = "activated"
	}
	s.changed(ctx, fmt.Sprintf("User %s: %s", verb, u.FullName()))
	return s.one(ctx, u)
}

// AssignRole sets or clears the role of a user. Unknown roles yield ErrUnknownRole.
func (s *Service) AssignRole(ctx context.Context, id int64, in RoleAssignment) (User, error) {
	if err := shared.ValidateStruct(s.validate, in); err != nil {
		return User{}, err
	}
	if err := s.checkRole(ctx, in.RoleID); err != nil {
		return User{}, err
	}
	u, err := s.repo.SetRole(ctx, id, in.RoleID)
	if err != nil {
		return User{}, err
	}
	u, err = s.one(ctx, u)
	if err != nil {
		return User{}, err
	}
	action := "Role unassigned: " + u.FullName()
	if u.Role != nil {
		action = fmt.Sprintf("Role assigned: %s to %s", u.Role.Name, u.FullName())
	}
	s.changed(ctx, action)
	return u, nil
}

// RecordLogin stores a successful sign-in for the user.
func (s *Service) RecordLogin(ctx context.Context, id int64, in LoginEvent) (User, error) {
	in.IP = strings.TrimSpace(in.IP)
	if err := shared.ValidateStruct(s.validate, in); err != nil {
		return User{}, err
	}
	u, err := s.repo.RecordLogin(ctx, id, in.IP, s.now())
	if err != nil {
		return User{}, err
	}
	return s.one(ctx, u)
}

// Delete soft-deletes a user; the row is kept but hidden from listings.
func (s *Service) Delete(ctx context.Context, id int64) error {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id, s.now()); err != nil {
		return err
	}
	s.changed(ctx, "User deleted: "+u.FullName())
	return nil
}

// UnassignRole clears roleID from every user. Registered as a roles delete hook.
func (s *Service) UnassignRole(ctx context.Context, roleID int64) error {
	n, err := s.repo.ClearRole(ctx, roleID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("users unassigned from deleted role", slog.Int64("role_id", roleID), slog.Int("count", n))
	}
	return nil
}

func (s *Service) clean(ctx context.Context, in UserInput) (UserInput, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Avatar = strings.TrimSpace(in.Avatar)
	in.Job = strings.TrimSpace(in.Job)
	if err := shared.ValidateStruct(s.validate, in); err != nil {
		return UserInput{}, err
	}
	if err := s.checkRole(ctx, in.RoleID); err != nil {
		return UserInput{}, err
	}
	return in, nil
}

func (s *Service) checkRole(ctx context.Context, roleID *int64) error {
	if roleID == nil || s.roles == nil {
		return nil
	}
	if _, err := s.roles.Get(ctx, *roleID); err != nil {
		if shared.IsNotFound(err) {
			return fmt.Errorf("role %d: %w", *roleID, shared.ErrUnknownRole)
		}
		return err
	}
	return nil
}

func (s *Service) one(ctx context.Context, u User) (User, error) {
	rows := []User{u}
	if err := s.resolve(ctx, rows); err != nil {
		return User{}, err
	}
	return rows[0], nil
}

// resolve fills role names in place. References to roles that no longer exist are dropped.
func (s *Service) resolve(ctx context.Context, rows []User) error {
	if s.roles == nil {
		return nil
	}
	all, err := s.roles.All(ctx)
	if err != nil {
		return fmt.Errorf("resolve roles: %w", err)
	}
	names := make(map[int64]string, len(all))
	for _, role := range all {
		names[role.ID] = role.Name
	}
	for i := range rows {
		if rows[i].Role == nil {
			continue
		}
		name, ok := names[rows[i].Role.ID]
		if !ok {
			rows[i].Role = nil
			continue
		}
		rows[i].Role.Name = name
	}
	return nil
}

func (s *Service) changed(ctx context.Context, action string) {
	entry := activities.Entry{Action: action, User: shared.ActorFromContext(ctx)}
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn("record user activity", slog.String("action", action), slog.Any("error", err))
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("invalidate dashboard cache", slog.Any("error", err))
	}
}
