package roles

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-admin/internal/activities"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	List(ctx context.Context, page shared.PageRequest) ([]Role, int, error)
	All(ctx context.Context) ([]Role, error)
	Get(ctx context.Context, id int64) (Role, error)
	Create(ctx context.Context, in RoleInput) (Role, error)
	Update(ctx context.Context, id int64, in RoleInput) (Role, error)
	Delete(ctx context.Context, id int64) error
}

// Service handles role business logic.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
	activity activities.Recorder
	cache    shared.Invalidator
	logger   *slog.Logger
	hooks    []DeleteHook
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, recorder activities.Recorder, cache shared.Invalidator, logger *slog.Logger) *Service {
	if recorder == nil {
		recorder = activities.NopRecorder{}
	}
	if cache == nil {
		cache = shared.NopInvalidator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, validate: shared.NewValidator(), activity: recorder, cache: cache, logger: logger}
}

// OnDelete registers hooks run before a role row is removed. Hooks must be idempotent.
func (s *Service) OnDelete(hooks ...DeleteHook) {
	s.hooks = append(s.hooks, hooks...)
}

// List returns one page of roles.
func (s *Service) List(ctx context.Context, page shared.PageRequest) (shared.Page[Role], error) {
	rows, total, err := s.repo.List(ctx, page.Normalize())
	if err != nil {
		return shared.Page[Role]{}, err
	}
	return shared.NewPage(rows, total), nil
}

// All returns every role.
func (s *Service) All(ctx context.Context) ([]Role, error) {
	return s.repo.All(ctx)
}

// Get fetches a role by ID.
func (s *Service) Get(ctx context.Context, id int64) (Role, error) {
	return s.repo.Get(ctx, id)
}

// ActiveCount returns the number of active roles.
func (s *Service) ActiveCount(ctx context.Context) (int, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, role := range all {
		if role.IsActive {
			n++
		}
	}
	return n, nil
}

// Create inserts a new role.
func (s *Service) Create(ctx context.Context, in RoleInput) (Role, error) {
	in, err := s.clean(in)
	if err != nil {
		return Role{}, err
	}
	role, err := s.repo.Create(ctx, in)
	if err != nil {
		return Role{}, err
	}
	s.changed(ctx, "Role created: "+role.Name)
	return role, nil
}

// Update replaces the writable attributes of a role.
func (s *Service) Update(ctx context.Context, id int64, in RoleInput) (Role, error) {
	in, err := s.clean(in)
	if err != nil {
		return Role{}, err
	}
	role, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return Role{}, err
	}
	s.changed(ctx, "Role updated: "+role.Name)
	return role, nil
}

// Delete lets dependants drop their references to a role, then removes it.
// When a hook fails the role is kept, so the delete can be retried.
func (s *Service) Delete(ctx context.Context, id int64) error {
	role, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	for _, hook := range s.hooks {
		if err := hook(ctx, id); err != nil {
			return fmt.Errorf("role %d delete hook: %w", id, err)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, "Role deleted: "+role.Name)
	return nil
}

func (s *Service) clean(in RoleInput) (RoleInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := shared.ValidateStruct(s.validate, in); err != nil {
		return RoleInput{}, err
	}
	return in, nil
}

func (s *Service) changed(ctx context.Context, action string) {
	entry := activities.Entry{Action: action, User: shared.ActorFromContext(ctx)}
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn("record role activity", slog.String("action", action), slog.Any("error", err))
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("invalidate dashboard cache", slog.Any("error", err))
	}
}
