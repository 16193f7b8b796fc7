package rbac

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-admin/internal/activities"
	"github.com/odyssey-erp/odyssey-admin/internal/roles"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// RepositoryPort defines data access methods for role permissions.
type RepositoryPort interface {
	List(ctx context.Context, filter Filter, page shared.PageRequest) ([]RolePermission, int, error)
	All(ctx context.Context, filter Filter) ([]RolePermission, error)
	Get(ctx context.Context, id int64) (RolePermission, error)
	Create(ctx context.Context, in PermissionInput) (RolePermission, error)
	Update(ctx context.Context, id int64, in PermissionInput) (RolePermission, error)
	Delete(ctx context.Context, id int64) error
	DeleteByRole(ctx context.Context, roleID int64) (int, error)
}

// RoleLookup checks that referenced roles exist. Satisfied by *roles.Service.
type RoleLookup interface {
	Get(ctx context.Context, id int64) (roles.Role, error)
}

// Service orchestrates role permission operations.
type Service struct {
	repo     RepositoryPort
	roles    RoleLookup
	validate *validator.Validate
	activity activities.Recorder
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(repo RepositoryPort, roleLookup RoleLookup, recorder activities.Recorder, logger *slog.Logger) *Service {
	if recorder == nil {
		recorder = activities.NopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, roles: roleLookup, validate: shared.NewValidator(), activity: recorder, logger: logger}
}

// List returns one page of permissions; Total counts only rows passing the filter.
func (s *Service) List(ctx context.Context, filter Filter, page shared.PageRequest) (shared.Page[RolePermission], error) {
	rows, total, err := s.repo.List(ctx, filter, page.Normalize())
	if err != nil {
		return shared.Page[RolePermission]{}, err
	}
	return shared.NewPage(rows, total), nil
}

// Get fetches a permission by ID.
func (s *Service) Get(ctx context.Context, id int64) (RolePermission, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts a permission for an existing role.
func (s *Service) Create(ctx context.Context, in PermissionInput) (RolePermission, error) {
	in, err := s.clean(ctx, in)
	if err != nil {
		return RolePermission{}, err
	}
	p, err := s.repo.Create(ctx, in)
	if err != nil {
		return RolePermission{}, err
	}
	s.record(ctx, fmt.Sprintf("Permission created: %s / %s for role %d", p.MainModule, p.ModuleName, p.RoleID))
	return p, nil
}

// Update replaces a permission.
func (s *Service) Update(ctx context.Context, id int64, in PermissionInput) (RolePermission, error) {
	in, err := s.clean(ctx, in)
	if err != nil {
		return RolePermission{}, err
	}
	p, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return RolePermission{}, err
	}
	s.record(ctx, fmt.Sprintf("Permission updated: %s / %s for role %d", p.MainModule, p.ModuleName, p.RoleID))
	return p, nil
}

// Delete removes a permission.
func (s *Service) Delete(ctx context.Context, id int64) error {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, fmt.Sprintf("Permission deleted: %s / %s for role %d", p.MainModule, p.ModuleName, p.RoleID))
	return nil
}

// DeleteByRole drops every permission of a role. Registered as a roles delete hook.
func (s *Service) DeleteByRole(ctx context.Context, roleID int64) error {
	n, err := s.repo.DeleteByRole(ctx, roleID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("permissions removed for deleted role", slog.Int64("role_id", roleID), slog.Int("count", n))
	}
	return nil
}

// Allows reports whether roleID holds capability c on module. Module matches either
// the main module or the module name, case-insensitively.
func (s *Service) Allows(ctx context.Context, roleID int64, module string, c Capability) (bool, error) {
	perms, err := s.repo.All(ctx, Filter{RoleID: &roleID})
	if err != nil {
		return false, err
	}
	module = strings.TrimSpace(module)
	for _, p := range perms {
		if !strings.EqualFold(p.MainModule, module) && !strings.EqualFold(p.ModuleName, module) {
			continue
		}
		if p.Grants(c) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) clean(ctx context.Context, in PermissionInput) (PermissionInput, error) {
	in.MainModule = strings.TrimSpace(in.MainModule)
	in.ModuleName = strings.TrimSpace(in.ModuleName)
	if err := shared.ValidateStruct(s.validate, in); err != nil {
		return PermissionInput{}, err
	}
	if s.roles != nil {
		if _, err := s.roles.Get(ctx, in.RoleID); err != nil {
			if shared.IsNotFound(err) {
				return PermissionInput{}, fmt.Errorf("role %d: %w", in.RoleID, shared.ErrUnknownRole)
			}
			return PermissionInput{}, err
		}
	}
	return in, nil
}

func (s *Service) record(ctx context.Context, action string) {
	entry := activities.Entry{Action: action, User: shared.ActorFromContext(ctx)}
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn("record permission activity", slog.String("action", action), slog.Any("error", err))
	}
}
