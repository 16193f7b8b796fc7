package console

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/roles"
)

// ErrModalClosed is returned by Save when the modal is not open.
var ErrModalClosed = errors.New("console: modal is closed")

// Notifier surfaces write failures to the operator.
type Notifier interface {
	Alert(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

// Alert implements Notifier.
func (f NotifierFunc) Alert(msg string) { f(msg) }

// Refetcher reloads a list after a successful save.
type Refetcher interface {
	Refetch(ctx context.Context) error
}

// Mode tells whether a modal creates or edits.
type Mode int

const (
	ModeClosed Mode = iota
	ModeCreate
	ModeEdit
)

// FormSpec describes how a modal maps entities to fields and persists them.
type FormSpec[E, F any] struct {
	Defaults   func() F
	FromEntity func(E) (int64, F)
	Create     func(ctx context.Context, fields F) error
	Update     func(ctx context.Context, id int64, fields F) error
}

// FormModal is the create/edit modal state holder.
type FormModal[E, F any] struct {
	spec     FormSpec[E, F]
	list     Refetcher
	notifier Notifier
	logger   *slog.Logger

	mu     sync.Mutex
	mode   Mode
	id     int64
	fields F
}

// NewFormModal builds a closed modal.
func NewFormModal[E, F any](spec FormSpec[E, F], list Refetcher, notifier Notifier, logger *slog.Logger) *FormModal[E, F] {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NotifierFunc(func(msg string) { logger.Warn("alert", slog.String("message", msg)) })
	}
	return &FormModal[E, F]{spec: spec, list: list, notifier: notifier, logger: logger}
}

// OpenCreate opens the modal with default fields and no id.
func (m *FormModal[E, F]) OpenCreate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = ModeCreate
	m.id = 0
	m.fields = m.spec.Defaults()
}

// OpenEdit opens the modal pre-filled from entity.
func (m *FormModal[E, F]) OpenEdit(entity E) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = ModeEdit
	m.id, m.fields = m.spec.FromEntity(entity)
}

// Mode reports the current mode.
func (m *FormModal[E, F]) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// EditingID returns the held id in edit mode.
func (m *FormModal[E, F]) EditingID() (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id, m.mode == ModeEdit
}

// Fields returns the current field values.
func (m *FormModal[E, F]) Fields() F {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fields
}

// SetFields replaces the field values.
func (m *FormModal[E, F]) SetFields(fields F) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields = fields
}

// Cancel closes the modal and discards edits.
func (m *FormModal[E, F]) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.close()
}

// Save updates when an id is held and creates otherwise. On success the modal
// closes and the list is refetched; on failure it alerts and stays open.
func (m *FormModal[E, F]) Save(ctx context.Context) error {
	m.mu.Lock()
	mode, id, fields := m.mode, m.id, m.fields
	m.mu.Unlock()

	var err error
	switch mode {
	case ModeEdit:
		err = m.spec.Update(ctx, id, fields)
	case ModeCreate:
		err = m.spec.Create(ctx, fields)
	default:
		return ErrModalClosed
	}
	if err != nil {
		m.notifier.Alert(alertMessage(err))
		return err
	}

	m.mu.Lock()
	m.close()
	m.mu.Unlock()
	if m.list != nil {
		if err := m.list.Refetch(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
			m.logger.Warn("refetch after save", slog.Any("error", err))
		}
	}
	return nil
}

func (m *FormModal[E, F]) close() {
	var zero F
	m.mode = ModeClosed
	m.id = 0
	m.fields = zero
}

func alertMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return "Save failed: " + apiErr.Message
	}
	return "Save failed: " + err.Error()
}

// RoleFields are the editable fields of the role modal.
type RoleFields struct {
	Name     string
	IsActive bool
}

// RoleWriter persists roles. Satisfied by *Client.
type RoleWriter interface {
	CreateRole(ctx context.Context, in roles.RoleInput) (roles.Role, error)
	UpdateRole(ctx context.Context, id int64, in roles.RoleInput) (roles.Role, error)
}

// NewRoleForm builds the role create/edit modal.
func NewRoleForm(w RoleWriter, list Refetcher, notifier Notifier, logger *slog.Logger) *FormModal[roles.Role, RoleFields] {
	input := func(f RoleFields) roles.RoleInput {
		active := f.IsActive
		return roles.RoleInput{Name: f.Name, IsActive: &active}
	}
	return NewFormModal(FormSpec[roles.Role, RoleFields]{
		Defaults: func() RoleFields { return RoleFields{IsActive: true} },
		FromEntity: func(r roles.Role) (int64, RoleFields) {
			return r.ID, RoleFields{Name: r.Name, IsActive: r.IsActive}
		},
		Create: func(ctx context.Context, f RoleFields) error {
			_, err := w.CreateRole(ctx, input(f))
			return err
		},
		Update: func(ctx context.Context, id int64, f RoleFields) error {
			_, err := w.UpdateRole(ctx, id, input(f))
			return err
		},
	}, list, notifier, logger)
}

// PermissionWriter persists role permissions. Satisfied by *Client.
type PermissionWriter interface {
	CreatePermission(ctx context.Context, in rbac.PermissionInput) (rbac.RolePermission, error)
	UpdatePermission(ctx context.Context, id int64, in rbac.PermissionInput) (rbac.RolePermission, error)
}

// NewPermissionForm builds the role permission create/edit modal. Flags default to false.
func NewPermissionForm(w PermissionWriter, list Refetcher, notifier Notifier, logger *slog.Logger) *FormModal[rbac.RolePermission, rbac.PermissionInput] {
	return NewFormModal(FormSpec[rbac.RolePermission, rbac.PermissionInput]{
		Defaults: func() rbac.PermissionInput { return rbac.PermissionInput{} },
		FromEntity: func(p rbac.RolePermission) (int64, rbac.PermissionInput) {
			return p.ID, rbac.PermissionInput{
				RoleID:       p.RoleID,
				MainModule:   p.MainModule,
				ModuleName:   p.ModuleName,
				ViewAccess:   p.ViewAccess,
				CreateAccess: p.CreateAccess,
				UpdateAccess: p.UpdateAccess,
				DeleteAccess: p.DeleteAccess,
			}
		},
		Create: func(ctx context.Context, in rbac.PermissionInput) error {
			_, err := w.CreatePermission(ctx, in)
			return err
		},
		Update: func(ctx context.Context, id int64, in rbac.PermissionInput) error {
			_, err := w.UpdatePermission(ctx, id, in)
			return err
		},
	}, list, notifier, logger)
}
