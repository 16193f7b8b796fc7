package console

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-admin/internal/activities"
	"github.com/odyssey-erp/odyssey-admin/internal/dashboard"
	"github.com/odyssey-erp/odyssey-admin/internal/roles"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/users"
)

// DashboardSource fetches the dashboard panels. Satisfied by *Client.
type DashboardSource interface {
	Metrics(ctx context.Context) (dashboard.Metrics, error)
	AllRoles(ctx context.Context) ([]roles.Role, error)
	Activities(ctx context.Context) ([]activities.Activity, error)
	ListUsers(ctx context.Context, page shared.PageRequest) (shared.Page[users.User], error)
}

// Panels holds the jointly fetched dashboard data.
type Panels struct {
	Metrics    dashboard.Metrics
	Roles      []roles.Role
	Activities []activities.Activity
}

// Charts are the datasets derived for display.
type Charts struct {
	UsersByRole    dashboard.ChartDataset
	ActivityCounts dashboard.ChartDataset
}

// Dashboard holds the dashboard view state. The users table is an independent list.
type Dashboard struct {
	source DashboardSource
	logger *slog.Logger
	Users  *ListView[users.User]

	mu     sync.Mutex
	panels Panels
	err    error
}

// NewDashboard builds the dashboard view.
func NewDashboard(source DashboardSource, usersPerPage int, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{
		source: source,
		logger: logger,
		Users:  NewListView(FetchFunc[users.User](source.ListUsers), usersPerPage, logger),
	}
}

// Load fetches metrics, roles and activities concurrently and applies them
// together. A failure of any fetch leaves every panel unchanged.
func (d *Dashboard) Load(ctx context.Context) error {
	var next Panels
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := d.source.Metrics(gctx)
		next.Metrics = m
		return err
	})
	g.Go(func() error {
		rs, err := d.source.AllRoles(gctx)
		next.Roles = rs
		return err
	})
	g.Go(func() error {
		acts, err := d.source.Activities(gctx)
		next.Activities = acts
		return err
	})
	err := g.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
	if err != nil {
		d.logger.Error("dashboard fetch failed", slog.Any("error", err))
		return err
	}
	d.panels = next
	return nil
}

// Panels returns a copy of the panel data.
func (d *Dashboard) Panels() Panels {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := Panels{Metrics: d.panels.Metrics}
	out.Roles = append([]roles.Role(nil), d.panels.Roles...)
	out.Activities = append([]activities.Activity(nil), d.panels.Activities...)
	return out
}

// Err returns the error of the last dashboard load.
func (d *Dashboard) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// Charts derives the users-per-role and activity datasets from the loaded roles,
// the users currently held by the users list and the activity log.
func (d *Dashboard) Charts() Charts {
	panels := d.Panels()
	us := d.Users.Snapshot().Rows
	return Charts{
		UsersByRole:    dashboard.RoleDistribution(panels.Roles, us),
		ActivityCounts: dashboard.ActivitySeries(panels.Activities),
	}
}
