package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/odyssey-admin/internal/activities"
	"github.com/odyssey-erp/odyssey-admin/internal/dashboard"
	"github.com/odyssey-erp/odyssey-admin/internal/observability"
	"github.com/odyssey-erp/odyssey-admin/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/roles"
	"github.com/odyssey-erp/odyssey-admin/internal/users"
	"github.com/odyssey-erp/odyssey-admin/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	UsersHandler      *users.Handler
	RolesHandler      *roles.Handler
	PermissionHandler *rbac.Handler
	ActivityHandler   *activities.Handler
	DashboardHandler  *dashboard.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// HandlersFor builds every API handler over the given services.
func HandlersFor(logger *slog.Logger, svc *Services) RouterParams {
	return RouterParams{
		Logger:            logger,
		UsersHandler:      users.NewHandler(logger, svc.Users),
		RolesHandler:      roles.NewHandler(logger, svc.Roles),
		PermissionHandler: rbac.NewHandler(logger, svc.RBAC),
		ActivityHandler:   activities.NewHandler(logger, svc.Activities),
		DashboardHandler:  dashboard.NewHandler(logger, svc.Dashboard),
	}
}

// NewRouter constructs the chi.Router with admin API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	if !InTestMode() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.RolesHandler != nil {
			r.Route("/roles", params.RolesHandler.MountRoutes)
		}
		if params.PermissionHandler != nil {
			r.Route("/role_permissions", params.PermissionHandler.MountRoutes)
		}
		if params.ActivityHandler != nil {
			r.Route("/activities", params.ActivityHandler.MountRoutes)
		}
		if params.DashboardHandler != nil {
			r.Get("/metrics", params.DashboardHandler.ServeMetrics)
			r.Route("/dashboard", params.DashboardHandler.MountRoutes)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
