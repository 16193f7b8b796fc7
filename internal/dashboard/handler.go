package dashboard

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-admin/internal/dashboard/svg"
	"github.com/odyssey-erp/odyssey-admin/internal/platform/httpx"
)

// Handler serves dashboard aggregates and charts.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.summary)
	r.Route("/charts", func(r chi.Router) {
		r.Get("/users-by-role.svg", h.usersByRoleChart)
		r.Get("/activity.svg", h.activityChart)
		r.Get("/user-status.svg", h.userStatusChart)
	})
}

// ServeMetrics writes the headline counters.
func (h *Handler) ServeMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Metrics(r.Context())
	if err != nil {
		h.logger.Error("dashboard metrics failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("dashboard summary failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

func (h *Handler) usersByRoleChart(w http.ResponseWriter, r *http.Request) {
	h.chart(w, r, func(s Summary) (string, error) {
		ds := s.UsersByRole
		return svg.Doughnut(0, 0, ints(ds.Values), ds.Labels, svg.DoughnutOpts{
			Title:       "Users by role",
			Description: "Number of users assigned to each role",
			Colors:      ds.Colors,
			ShowLegend:  true,
		})
	})
}

func (h *Handler) activityChart(w http.ResponseWriter, r *http.Request) {
	h.chart(w, r, func(s Summary) (string, error) {
		ds := s.ActivityCounts
		return svg.Line(0, 0, ints(ds.Values), ds.Labels, svg.LineOpts{
			Frame:    svg.Frame{Title: "Activity", Description: "Recorded activities per month"},
			ShowDots: true,
		})
	})
}

func (h *Handler) userStatusChart(w http.ResponseWriter, r *http.Request) {
	h.chart(w, r, func(s Summary) (string, error) {
		st := s.UserStatus
		return svg.Bars(0, 0, ints(st.Active), ints(st.Inactive), st.Labels, svg.BarOpts{
			Frame:        svg.Frame{Title: "User status", Description: "Active and inactive users per role"},
			SeriesALabel: "Active",
			SeriesBLabel: "Inactive",
		})
	})
}

func (h *Handler) chart(w http.ResponseWriter, r *http.Request, render func(Summary) (string, error)) {
	s, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("dashboard chart failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out, err := render(s)
	if errors.Is(err, svg.ErrEmptySeries) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.logger.Error("render chart", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

func ints(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
