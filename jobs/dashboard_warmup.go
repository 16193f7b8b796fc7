package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-admin/internal/jobs"
)

// Warmer populates a cache. Satisfied by *dashboard.Service.
type Warmer interface {
	Warmup(ctx context.Context) error
}

// DashboardWarmupJob pre-populates the dashboard summary cache.
type DashboardWarmupJob struct {
	Dashboard Warmer
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(dashboard Warmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{Dashboard: dashboard, Logger: logger, Metrics: metrics}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Dashboard == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.Reason == "" {
		payload.Reason = "schedule"
	}
	tracker := j.Metrics.Track(TaskDashboardWarmup)
	defer func() { err = tracker.End(err) }()

	if err := j.Dashboard.Warmup(ctx); err != nil {
		loggerOrDefault(j.Logger).Error("dashboard warmup failed", slog.String("reason", payload.Reason), slog.Any("error", err))
		return err
	}
	return nil
}
