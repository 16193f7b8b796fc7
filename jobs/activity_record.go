package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-admin/internal/activities"
	jobmetrics "github.com/odyssey-erp/odyssey-admin/internal/jobs"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// ActivityRecordJob persists queued activity entries.
type ActivityRecordJob struct {
	Recorder activities.Recorder
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewActivityRecordJob wires dependencies for the handler.
func NewActivityRecordJob(recorder activities.Recorder, logger *slog.Logger, metrics *jobmetrics.Metrics) *ActivityRecordJob {
	return &ActivityRecordJob{Recorder: recorder, Logger: logger, Metrics: metrics}
}

// Handle processes activity record tasks. Invalid entries are not retried.
func (j *ActivityRecordJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Recorder == nil {
		return errors.New("activity record: handler not configured")
	}
	var payload ActivityRecordPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := j.Metrics.Track(TaskActivityRecord)
	defer func() { err = tracker.End(err) }()

	if err := j.Recorder.Record(ctx, payload.Entry()); err != nil {
		if errors.Is(err, shared.ErrValidation) {
			loggerOrDefault(j.Logger).Warn("drop invalid activity", slog.String("action", payload.Action), slog.Any("error", err))
			return errors.Join(err, asynq.SkipRetry)
		}
		return err
	}
	return nil
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
