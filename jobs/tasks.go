package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-admin/internal/activities"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskActivityRecord appends an entry to the activity log.
	TaskActivityRecord = "activity:record"
	// TaskDashboardWarmup pre-populates the dashboard summary cache.
	TaskDashboardWarmup = "dashboard:warmup"
	// DashboardWarmupSpec is the cron schedule of the warmup task.
	DashboardWarmupSpec = "*/5 * * * *"
)

// ActivityRecordPayload describes an activity to persist.
type ActivityRecordPayload struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	User      string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
}

// Entry converts the payload back into an activity entry.
func (p ActivityRecordPayload) Entry() activities.Entry {
	return activities.Entry{ID: p.ID, Action: p.Action, User: p.User, At: p.Timestamp}
}

// NewActivityRecordTask constructs an Asynq task.
func NewActivityRecordTask(payload ActivityRecordPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskActivityRecord, data, asynq.MaxRetry(5)), nil
}

// DashboardWarmupPayload carries the reason of a warmup, used for logging.
type DashboardWarmupPayload struct {
	Reason string `json:"reason"`
}

// NewDashboardWarmupTask constructs an Asynq task. Warmups are deduplicated per minute.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data, asynq.MaxRetry(1), asynq.Unique(time.Minute)), nil
}
