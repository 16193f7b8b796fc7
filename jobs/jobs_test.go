package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/activities"
	jobmetrics "github.com/odyssey-erp/odyssey-admin/internal/jobs"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	if f.err != nil {
		return nil, f.err
	}
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func (f *fakeEnqueuer) Close() error { return nil }

func TestClientRecordEnqueuesActivity(t *testing.T) {
	enq := &fakeEnqueuer{}
	client := newClient(enq, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	client.now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }
	ctx := shared.ContextWithActor(context.Background(), "Jane Doe")

	require.NoError(t, client.Record(ctx, activities.Entry{Action: "Role created: QA"}))
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TaskActivityRecord, enq.tasks[0].Type())

	var payload ActivityRecordPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &payload))
	assert.Equal(t, "Role created: QA", payload.Action)
	assert.Equal(t, "Jane Doe", payload.User)
	assert.Equal(t, 2024, payload.Timestamp.Year())
	assert.NotEmpty(t, payload.ID)
}

func TestClientWarmupIgnoresDuplicates(t *testing.T) {
	enq := &fakeEnqueuer{err: asynq.ErrDuplicateTask}
	client := newClient(enq, nil)
	require.NoError(t, client.EnqueueDashboardWarmup(context.Background(), "role deleted"))

	enq.err = errors.New("redis down")
	require.Error(t, client.EnqueueDashboardWarmup(context.Background(), "role deleted"))
}

type recorderFunc func(context.Context, activities.Entry) error

func (f recorderFunc) Record(ctx context.Context, e activities.Entry) error { return f(ctx, e) }

func TestActivityRecordJobHandle(t *testing.T) {
	var got activities.Entry
	job := NewActivityRecordJob(recorderFunc(func(_ context.Context, e activities.Entry) error {
		got = e
		return nil
	}), nil, nil)
	task, err := NewActivityRecordTask(ActivityRecordPayload{Action: "Login", User: "John Doe", Timestamp: time.Unix(0, 0).UTC()})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, "Login", got.Action)
	assert.Equal(t, "John Doe", got.User)
}

type failingInvalidator struct{}

func (failingInvalidator) Bump(context.Context) error { return errors.New("redis down") }

func TestActivityRecordJobRetryAppendsOnce(t *testing.T) {
	svc := activities.NewService(activities.NewMemoryRepository(nil), failingInvalidator{}, nil)
	job := NewActivityRecordJob(svc, nil, nil)
	task, err := NewActivityRecordTask(ActivityRecordPayload{
		ID:        "0b6d3c1e-9f0a-4a55-8d0c-2f7e6a1b9c01",
		Action:    "Role created: QA",
		User:      "Jane Doe",
		Timestamp: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, job.Handle(context.Background(), task))
	}
	logged, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, "0b6d3c1e-9f0a-4a55-8d0c-2f7e6a1b9c01", logged[0].ID)
}

func TestActivityRecordJobSkipsRetryOnInvalid(t *testing.T) {
	job := NewActivityRecordJob(recorderFunc(func(context.Context, activities.Entry) error {
		return shared.ErrValidation
	}), nil, nil)
	task, err := NewActivityRecordTask(ActivityRecordPayload{})
	require.NoError(t, err)
	err = job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)

	bad := asynq.NewTask(TaskActivityRecord, []byte("{"))
	assert.ErrorIs(t, job.Handle(context.Background(), bad), asynq.SkipRetry)
}

type warmerFunc func(context.Context) error

func (f warmerFunc) Warmup(ctx context.Context) error { return f(ctx) }

func TestDashboardWarmupJob(t *testing.T) {
	calls := 0
	job := NewDashboardWarmupJob(warmerFunc(func(context.Context) error {
		calls++
		return nil
	}), nil, nil)
	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskDashboardWarmup, nil)))
	assert.Equal(t, 1, calls)

	failing := NewDashboardWarmupJob(warmerFunc(func(context.Context) error { return errors.New("boom") }), nil, nil)
	require.Error(t, failing.Handle(context.Background(), asynq.NewTask(TaskDashboardWarmup, nil)))
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return f.info, f.err }

func serveHealth(t *testing.T, inspector QueueInspector) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(inspector, nil).MountRoutes(r)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	rr := serveHealth(t, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","enabled":false,"pending":0,"active":0,"failed":0}`, rr.Body.String())

	rr = serveHealth(t, fakeInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 3, Failed: 1}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","enabled":true,"pending":3,"active":0,"failed":1}`, rr.Body.String())

	rr = serveHealth(t, fakeInspector{err: errors.New("down")})
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
