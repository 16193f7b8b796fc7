package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-admin/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-admin/jobs"
)

// jobsCLI wraps manual helpers for the background queue.
type jobsCLI struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

func newJobsCLI(redisAddr string) *jobsCLI {
	opt := cache.QueueOpt(redisAddr)
	return &jobsCLI{client: asynq.NewClient(opt), inspector: asynq.NewInspector(opt)}
}

func (c *jobsCLI) Close() error {
	return errors.Join(c.inspector.Close(), c.client.Close())
}

// Warmup enqueues a dashboard cache warmup.
func (c *jobsCLI) Warmup(ctx context.Context) (*asynq.TaskInfo, error) {
	task, err := jobs.NewDashboardWarmupTask(jobs.DashboardWarmupPayload{Reason: "console"})
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(jobs.QueueDefault))
}

// queueStats summarises the default queue.
type queueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
	Failed    int
}

func (c *jobsCLI) Stats() (queueStats, error) {
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return queueStats{}, err
	}
	stats := queueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
		stats.Failed = info.Failed
	}
	return stats, nil
}

func runJobs(ctx context.Context, env *environment, args []string) error {
	if env.redisAddr == "" {
		return errors.New("jobs: REDIS_ADDR is not configured")
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: jobs stats | jobs warmup", errUsage)
	}
	cli := newJobsCLI(env.redisAddr)
	defer func() { _ = cli.Close() }()

	switch args[0] {
	case "warmup":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		info, err := cli.Warmup(ctx)
		if errors.Is(err, asynq.ErrDuplicateTask) {
			fmt.Fprintln(env.out, "warmup already queued")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(env.out, "enqueued", info.Type, info.ID)
		return nil
	case "stats":
		stats, err := cli.Stats()
		if err != nil {
			return err
		}
		tw := table(env.out)
		fmt.Fprintln(tw, "QUEUE\tPENDING\tACTIVE\tSCHEDULED\tRETRY\tFAILED")
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Failed)
		return tw.Flush()
	default:
		return fmt.Errorf("%w: unknown jobs command %q", errUsage, args[0])
	}
}
