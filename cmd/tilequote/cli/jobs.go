// Package cli holds operator helpers reachable through `tilequote jobs ...`.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/tilequote/tilequote/jobs"
)

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

// NewJobsCLI initialises the CLI helpers using the provided Redis address.
func NewJobsCLI(redisAddr string) *JobsCLI {
	opts := asynq.RedisClientOpt{Addr: redisAddr}
	return &JobsCLI{client: asynq.NewClient(opts), inspector: asynq.NewInspector(opts)}
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var err error
	if c.inspector != nil {
		err = errors.Join(err, c.inspector.Close())
	}
	if c.client != nil {
		err = errors.Join(err, c.client.Close())
	}
	return err
}

// Trigger enqueues a supported job by name. quote:render takes the quote id as arg.
func (c *JobsCLI) Trigger(ctx context.Context, name, arg string) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	task, err := buildTask(name, arg)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.MaxRetry(3))
}

func buildTask(name, arg string) (*asynq.Task, error) {
	switch name {
	case jobs.TaskDashboardWarmup:
		return jobs.NewDashboardWarmupTask(jobs.DashboardWarmupPayload{})
	case jobs.TaskQuoteRender:
		id, err := uuid.Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("jobs cli: quote id: %w", err)
		}
		return jobs.NewQuoteRenderTask(jobs.QuoteRenderPayload{QuoteID: id})
	default:
		return nil, fmt.Errorf("jobs cli: unsupported job %s", name)
	}
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
}

// InspectQueue reports the queue metrics for the default queue.
func (c *JobsCLI) InspectQueue() (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
	}
	return stats, nil
}

// Run executes `jobs trigger <task> [arg]` or `jobs stats`.
func Run(ctx context.Context, redisAddr string, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: tilequote jobs trigger <task> [arg] | tilequote jobs stats")
	}
	c := NewJobsCLI(redisAddr)
	defer func() { _ = c.Close() }()

	switch args[0] {
	case "trigger":
		if len(args) < 2 {
			return errors.New("usage: tilequote jobs trigger <task> [arg]")
		}
		arg := ""
		if len(args) > 2 {
			arg = args[2]
		}
		info, err := c.Trigger(ctx, args[1], arg)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "queued %s as %s\n", info.Type, info.ID)
		return err
	case "stats":
		stats, err := c.InspectQueue()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
		return err
	default:
		return fmt.Errorf("jobs cli: unknown command %s", args[0])
	}
}
