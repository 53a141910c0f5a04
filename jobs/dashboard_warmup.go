package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/tilequote/tilequote/internal/observability"
)

const warmupTimeout = 30 * time.Second

// DashboardWarmer rebuilds dashboard caches as of a point in time.
type DashboardWarmer interface {
	Warm(ctx context.Context, now time.Time) error
}

// DashboardWarmupJob pre-populates the dashboard cache.
type DashboardWarmupJob struct {
	Dashboard DashboardWarmer
	Logger    *slog.Logger
	Metrics   *observability.Metrics
	clock     func() time.Time
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(dashboard DashboardWarmer, logger *slog.Logger, metrics *observability.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Dashboard: dashboard,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Dashboard == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("dashboard warmup: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	tracker := j.Metrics.TrackJob(TaskDashboardWarmup)
	defer func() { err = tracker.End(err) }()

	asOf := j.clock()
	if payload.AsOf != nil {
		asOf = payload.AsOf.UTC()
	}
	logger := j.logger().With(slog.String("as_of", asOf.Format(time.DateOnly)))
	started := time.Now()

	warmCtx, cancel := context.WithTimeout(ctx, warmupTimeout)
	defer cancel()
	if err := j.Dashboard.Warm(warmCtx, asOf); err != nil {
		logger.Error("dashboard warmup failed", slog.Any("error", err))
		return err
	}
	logger.Info("dashboard warmup completed", slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
