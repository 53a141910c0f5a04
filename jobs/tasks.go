package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup rebuilds the cached dashboards.
	TaskDashboardWarmup = "dashboard:warmup"
	// TaskQuoteRender renders a quote PDF into the export directory.
	TaskQuoteRender = "quote:render"

	// DashboardWarmupCron runs the warmup daily before business hours (UTC).
	DashboardWarmupCron = "0 5 * * *"

	renderUniqueFor = time.Minute
	renderTimeout   = 2 * time.Minute
)

// DashboardWarmupPayload is the body of a warmup task. AsOf defaults to now.
type DashboardWarmupPayload struct {
	AsOf *time.Time `json:"as_of,omitempty"`
}

// QuoteRenderPayload identifies the quote to render.
type QuoteRenderPayload struct {
	QuoteID uuid.UUID `json:"quote_id"`
}

// NewDashboardWarmupTask constructs a warmup task.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}

// NewQuoteRenderTask constructs a render task. Identical renders queued within
// a minute of each other are collapsed.
func NewQuoteRenderTask(payload QuoteRenderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQuoteRender, data,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
		asynq.Timeout(renderTimeout),
		asynq.Unique(renderUniqueFor),
	), nil
}
