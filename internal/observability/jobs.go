package observability

import "time"

// JobTracker times a single background task run.
type JobTracker struct {
	metrics *Metrics
	task    string
	start   time.Time
}

// TrackJob starts timing a run of task.
func (m *Metrics) TrackJob(task string) *JobTracker {
	return &JobTracker{metrics: m, task: task, start: time.Now()}
}

// End records the outcome and duration and returns err untouched.
func (t *JobTracker) End(err error) error {
	if t == nil || t.metrics == nil {
		return err
	}
	t.metrics.jobDuration.WithLabelValues(t.task).Observe(time.Since(t.start).Seconds())
	t.metrics.RecordJob(t.task, err)
	return err
}
