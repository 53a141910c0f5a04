package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilequote/tilequote/internal/export"
	"github.com/tilequote/tilequote/internal/observability"
	"github.com/tilequote/tilequote/internal/platform/httpx"
)

type recordingWarmer struct {
	calls []time.Time
	err   error
}

func (w *recordingWarmer) Warm(_ context.Context, now time.Time) error {
	w.calls = append(w.calls, now)
	return w.err
}

func TestDashboardWarmupUsesClockByDefault(t *testing.T) {
	warmer := &recordingWarmer{}
	job := NewDashboardWarmupJob(warmer, nil, observability.NewMetrics())
	fixed := time.Date(2026, 5, 4, 5, 0, 0, 0, time.UTC)
	job.clock = func() time.Time { return fixed }

	task, err := NewDashboardWarmupTask(DashboardWarmupPayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Len(t, warmer.calls, 1)
	assert.Equal(t, fixed, warmer.calls[0])
}

func TestDashboardWarmupHonoursAsOf(t *testing.T) {
	warmer := &recordingWarmer{}
	job := NewDashboardWarmupJob(warmer, nil, nil)
	asOf := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	task, err := NewDashboardWarmupTask(DashboardWarmupPayload{AsOf: &asOf})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, asOf, warmer.calls[0])
}

func TestDashboardWarmupPropagatesFailure(t *testing.T) {
	warmer := &recordingWarmer{err: errors.New("redis down")}
	job := NewDashboardWarmupJob(warmer, nil, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskDashboardWarmup, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}

func TestDashboardWarmupRejectsBadPayload(t *testing.T) {
	job := NewDashboardWarmupJob(&recordingWarmer{}, nil, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskDashboardWarmup, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

type stubPayloads struct {
	payload export.QuotePayload
	err     error
}

func (s stubPayloads) Payload(context.Context, uuid.UUID) (export.QuotePayload, error) {
	return s.payload, s.err
}

type stubPDF struct{}

func (stubPDF) RenderQuote(context.Context, export.QuotePayload) ([]byte, error) {
	return []byte("%PDF-1.7"), nil
}

func renderTask(t *testing.T, id uuid.UUID) *asynq.Task {
	t.Helper()
	task, err := NewQuoteRenderTask(QuoteRenderPayload{QuoteID: id})
	require.NoError(t, err)
	return task
}

func TestQuoteRenderWritesPDF(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	job := NewQuoteRenderJob(stubPayloads{payload: export.QuotePayload{Number: "QT-2026-0001"}}, stubPDF{}, dir, nil, observability.NewMetrics())

	require.NoError(t, job.Handle(context.Background(), renderTask(t, uuid.New())))

	body, err := os.ReadFile(filepath.Join(dir, "QT-2026-0001.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(body))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestQuoteRenderSkipsMissingQuote(t *testing.T) {
	job := NewQuoteRenderJob(stubPayloads{err: httpx.ErrNotFound}, stubPDF{}, t.TempDir(), nil, nil)
	err := job.Handle(context.Background(), renderTask(t, uuid.New()))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestQuoteRenderRejectsNilID(t *testing.T) {
	job := NewQuoteRenderJob(stubPayloads{}, stubPDF{}, t.TempDir(), nil, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskQuoteRender, []byte(`{"quote_id":"00000000-0000-0000-0000-000000000000"}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestNewWorkerRequiresHandlers(t *testing.T) {
	_, err := NewWorker(WorkerConfig{RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"}})
	assert.Error(t, err)
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func TestHealthReportsQueueCounts(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 3, Retry: 1}}, nil).MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body queueHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Pending)
	assert.Equal(t, 1, body.Retry)
}

func TestHealthUnavailable(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(stubInspector{err: errors.New("dial tcp")}, nil).MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
