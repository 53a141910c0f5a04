package analytichttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilequote/tilequote/internal/analytics"
	"github.com/tilequote/tilequote/internal/analytics/export"
	"github.com/tilequote/tilequote/internal/settings"
)

type stubService struct {
	last analytics.Filter
}

func (s *stubService) Dashboard(_ context.Context, f analytics.Filter) (analytics.Dashboard, error) {
	s.last = f
	return analytics.Dashboard{From: f.From, To: f.To, QuoteCount: 2, Net: 1200}, nil
}

type stubSettings struct{}

func (stubSettings) Load(context.Context) (settings.Settings, error) {
	return settings.Default(), nil
}

type stubPDF struct {
	payload export.DashboardPayload
}

func (s *stubPDF) RenderDashboard(_ context.Context, p export.DashboardPayload) ([]byte, error) {
	s.payload = p
	return []byte("%PDF"), nil
}

func newTestRouter(svc *stubService, pdf PDFService) chi.Router {
	h := NewHandler(nil, svc, stubSettings{}, pdf)
	h.WithNow(func() time.Time { return time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC) })
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func TestDashboardDefaultsToYearToDate(t *testing.T) {
	svc := &stubService{}
	r := newTestRouter(svc, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), svc.last.From)
	assert.Equal(t, time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC), svc.last.To)
	assert.Contains(t, rec.Body.String(), `"quote_count":2`)
}

func TestDashboardPeriodParsing(t *testing.T) {
	svc := &stubService{}
	r := newTestRouter(svc, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?period=2026-02", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), svc.last.To)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?period=mtd", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), svc.last.From)

	for _, target := range []string{"/?period=last-week", "/?from=2026-01-01", "/?from=2026-13-01&to=2026-12-01"} {
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, target)
	}
}

func TestDashboardCSVDownload(t *testing.T) {
	r := newTestRouter(&stubService{}, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export.csv?from=2026-04-01&to=2026-05-31", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "dashboard-20260401-20260531.csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Metric,Value"))
}

func TestDashboardPDF(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&stubService{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export.pdf", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	pdf := &stubPDF{}
	rec = httptest.NewRecorder()
	newTestRouter(&stubService{}, pdf).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export.pdf", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, settings.DefaultCurrency, pdf.payload.Currency)
	assert.Equal(t, 1200.0, pdf.payload.Dashboard.Net)
}
