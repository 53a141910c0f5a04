package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tilequote/tilequote/internal/observability"
	"github.com/tilequote/tilequote/jobs"
)

func TestRouterHealthAndAuth(t *testing.T) {
	router := NewRouter(RouterParams{
		Config:     &Config{AppEnv: "test", RateLimitPerMinute: 1000},
		TokenAuth:  newTestTokenAuth(t, "s3cret"),
		Metrics:    observability.NewMetrics(),
		JobHandler: jobs.NewHandler(nil, nil),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/jobs/health", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterUnknownRouteIsProblem(t *testing.T) {
	router := NewRouter(RouterParams{Config: &Config{RateLimitPerMinute: 1000}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "problem+json")
}
