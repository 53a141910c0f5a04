package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	analytichttp "github.com/tilequote/tilequote/internal/analytics/http"
	"github.com/tilequote/tilequote/internal/clients"
	"github.com/tilequote/tilequote/internal/diary"
	"github.com/tilequote/tilequote/internal/expenses"
	"github.com/tilequote/tilequote/internal/observability"
	"github.com/tilequote/tilequote/internal/platform/httpx"
	"github.com/tilequote/tilequote/internal/quotes"
	"github.com/tilequote/tilequote/internal/settings"
	"github.com/tilequote/tilequote/jobs"
	"github.com/tilequote/tilequote/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger    *slog.Logger
	Config    *Config
	TokenAuth *TokenAuth
	Metrics   *observability.Metrics

	SettingsHandler  *settings.Handler
	ClientsHandler   *clients.Handler
	QuotesHandler    *quotes.Handler
	ExpensesHandler  *expenses.Handler
	DiaryHandler     *diary.Handler
	AnalyticsHandler *analytichttp.Handler
	JobHandler       *jobs.Handler
	ReportHandler    *report.Handler
}

// NewRouter constructs the chi.Router with TileQuote defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "not found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "method not allowed", "")
	})

	r.Group(func(r chi.Router) {
		if params.TokenAuth != nil {
			r.Use(params.TokenAuth.Middleware)
		}
		if params.SettingsHandler != nil {
			r.Route("/settings", params.SettingsHandler.MountRoutes)
		}
		if params.ClientsHandler != nil {
			r.Route("/clients", params.ClientsHandler.MountRoutes)
		}
		if params.QuotesHandler != nil {
			r.Route("/quotes", params.QuotesHandler.MountRoutes)
		}
		if params.ExpensesHandler != nil {
			r.Route("/expenses", params.ExpensesHandler.MountRoutes)
		}
		if params.DiaryHandler != nil {
			r.Route("/diary", params.DiaryHandler.MountRoutes)
		}
		if params.AnalyticsHandler != nil {
			r.Route("/dashboard", params.AnalyticsHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
		if params.ReportHandler != nil {
			r.Route("/report", params.ReportHandler.MountRoutes)
		}
	})

	return r
}
