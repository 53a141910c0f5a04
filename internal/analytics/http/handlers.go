package analytichttp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/tilequote/tilequote/internal/analytics"
	"github.com/tilequote/tilequote/internal/analytics/export"
	quoteexport "github.com/tilequote/tilequote/internal/export"
	"github.com/tilequote/tilequote/internal/platform/httpx"
	"github.com/tilequote/tilequote/internal/settings"
)

var periodRegex = regexp.MustCompile(`^\d{4}-\d{2}$`)

const requestTimeout = 10 * time.Second

// DashboardService defines the dashboard data contract used by the handler.
type DashboardService interface {
	Dashboard(ctx context.Context, filter analytics.Filter) (analytics.Dashboard, error)
}

// SettingsSource supplies the business name and currency for printouts.
type SettingsSource interface {
	Load(ctx context.Context) (settings.Settings, error)
}

// PDFService renders dashboard content to PDF bytes.
type PDFService interface {
	RenderDashboard(ctx context.Context, payload export.DashboardPayload) ([]byte, error)
}

// Handler serves the dashboard and its downloads.
type Handler struct {
	logger   *slog.Logger
	service  DashboardService
	settings SettingsSource
	pdf      PDFService
	csvPool  sync.Pool
	now      func() time.Time
}

// NewHandler constructs the dashboard handler. pdf may be nil.
func NewHandler(logger *slog.Logger, service DashboardService, settings SettingsSource, pdf PDFService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		logger:   logger,
		service:  service,
		settings: settings,
		pdf:      pdf,
		now:      time.Now,
	}
	h.csvPool.New = func() any { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	d, err := h.service.Dashboard(ctx, filter)
	if err != nil {
		h.fail(w, "load dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	d, err := h.service.Dashboard(ctx, filter)
	if err != nil {
		h.fail(w, "load dashboard", err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()
	if err := export.WriteDashboardCSV(buf, d); err != nil {
		h.fail(w, "write dashboard csv", err)
		return
	}
	httpx.Attachment(w, quoteexport.ContentType(quoteexport.ExtCSV), filename(filter, quoteexport.ExtCSV), buf.Bytes())
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "pdf rendering is not configured")
		return
	}
	filter, err := h.parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	d, err := h.service.Dashboard(ctx, filter)
	if err != nil {
		h.fail(w, "load dashboard", err)
		return
	}
	current, err := h.settings.Load(ctx)
	if err != nil {
		h.fail(w, "load settings", err)
		return
	}
	body, err := h.pdf.RenderDashboard(ctx, export.DashboardPayload{
		BusinessName: current.Business.Name,
		Currency:     current.Business.Currency,
		Dashboard:    d,
	})
	if err != nil {
		h.fail(w, "render dashboard pdf", err)
		return
	}
	httpx.Attachment(w, quoteexport.ContentType(quoteexport.ExtPDF), filename(filter, quoteexport.ExtPDF), body)
}

// parseFilter reads either from/to dates or a period: "mtd", "ytd" or YYYY-MM.
// Without parameters the year to date is used.
func (h *Handler) parseFilter(r *http.Request) (analytics.Filter, error) {
	from, err := httpx.OptionalDate(r, "from")
	if err != nil {
		return analytics.Filter{}, err
	}
	to, err := httpx.OptionalDate(r, "to")
	if err != nil {
		return analytics.Filter{}, err
	}
	now := h.now()
	if from != nil || to != nil {
		if from == nil || to == nil {
			return analytics.Filter{}, &httpx.ValidationError{Fields: map[string]string{"from": "from and to must be sent together"}}
		}
		return analytics.Filter{From: *from, To: *to}, nil
	}

	period := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("period")))
	switch {
	case period == "" || period == "ytd":
		return analytics.YearToDate(now), nil
	case period == "mtd":
		return analytics.MonthToDate(now), nil
	case periodRegex.MatchString(period):
		start, err := time.Parse("2006-01", period)
		if err != nil {
			return analytics.Filter{}, &httpx.ValidationError{Fields: map[string]string{"period": "must be mtd, ytd or YYYY-MM"}}
		}
		return analytics.Filter{From: start, To: start.AddDate(0, 1, -1)}, nil
	default:
		return analytics.Filter{}, &httpx.ValidationError{Fields: map[string]string{"period": "must be mtd, ytd or YYYY-MM"}}
	}
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op+" failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}

func filename(f analytics.Filter, ext string) string {
	return fmt.Sprintf("dashboard-%s-%s%s", f.From.Format("20060102"), f.To.Format("20060102"), ext)
}
