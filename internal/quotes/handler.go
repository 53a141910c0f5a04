package quotes

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tilequote/tilequote/internal/export"
	"github.com/tilequote/tilequote/internal/platform/httpx"
	"github.com/tilequote/tilequote/internal/pricing"
)

// PDFRenderer turns a payload into a PDF document.
type PDFRenderer interface {
	RenderQuote(ctx context.Context, p export.QuotePayload) ([]byte, error)
}

// RenderQueue schedules background PDF renders.
type RenderQueue interface {
	EnqueueQuoteRender(ctx context.Context, id uuid.UUID) (string, error)
}

// Handler serves the quote API.
type Handler struct {
	service *Service
	pdf     PDFRenderer
	queue   RenderQueue
	logger  *slog.Logger
}

// NewHandler builds the quote handler. pdf and queue may be nil; the matching
// routes then answer 503.
func NewHandler(service *Service, pdf PDFRenderer, queue RenderQueue, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, pdf: pdf, queue: queue, logger: logger}
}

// MountRoutes registers quote routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/preview", h.preview)
	r.Post("/from-text", h.createFromText)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Put("/", h.update)
		r.Delete("/", h.delete)
		r.Patch("/tiles/{index}", h.editLine)
		r.Post("/tiles/{index}/wastage", h.toggleWastage)
		r.Post("/status", h.updateStatus)
		r.Post("/convert", h.convert)
		r.Get("/export.csv", h.exportCSV)
		r.Get("/export.xlsx", h.exportXLSX)
		r.Get("/export.pdf", h.exportPDF)
		r.Post("/render", h.render)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	items, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.fail(w, "list quotes", err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.NewPage(items, total, filter.Limit, filter.Offset))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.fail(w, "create quote", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, view)
}

func (h *Handler) createFromText(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.CreateFromText(r.Context(), req)
	if err != nil {
		h.fail(w, "create quote from text", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, view)
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	var doc pricing.QuotationDocument
	if err := httpx.DecodeJSON(r, &doc); err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, err := h.service.Preview(r.Context(), doc)
	if err != nil {
		h.fail(w, "preview quote", err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get quote", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, "update quote", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete quote", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) editLine(w http.ResponseWriter, r *http.Request) {
	id, index, err := lineParams(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var edit LineEdit
	if err := httpx.DecodeJSON(r, &edit); err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.EditLine(r.Context(), id, index, edit)
	if err != nil {
		h.fail(w, "edit tile line", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) toggleWastage(w http.ResponseWriter, r *http.Request) {
	id, index, err := lineParams(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req WastageRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.ToggleWastage(r.Context(), id, index, req)
	if err != nil {
		h.fail(w, "toggle wastage", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req StatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.UpdateStatus(r.Context(), id, req)
	if err != nil {
		h.fail(w, "update quote status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	view, err := h.service.ConvertToInvoice(r.Context(), id)
	if err != nil {
		h.fail(w, "convert quote", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, view)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	p, ok := h.payload(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteQuoteCSV(&buf, p); err != nil {
		h.fail(w, "export quote csv", err)
		return
	}
	httpx.Attachment(w, export.ContentType(export.ExtCSV), export.Filename(p, export.ExtCSV), buf.Bytes())
}

func (h *Handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	p, ok := h.payload(w, r)
	if !ok {
		return
	}
	body, err := export.BuildQuoteXLSX(p)
	if err != nil {
		h.fail(w, "export quote xlsx", err)
		return
	}
	httpx.Attachment(w, export.ContentType(export.ExtXLSX), export.Filename(p, export.ExtXLSX), body)
}

func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "pdf rendering is not configured")
		return
	}
	p, ok := h.payload(w, r)
	if !ok {
		return
	}
	body, err := h.pdf.RenderQuote(r.Context(), p)
	if err != nil {
		h.fail(w, "export quote pdf", err)
		return
	}
	httpx.Attachment(w, export.ContentType(export.ExtPDF), export.Filename(p, export.ExtPDF), body)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "background rendering is not configured")
		return
	}
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if _, err := h.service.Get(r.Context(), id); err != nil {
		h.fail(w, "render quote", err)
		return
	}
	taskID, err := h.queue.EnqueueQuoteRender(r.Context(), id)
	if err != nil {
		h.fail(w, "enqueue quote render", err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"task_id": taskID, "status": "queued"})
}

func (h *Handler) payload(w http.ResponseWriter, r *http.Request) (export.QuotePayload, bool) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return export.QuotePayload{}, false
	}
	p, err := h.service.Payload(r.Context(), id)
	if err != nil {
		h.fail(w, "load quote payload", err)
		return export.QuotePayload{}, false
	}
	return p, true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op+" failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}

func lineParams(r *http.Request) (uuid.UUID, int, error) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		return uuid.Nil, 0, err
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		return uuid.Nil, 0, &httpx.ValidationError{Fields: map[string]string{"index": "must be a non-negative integer"}}
	}
	return id, index, nil
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()
	limit, offset := httpx.PageParams(r)
	filter := ListFilter{
		Kind:   Kind(q.Get("kind")),
		Status: Status(q.Get("status")),
		Search: q.Get("search"),
		Limit:  limit,
		Offset: offset,
	}
	var err error
	if filter.ClientID, err = httpx.OptionalUUID(r, "client_id"); err != nil {
		return ListFilter{}, err
	}
	if filter.From, err = httpx.OptionalDate(r, "from"); err != nil {
		return ListFilter{}, err
	}
	if filter.To, err = httpx.OptionalDate(r, "to"); err != nil {
		return ListFilter{}, err
	}
	return filter, nil
}
