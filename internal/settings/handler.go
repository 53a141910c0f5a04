package settings

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tilequote/tilequote/internal/platform/httpx"
)

// Handler exposes settings over JSON.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler builds the settings handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// MountRoutes registers settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/", h.put)
	r.Get("/profile/default", h.defaultProfile)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	current, err := h.service.Load(r.Context())
	if err != nil {
		h.logger.Error("load settings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, current)
}

func (h *Handler) put(w http.ResponseWriter, r *http.Request) {
	var body Settings
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, err)
		return
	}
	saved, err := h.service.Save(r.Context(), body)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}

func (h *Handler) defaultProfile(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, Default().Profile)
}
