package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "dreinsights/internal/errors"
	"dreinsights/internal/services"
	"dreinsights/pkg/contracts/domain"
)

// AreasHandler serves the editable area coordinates table.
type AreasHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAreasHandler creates an areas handler.
func NewAreasHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AreasHandler {
	return &AreasHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "areas_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the areas routes.
func (h *AreasHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.GetAreas)
	r.Put("/", h.PutAreas)
	return r
}

// GetAreas handles GET /api/areas.
func (h *AreasHandler) GetAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.service.Areas(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load areas",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   areas,
		"count":  len(areas),
	})
}

// putAreasRequest is the PUT /api/areas body.
type putAreasRequest struct {
	Areas []domain.Area `json:"areas"`
}

// PutAreas handles PUT /api/areas, replacing the coordinates table with
// the submitted rows.
func (h *AreasHandler) PutAreas(w http.ResponseWriter, r *http.Request) {
	var req putAreasRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("body", "invalid JSON body"))
		return
	}
	if len(req.Areas) == 0 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("areas", "at least one area is required"))
		return
	}

	if err := h.service.ReplaceAreas(r.Context(), req.Areas); err != nil {
		if errors.Is(err, services.ErrInvalidArea) {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("areas", err.Error()))
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to replace areas",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"count":  len(req.Areas),
	})
}
