package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "dreinsights/internal/errors"
	"dreinsights/internal/services"
	"dreinsights/pkg/contracts/domain"
)

// DashboardHandler serves the aggregated dashboard views.
type DashboardHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/metrics", h.GetMetrics)
	r.Get("/by-type", h.GetByType)
	r.Get("/by-rooms", h.GetByRooms)
	r.Get("/by-registration", h.GetByRegistration)
	r.Get("/by-payment", h.GetByPayment)
	r.Get("/median-price", h.GetMedianPrice)
	r.Get("/top-transactions", h.GetTopTransactions)
	r.Get("/top-projects", h.GetTopProjects)

	return r
}

// filter parses the request's filter, writing the error response itself
// when parsing fails.
func (h *DashboardHandler) filter(w http.ResponseWriter, r *http.Request) (domain.TxFilter, bool) {
	f, err := filterFromRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("filter", err.Error()))
		return domain.TxFilter{}, false
	}
	return f, true
}

// handleServiceError maps service errors to API errors.
func (h *DashboardHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "dashboard request failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))

	switch {
	case errors.Is(err, services.ErrInvalidDateRange):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("range", err.Error()))
	case errors.Is(err, services.ErrInvalidMapMetric):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("metric", err.Error()))
	case errors.Is(err, services.ErrDatasetMissing):
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusServiceUnavailable, "DATASET_MISSING", "Transaction data store is unavailable"))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

// GetMetrics handles GET /api/dashboard/metrics.
func (h *DashboardHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}

	metrics, err := h.service.Metrics(r.Context(), f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   metrics,
	})
}

// GetByType handles GET /api/dashboard/by-type.
func (h *DashboardHandler) GetByType(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}

	buckets, err := h.service.ByType(r.Context(), f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   buckets,
		"count":  len(buckets),
	})
}

// GetByRooms handles GET /api/dashboard/by-rooms.
func (h *DashboardHandler) GetByRooms(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}

	counts, err := h.service.ByRooms(r.Context(), f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   counts,
		"count":  len(counts),
	})
}

// GetByRegistration handles GET /api/dashboard/by-registration.
func (h *DashboardHandler) GetByRegistration(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}

	counts, err := h.service.ByRegistration(r.Context(), f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   counts,
		"count":  len(counts),
	})
}

// GetByPayment handles GET /api/dashboard/by-payment.
func (h *DashboardHandler) GetByPayment(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}

	counts, err := h.service.ByPayment(r.Context(), f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   counts,
		"count":  len(counts),
	})
}

// GetMedianPrice handles GET /api/dashboard/median-price.
func (h *DashboardHandler) GetMedianPrice(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}

	series, err := h.service.MedianPriceSqm(r.Context(), f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   series,
		"count":  len(series),
	})
}

// GetTopTransactions handles GET /api/dashboard/top-transactions.
func (h *DashboardHandler) GetTopTransactions(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}

	listing, err := h.service.TopTransactions(r.Context(), f, limitParam(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   listing,
		"count":  len(listing),
	})
}

// GetTopProjects handles GET /api/dashboard/top-projects.
func (h *DashboardHandler) GetTopProjects(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filter(w, r)
	if !ok {
		return
	}

	listing, err := h.service.TopProjects(r.Context(), f, limitParam(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   listing,
		"count":  len(listing),
	})
}

// limitParam reads the optional limit query parameter; 0 means the
// service default.
func limitParam(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
