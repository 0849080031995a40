package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"dreinsights/internal/analytics"
	apierrors "dreinsights/internal/errors"
	"dreinsights/internal/services"
)

// MapHandler serves the aggregated map layers.
type MapHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewMapHandler creates a map handler.
func NewMapHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *MapHandler {
	return &MapHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "map_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the map routes.
func (h *MapHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/columns", h.GetColumns)
	r.Get("/price-sqm", h.GetPriceSqm)
	return r
}

// GetColumns handles GET /api/map/columns?metric=tx_qty|tx_value_usd|price_sqm.
func (h *MapHandler) GetColumns(w http.ResponseWriter, r *http.Request) {
	metric := analytics.MapMetric(r.URL.Query().Get("metric"))
	if metric == "" {
		metric = analytics.MapMetricValue
	}
	h.columns(w, r, metric)
}

// GetPriceSqm handles GET /api/map/price-sqm, the median price layer.
func (h *MapHandler) GetPriceSqm(w http.ResponseWriter, r *http.Request) {
	h.columns(w, r, analytics.MapMetricPriceSqm)
}

func (h *MapHandler) columns(w http.ResponseWriter, r *http.Request, metric analytics.MapMetric) {
	f, err := filterFromRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("filter", err.Error()))
		return
	}

	columns, err := h.service.MapColumns(r.Context(), f, metric)
	if err != nil {
		if errors.Is(err, services.ErrInvalidMapMetric) {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("metric", err.Error()))
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to build map columns",
			slog.String("metric", string(metric)),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   columns,
		"count":  len(columns),
		"metric": metric,
	})
}
