package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"dreinsights/internal/chart"
	apierrors "dreinsights/internal/errors"
)

// ChartsHandler renders dashboard aggregates as PNG images.
type ChartsHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewChartsHandler creates a charts handler.
func NewChartsHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ChartsHandler {
	return &ChartsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "charts_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the chart routes.
func (h *ChartsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{name}.png", h.GetChart)
	return r
}

// GetChart handles GET /api/charts/{name}.png. Supported names:
// by-rooms, by-registration, by-payment, median-price, daily-counts.
func (h *ChartsHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	f, err := filterFromRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("filter", err.Error()))
		return
	}

	var buf bytes.Buffer
	switch name {
	case "by-rooms":
		counts, serr := h.service.ByRooms(r.Context(), f)
		if serr == nil {
			err = chart.RenderCategoryBars(&buf, "Transactions by Rooms", counts)
		} else {
			err = serr
		}
	case "by-registration":
		counts, serr := h.service.ByRegistration(r.Context(), f)
		if serr == nil {
			err = chart.RenderCategoryBars(&buf, "Ready vs Off-Plan", counts)
		} else {
			err = serr
		}
	case "by-payment":
		counts, serr := h.service.ByPayment(r.Context(), f)
		if serr == nil {
			err = chart.RenderCategoryBars(&buf, "Payment Types", counts)
		} else {
			err = serr
		}
	case "median-price":
		series, serr := h.service.MedianPriceSqm(r.Context(), f)
		if serr == nil {
			err = chart.RenderDailyMedian(&buf, "Median Price per Sq. M. (USD)", series)
		} else {
			err = serr
		}
	case "daily-counts":
		buckets, serr := h.service.ByType(r.Context(), f)
		if serr == nil {
			err = chart.RenderDailyCounts(&buf, "Transactions per Day", buckets)
		} else {
			err = serr
		}
	default:
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError(fmt.Sprintf("chart %q", name)))
		return
	}

	if err != nil {
		h.logger.ErrorContext(r.Context(), "chart render failed",
			slog.String("chart", name),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusUnprocessableEntity, "CHART_RENDER_FAILED",
			fmt.Sprintf("cannot render chart %q: %v", name, err)))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}
