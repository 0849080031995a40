package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "dreinsights/internal/errors"
	"dreinsights/internal/exporter"
)

// TransactionsHandler serves the raw filtered transactions table and its
// downloadable exports.
type TransactionsHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewTransactionsHandler creates a transactions handler.
func NewTransactionsHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *TransactionsHandler {
	return &TransactionsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "transactions_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the transactions routes.
func (h *TransactionsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetTransactions)
	return r
}

// ExportRoutes returns the export download routes.
func (h *TransactionsHandler) ExportRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{format}", h.Export)
	return r
}

// GetTransactions handles GET /api/transactions. An empty slice is a
// normal response, not an error.
func (h *TransactionsHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("filter", err.Error()))
		return
	}

	records, err := h.service.Transactions(r.Context(), f)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load transactions",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   records,
		"count":  len(records),
	})
}

// Export handles GET /api/export/{format} for csv and xlsx downloads of
// the current filter slice.
func (h *TransactionsHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if format != "csv" && format != "xlsx" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format",
			fmt.Sprintf("unsupported export format %q", format)))
		return
	}

	f, err := filterFromRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("filter", err.Error()))
		return
	}

	records, err := h.service.Transactions(r.Context(), f)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load export slice",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("transactions-%s-to-%s.%s",
		f.From.Format("2006-01-02"), f.To.Format("2006-01-02"), format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	started := time.Now()
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		err = exporter.WriteCSV(w, records)
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = exporter.WriteXLSX(w, records)
	}
	if err != nil {
		// Headers are out; all we can do is log.
		h.logger.ErrorContext(r.Context(), "export stream failed",
			slog.String("format", format),
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(r.Context(), "export served",
		slog.String("format", format),
		slog.Int("records", len(records)),
		slog.Duration("duration", time.Since(started)))
}
