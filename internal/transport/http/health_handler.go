package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// HealthHandler serves health and version endpoints.
type HealthHandler struct {
	service HealthServiceInterface
	logger  *slog.Logger
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(service HealthServiceInterface, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		logger:  logger.With(slog.String("component", "health_handler")),
	}
}

// Routes returns the health routes.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.GetHealth)
	return r
}

// GetHealth handles GET /api/health. A degraded status still returns 200
// so load balancers see the process is up; the body carries the detail.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Check(r.Context()))
}

// GetVersion handles GET /api/version.
func (h *HealthHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Version())
}
