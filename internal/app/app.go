// Package app assembles the dashboard server: configuration, logging,
// credentials, the data store, services, the router and graceful
// shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dreinsights/internal/auth"
	"dreinsights/internal/config"
	apierrors "dreinsights/internal/errors"
	"dreinsights/internal/infrastructure"
	custommw "dreinsights/internal/middleware"
	"dreinsights/internal/refresh"
	"dreinsights/internal/services"
	"dreinsights/internal/store"
	transporthttp "dreinsights/internal/transport/http"
	ws "dreinsights/internal/websocket"
)

// Version is set at build time via -ldflags.
var (
	Version   = "dev"
	BuildTime = ""
)

// Application holds the wired server components.
type Application struct {
	Config      *config.Config
	Logger      *slog.Logger
	Credentials *auth.Credentials
	Store       *store.Store
	Hub         *ws.Hub
	Watcher     *refresh.Watcher

	dashboardService *services.DashboardService
	healthService    *services.HealthService
	errorHandler     *apierrors.ErrorHandler
	router           chi.Router
	server           *http.Server
}

// Overrides carries command-line settings that take precedence over the
// config file and environment.
type Overrides struct {
	Host string
	Port int
}

// NewApplication builds the application. Any error here is fatal: the
// server refuses to start without its config, credentials or data store.
func NewApplication(overrides Overrides) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if overrides.Host != "" {
		cfg.Server.Host = overrides.Host
	}
	if overrides.Port != 0 {
		cfg.Server.Port = overrides.Port
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("prepare directories: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	creds, err := auth.LoadCredentials(cfg.Paths.UsersFile)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	st, err := store.OpenExisting(cfg.Paths.DatabaseFile, logger)
	if err != nil {
		return nil, fmt.Errorf("open data store: %w", err)
	}

	a := &Application{
		Config:      cfg,
		Logger:      logger,
		Credentials: creds,
		Store:       st,
		Hub:         ws.NewHub(logger),
	}

	a.dashboardService = services.NewDashboardService(st, logger)
	a.healthService = services.NewHealthService(Version, BuildTime, st, logger)
	a.errorHandler = apierrors.NewErrorHandler(logger, false)
	a.Watcher = refresh.NewWatcher(st, a.Hub, logger)

	a.setupRouter()

	a.server = &http.Server{
		Addr:           cfg.ListenAddr(),
		Handler:        a.router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	logger.Info("application assembled",
		slog.String("version", Version),
		slog.String("addr", cfg.ListenAddr()),
		slog.String("store", cfg.Paths.DatabaseFile))
	return a, nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(a.Logger))
	r.Use(custommw.Recoverer(a.Logger))
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Metrics)

	if a.Config.Security.EnableCORS {
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			AllowedMethods: []string{"GET", "PUT", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		}))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(custommw.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger).Handler)
	}

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)
	a.setupStaticRoutes(r)

	// Prometheus scrape endpoint, outside auth.
	r.Handle("/metrics", promhttp.Handler())

	a.router = r
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	dashboardHandler := transporthttp.NewDashboardHandler(a.dashboardService, a.Logger, a.errorHandler)
	transactionsHandler := transporthttp.NewTransactionsHandler(a.dashboardService, a.Logger, a.errorHandler)
	areasHandler := transporthttp.NewAreasHandler(a.dashboardService, a.Logger, a.errorHandler)
	mapHandler := transporthttp.NewMapHandler(a.dashboardService, a.Logger, a.errorHandler)
	chartsHandler := transporthttp.NewChartsHandler(a.dashboardService, a.Logger, a.errorHandler)
	healthHandler := transporthttp.NewHealthHandler(a.healthService, a.Logger)

	r.Route("/api", func(r chi.Router) {
		// Health and version stay reachable without credentials so
		// orchestration probes work.
		r.Group(func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Mount("/health", healthHandler.Routes())
			r.Get("/version", healthHandler.GetVersion)
		})

		r.Group(func(r chi.Router) {
			r.Use(a.Credentials.BasicAuth(a.Logger))
			r.Use(custommw.Timeout(a.Config.Server.ReadTimeout, a.Logger))

			r.Mount("/dashboard", dashboardHandler.Routes())
			r.Mount("/transactions", transactionsHandler.Routes())
			r.Mount("/export", transactionsHandler.ExportRoutes())
			r.Mount("/areas", areasHandler.Routes())
			r.Mount("/map", mapHandler.Routes())
			r.Mount("/charts", chartsHandler.Routes())
		})
	})

	// Refresh notifications. The websocket handshake carries the same
	// basic credentials.
	r.Group(func(r chi.Router) {
		r.Use(a.Credentials.BasicAuth(a.Logger))
		r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
			if err := ws.ServeWS(a.Hub, w, req, a.Logger); err != nil {
				a.Logger.ErrorContext(req.Context(), "websocket upgrade failed",
					slog.String("error", err.Error()))
			}
		})
	})
}

func (a *Application) setupStaticRoutes(r chi.Router) {
	webDir := a.Config.Paths.WebDir
	if _, err := os.Stat(webDir); err != nil {
		a.Logger.Warn("web directory not found, static assets disabled",
			slog.String("web_dir", webDir))
		return
	}

	fileServer := http.FileServer(http.Dir(webDir))
	r.Route("/static", func(r chi.Router) {
		r.Use(custommw.Compress(5))
		r.Handle("/*", http.StripPrefix("/static", fileServer))
	})
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, filepath.Join(webDir, "index.html"))
	})
}

// Run starts the background workers and serves HTTP until ctx is
// cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	a.Hub.Start()

	if a.Config.Refresh.Enabled {
		if err := a.Watcher.Start(a.Config.Refresh.Schedule); err != nil {
			return fmt.Errorf("start refresh watcher: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("server shutdown failed", slog.String("error", err.Error()))
	}

	if a.Config.Refresh.Enabled {
		a.Watcher.Stop()
	}
	a.Hub.Stop()

	if err := a.Store.Close(); err != nil {
		a.Logger.Error("store close failed", slog.String("error", err.Error()))
	}
	infrastructure.CloseLogFile()
	return nil
}
