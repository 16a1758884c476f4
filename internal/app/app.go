package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/teozeng1205/brands-compare/internal/config"
	"github.com/teozeng1205/brands-compare/internal/dataprocessing"
	apierrors "github.com/teozeng1205/brands-compare/internal/errors"
	"github.com/teozeng1205/brands-compare/internal/exporter"
	"github.com/teozeng1205/brands-compare/internal/infrastructure"
	customMiddleware "github.com/teozeng1205/brands-compare/internal/middleware"
	"github.com/teozeng1205/brands-compare/internal/services"
	handlers "github.com/teozeng1205/brands-compare/internal/transport/http"
)

const (
	VERSION = "1.0.0"
	AppName = "Brands Compare"
)

// BuildTime is set at compile time
var BuildTime = time.Now().Format(time.RFC3339)

// Application represents the main application container
type Application struct {
	Config    *config.Config
	Router    *chi.Mux
	Server    *http.Server
	Logger    *slog.Logger
	Telemetry *infrastructure.Telemetry

	Loader           *dataprocessing.Loader
	Exporter         *exporter.Exporter
	DashboardService *services.DashboardService
	HealthService    *services.HealthService
	ErrorHandler     *apierrors.ErrorHandler
}

// NewApplication wires the services, router and server from configuration.
// A nil telemetry records nothing.
func NewApplication(cfg *config.Config, logger *slog.Logger, tel *infrastructure.Telemetry) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tel == nil {
		tel = infrastructure.NoopTelemetry(logger)
	}

	a := &Application{
		Config:    cfg,
		Logger:    logger,
		Telemetry: tel,
	}

	a.initializeServices()
	if err := a.setupRouter(); err != nil {
		return nil, err
	}
	a.createServer()

	return a, nil
}

func (a *Application) initializeServices() {
	a.Loader = dataprocessing.NewLoader(dataprocessing.Files{
		AirlineLevel: a.Config.AirlineLevelPath(),
		SourceLevel:  a.Config.SourceLevelPath(),
		Detections:   a.Config.DetectionPath(),
	}, a.Logger, a.Telemetry)

	a.Exporter = exporter.NewExporter(a.Logger, a.Telemetry)
	a.DashboardService = services.NewDashboardService(a.Loader, customMiddleware.NewValidator(), a.Exporter, a.Logger, a.Telemetry)
	a.HealthService = services.NewHealthService(VERSION, BuildTime, a.Loader, a.Logger)
	a.ErrorHandler = apierrors.NewErrorHandler(a.Logger, false)
}

func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	pages, err := handlers.NewPageHandler(a.DashboardService, a.Logger, a.ErrorHandler)
	if err != nil {
		return fmt.Errorf("failed to create page handler: %w", err)
	}

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → Timeout
		r.Use(customMiddleware.NewOTelMiddleware(a.Telemetry).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)

		r.With(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger)).Get("/", pages.ServeDashboard)
	})

	if a.Telemetry.MetricsHandler != nil {
		r.Handle("/metrics", a.Telemetry.MetricsHandler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
	return nil
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	health := handlers.NewHealthHandler(a.HealthService, a.Logger)
	dashboard := handlers.NewDashboardHandler(a.DashboardService, a.Logger, a.ErrorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/health", health.HealthCheck)
		r.Get("/health/ready", health.ReadinessCheck)
		r.Get("/health/live", health.LivenessCheck)
		r.Get("/version", health.Version)

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
			r.Mount("/", dashboard.Routes())
		})
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"If-None-Match",
			"X-Request-ID",
		},
		ExposedHeaders: []string{
			"Content-Disposition",
			"ETag",
			"X-Request-ID",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server in the background. A listen failure cancels ctx.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	a.Logger.InfoContext(ctx, "Dataset files",
		slog.String("data_dir", a.Config.Data.Dir),
		slog.String("airline_level", a.Config.AirlineLevelPath()),
		slog.String("source_level", a.Config.SourceLevelPath()),
		slog.String("detections", a.Config.DetectionPath()))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if err := a.warmUp(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup data load failed, pages will report the data as unavailable",
			slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://%s", a.Server.Addr)))
	return nil
}

// warmUp loads the datasets once so the first page view hits the cache
func (a *Application) warmUp(ctx context.Context) error {
	loadCtx, cancel := context.WithTimeout(ctx, a.Config.Data.LoadTimeout)
	defer cancel()

	ds, err := a.Loader.Load(loadCtx)
	if err != nil {
		return err
	}

	a.Logger.InfoContext(ctx, "Datasets loaded",
		slog.Int("airline_level_rows", ds.AirlineLevel.Len()),
		slog.Int("source_level_rows", ds.SourceLevel.Len()),
		slog.Int("detection_rows", ds.Detections.Len()),
		slog.String("fingerprint", ds.Fingerprint))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := a.Telemetry.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted or the server fails. SIGHUP
// reloads the datasets without restarting the server.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	for {
		select {
		case sig := <-sigChan:
			if sig == syscall.SIGHUP {
				a.reload(ctx)
				continue
			}
			a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
			return a.Stop(context.Background())
		case <-ctx.Done():
			a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
			if err := a.Stop(context.Background()); err != nil {
				return err
			}
			return errors.New("server stopped unexpectedly")
		}
	}
}

// reload drops the cached datasets and loads the files again
func (a *Application) reload(ctx context.Context) {
	loadCtx, cancel := context.WithTimeout(ctx, a.Config.Data.LoadTimeout)
	defer cancel()

	ds, err := a.Loader.Reload(loadCtx)
	if err != nil {
		a.Logger.ErrorContext(ctx, "Dataset reload failed", slog.String("error", err.Error()))
		return
	}
	a.Logger.InfoContext(ctx, "Datasets reloaded", slog.String("fingerprint", ds.Fingerprint))
}
