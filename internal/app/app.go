package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"mtapulse/internal/config"
	"mtapulse/internal/dataprocessing"
	apierrors "mtapulse/internal/errors"
	"mtapulse/internal/infrastructure"
	mw "mtapulse/internal/middleware"
	"mtapulse/internal/presentation"
	"mtapulse/internal/services"
	handlers "mtapulse/internal/transport/http"
	ws "mtapulse/internal/websocket"
	"mtapulse/pkg/contracts"
	"mtapulse/pkg/contracts/events"
)

// Application holds the wired dashboard server.
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.DashboardMetrics
	Dataset       *dataprocessing.Dataset
	Dashboard     *services.DashboardService
	Health        *services.HealthService
	WebSocketHub  *ws.Hub
	FrontendFS    fs.FS

	errorHandler *apierrors.ErrorHandler
}

// NewApplication loads configuration from the environment and builds the
// application. A dataset that cannot be loaded is returned as the error.
func NewApplication(frontendFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger, frontendFS)
}

// New builds the application from an explicit config.
func New(cfg *config.Config, logger *slog.Logger, frontendFS fs.FS) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFromTelemetry(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateDashboardMetrics(providers.Meter)
	if err != nil {
		_ = providers.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		FrontendFS:    frontendFS,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := a.initializeServices(); err != nil {
		_ = providers.Shutdown(context.Background())
		return nil, err
	}
	if err := a.setupRouter(); err != nil {
		_ = providers.Shutdown(context.Background())
		return nil, err
	}
	a.createServer()

	logger.Info("application initialized",
		slog.String("version", contracts.GetVersionString()),
		slog.String("address", cfg.Address()),
		slog.Int("records", a.Dataset.Len()))
	return a, nil
}

func (a *Application) initializeServices() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.RequestTimeout)
	defer cancel()

	dataset, err := dataprocessing.NewLoader(a.Logger).Load(ctx, a.Config.Data.CSVPath)
	if err != nil {
		return err
	}
	a.Dataset = dataset

	pandemicStart, err := a.Config.PandemicStartDate()
	if err != nil {
		return fmt.Errorf("invalid pandemic start date: %w", err)
	}
	presentationOpts := presentation.DefaultOptions()
	presentationOpts.PandemicStart = pandemicStart

	dashboard, err := services.NewDashboardService(dataset, services.DashboardOptions{
		CacheEnabled: a.Config.Cache.Enabled,
		CacheSize:    a.Config.Cache.Size,
		CacheTTL:     a.Config.Cache.TTL,
		Presentation: presentationOpts,
		Metrics:      a.Metrics,
	}, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create dashboard service: %w", err)
	}
	a.Dashboard = dashboard

	a.WebSocketHub = ws.NewHub(a.Metrics, a.Logger)
	a.Health = services.NewHealthService(dashboard, a.WebSocketHub, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	// Set before any Route or Mount so sub-routers inherit them.
	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	r.Use(mw.RequestID)
	r.Use(mw.RealIP)
	r.Use(apierrors.RecoveryMiddleware(a.errorHandler))

	// The socket skips the logger and timeout, which would wrap the hijacked writer.
	r.Handle("/ws", ws.NewHandler(a.WebSocketHub, a.Dashboard, ws.HandlerOptions{
		Client: ws.Options{
			PingPeriod:     a.Config.WebSocket.PingPeriod,
			PongWait:       a.Config.WebSocket.PongWait,
			MaxMessageSize: a.Config.WebSocket.MaxMessageSize,
			RequestTimeout: a.Config.Server.RequestTimeout,
		},
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		AllowedOrigins:  a.Config.Security.AllowedOrigins,
	}, a.errorHandler, a.Logger))

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	otelMiddleware, err := mw.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		return fmt.Errorf("failed to create OpenTelemetry middleware: %w", err)
	}

	var page *handlers.PageHandler
	if a.FrontendFS != nil {
		page, err = handlers.NewPageHandler(a.Dashboard, a.FrontendFS, a.Logger, a.errorHandler)
		if err != nil {
			return err
		}
	}

	r.Group(func(r chi.Router) {
		r.Use(otelMiddleware.Handler)
		r.Use(mw.StructuredLogger(a.Logger))
		r.Use(mw.SecurityHeaders)
		r.Use(mw.Compress(5))
		if a.Config.Security.EnableCORS {
			r.Use(mw.CORS(a.corsConfig()))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(mw.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
		if page != nil {
			page.Routes(r)
		}
	})

	a.Router = r
	return nil
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(mw.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		handlers.NewHealthHandler(a.Health, a.Logger).Routes(r)
		r.Post("/client-log", handlers.NewClientLogHandler(a.Logger, a.errorHandler).Handle)

		if a.Config.Logging.Development {
			r.Mount("/debug", handlers.NewDebugHandler(a.Dashboard).Routes())
		}

		r.Mount("/", handlers.NewDashboardHandler(a.Dashboard, a.Logger, a.errorHandler).Routes())
	})
}

func (a *Application) corsConfig() mw.CORSConfig {
	return mw.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		Logger:         a.Logger,
	}
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelWarn),
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled or the server fails, then shuts
// down gracefully.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	a.WebSocketHub.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("dashboard listening", slog.String("url", "http://"+ln.Addr().String()))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()
		return a.Stop(shutdownCtx)
	})
	return g.Wait()
}

// Stop notifies connected pages, closes the sockets, drains HTTP requests and
// flushes telemetry.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.Info("shutting down")
	start := time.Now()

	var errs []error
	if err := a.WebSocketHub.Broadcast(events.NewMessage(events.MessageTypeSystemStatus, events.SystemStatus{
		Status:  "shutting_down",
		Message: "Server is shutting down",
	})); err != nil {
		errs = append(errs, err)
	}
	if err := a.WebSocketHub.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("websocket hub: %w", err))
	}
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http server: %w", err))
	}
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}

	a.Logger.Info("shutdown complete", slog.Duration("duration", time.Since(start)))
	return errors.Join(errs...)
}
