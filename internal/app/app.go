package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"tabprep/internal/config"
	apierrors "tabprep/internal/errors"
	"tabprep/internal/infrastructure"
	customMiddleware "tabprep/internal/middleware"
	"tabprep/internal/services"
	handlers "tabprep/internal/transport/http"
)

// Application is the table viewer
type Application struct {
	Config    *config.Config
	Router    *chi.Mux
	Server    *http.Server
	Table     *services.TableService
	Health    *services.HealthService
	Telemetry *infrastructure.Telemetry
	Logger    *slog.Logger

	errorHandler *apierrors.ErrorHandler
}

// New loads file and builds the viewer around it. tel must not be nil.
func New(cfg *config.Config, file string, tel *infrastructure.Telemetry, logger *slog.Logger) (*Application, error) {
	table, err := services.NewTableService(file, logger)
	if err != nil {
		return nil, err
	}
	return NewWithService(cfg, table, tel, logger), nil
}

// NewWithService builds the viewer around an already loaded table
func NewWithService(cfg *config.Config, table *services.TableService, tel *infrastructure.Telemetry, logger *slog.Logger) *Application {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Application{
		Config:       cfg,
		Table:        table,
		Health:       services.NewHealthService(table),
		Telemetry:    tel,
		Logger:       infrastructure.WithComponent(logger, "viewer"),
		errorHandler: apierrors.NewErrorHandler(logger, false),
	}
	a.setupRouter()
	a.createServer()
	return a
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.Telemetry(a.Telemetry))
	r.Use(apierrors.NewErrorMiddleware(a.errorHandler, a.Logger).Handler)
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.NewRateLimiter(
		a.Config.Viewer.RateLimitRPS,
		a.Config.Viewer.RateLimitBurst,
		a.Logger,
	).Handler)

	tableHandler := handlers.NewTableHandler(a.Table, a.Config.Viewer, a.Logger, a.errorHandler)
	healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)

	r.Mount("/api/table", tableHandler.Routes())
	r.Get("/healthz", healthHandler.HealthCheck)
	r.Handle("/metrics", a.Telemetry.MetricsHandler())

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Viewer.Addr,
		Handler:      a.Router,
		ReadTimeout:  a.Config.Viewer.ReadTimeout,
		WriteTimeout: a.Config.Viewer.WriteTimeout,
	}
}

// Serve accepts connections on ln until the server is stopped
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	a.Logger.InfoContext(ctx, "viewer listening",
		slog.String("address", ln.Addr().String()),
		slog.String("file", a.Table.File()))

	if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("viewer server: %w", err)
	}
	return nil
}

// Stop gracefully stops the server within Viewer.ShutdownTimeout
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down viewer")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Viewer.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Logger.InfoContext(ctx, "viewer stopped", slog.Duration("uptime", a.Health.Uptime()))
	return nil
}

// Run serves on Viewer.Addr until ctx is cancelled or an interrupt arrives
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return apierrors.NewStorageError(fmt.Sprintf("cannot listen on %s", a.Server.Addr), err)
	}
	return a.run(ctx, ln)
}

func (a *Application) run(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Serve(gctx, ln)
	})
	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(gctx)
	})
	return g.Wait()
}
