package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/change-maker/internal/api"
	"github.com/eugenenazirov/change-maker/internal/change"
	"github.com/eugenenazirov/change-maker/internal/config"
	"github.com/eugenenazirov/change-maker/internal/drawer"
	"github.com/eugenenazirov/change-maker/internal/metrics"
	"github.com/eugenenazirov/change-maker/internal/money"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	drawer     drawer.Drawer
	calculator change.Calculator
	handler    *api.Handler
	router     http.Handler
	logger     *zap.Logger
	server     *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	cashDrawer := drawer.NewMemoryDrawer()
	if err := cashDrawer.SetSlots(cfg.Denominations); err != nil {
		return nil, fmt.Errorf("failed to apply initial denominations: %w", err)
	}

	converter, err := money.NewConverter(cfg.MinorUnitExponent)
	if err != nil {
		return nil, fmt.Errorf("failed to configure money converter: %w", err)
	}

	calc := change.New(cfg.Strategy, change.WithMaxAmount(cfg.MaxAmount))
	handler := api.NewHandler(calc, cashDrawer, api.WithConverter(converter))
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithMetrics(cfg.MetricsEnabled),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithTrustForwardedFor(cfg.TrustForwardedFor),
	)

	metricsPath := ""
	if cfg.MetricsEnabled {
		metricsPath = cfg.MetricsPath
	}

	return &App{
		drawer:     cashDrawer,
		calculator: calc,
		handler:    handler,
		router:     apiRouter,
		logger:     logger,
		server:     NewServer(cfg, BuildRootHandler(apiRouter, metricsPath)),
	}, nil
}

// BuildRootHandler routes API requests and, when metricsPath is set, exposes Prometheus metrics.
func BuildRootHandler(apiHandler http.Handler, metricsPath string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	if metricsPath != "" {
		mux.Handle("GET "+metricsPath, metrics.Handler())
	}
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening",
			zap.String("addr", a.server.Addr),
			zap.String("strategy", string(a.calculator.Strategy())),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
