package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/change-maker/internal/application"
	"github.com/eugenenazirov/change-maker/internal/config"
	"github.com/eugenenazirov/change-maker/internal/logging"
)

var signalNotify = signal.Notify

type flags struct {
	configFile     *string
	port           *string
	denominations  *string
	strategy       *string
	logLevel       *string
	rateLimitRPS   *float64
	rateLimitBurst *int
}

func main() {
	kingpinApp := kingpin.New("change-maker", "Change Maker - works out notes and coins to return from a limited cash drawer")
	f := registerFlags(kingpinApp)
	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	cfg, err := config.Load(f.overrides())
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

func registerFlags(app *kingpin.Application) flags {
	return flags{
		configFile:     app.Flag("config", "Path to YAML configuration file").String(),
		port:           app.Flag("port", "HTTP port exposed by the service").String(),
		denominations:  app.Flag("denominations", "Initial drawer contents as value:count pairs, e.g. 2000:10,500:20").String(),
		strategy:       app.Flag("strategy", "Change search strategy (bounded or exhaustive)").String(),
		logLevel:       app.Flag("log-level", "Log level (debug, info, warn, error)").String(),
		rateLimitRPS:   app.Flag("rate-limit-rps", "Requests per second allowed per client (set 0 to disable)").Default("-1").Float64(),
		rateLimitBurst: app.Flag("rate-limit-burst", "Burst capacity per client (set 0 to disable)").Default("-1").Int(),
	}
}

func (f flags) overrides() *config.CLIOverrides {
	overrides := &config.CLIOverrides{
		ConfigFile: *f.configFile,
	}

	if *f.port != "" {
		overrides.Port = f.port
	}
	if *f.denominations != "" {
		overrides.DenominationsStr = f.denominations
	}
	if *f.strategy != "" {
		overrides.Strategy = f.strategy
	}
	if *f.logLevel != "" {
		overrides.LogLevel = f.logLevel
	}
	if *f.rateLimitRPS >= 0 {
		overrides.RateLimitRPS = f.rateLimitRPS
	}
	if *f.rateLimitBurst >= 0 {
		overrides.RateLimitBurst = f.rateLimitBurst
	}

	return overrides
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("shutting down server", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
