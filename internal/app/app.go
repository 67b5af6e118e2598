package app

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"balance-schema-service/internal/config"
	"balance-schema-service/internal/observability/logging"
	"balance-schema-service/internal/observability/metrics"
)

// Application holds process-wide state for the service.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Config
	Metrics     *metrics.Metrics

	ready atomic.Bool
}

// New constructs a new Application from the provided configuration.
// A nil m selects the default metrics registry.
func New(cfg *config.Config, m *metrics.Metrics) *Application {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	a := &Application{
		Cfg:     cfg,
		Metrics: m,
	}
	a.setupLogger()

	appLogger := a.Logger.With().
		Str("method", "New").
		Logger()

	appLogger.Info().Msg("Balance schema service application created")
	return a
}

// setupLogger configures zerolog for the service.
func (a *Application) setupLogger() {
	logCfg := logging.DefaultConfig()
	logCfg.Level = a.Cfg.Observability.LogLevel
	logCfg.Format = a.Cfg.Observability.LogFormat
	logging.Init(logCfg)

	a.Logger = logging.WithComponent("application")

	a.Logger.Info().
		Str("logLevel", zerolog.GlobalLevel().String()).
		Str("logFormat", logCfg.Format).
		Msg("Logger setup completed")
}

// Start performs any startup work required before serving traffic.
func (a *Application) Start() error {
	startLogger := a.Logger.With().
		Str("method", "Start").
		Logger()

	a.StartupTime = time.Now().UTC()
	a.ready.Store(true)
	startLogger.Info().
		Time("startupTime", a.StartupTime).
		Msg("Balance schema service starting")

	return nil
}

// Ready reports whether Start has run and Shutdown has not.
func (a *Application) Ready() bool {
	return a.ready.Load()
}

// Shutdown marks the service not ready ahead of process exit.
func (a *Application) Shutdown() {
	shutdownLogger := a.Logger.With().
		Str("method", "Shutdown").
		Logger()

	a.ready.Store(false)
	shutdownLogger.Info().
		Dur("uptime", time.Since(a.StartupTime)).
		Msg("Balance schema service shutting down")
}
