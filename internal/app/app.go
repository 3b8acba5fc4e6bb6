package app

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"species-schema-validator/internal/config"
	"species-schema-validator/internal/events"
	"species-schema-validator/internal/observability/logging"
	"species-schema-validator/internal/observability/metrics"
	"species-schema-validator/internal/runner"
)

// Application holds process-wide state for one validation run.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Configuration
	Metrics     *metrics.Metrics
	Publisher   *events.Publisher
}

// New constructs a new Application from the provided configuration. Logs go
// to logOut; the report is written by Run.
func New(cfg *config.Configuration, logOut io.Writer) *Application {
	a := &Application{
		Cfg:     cfg,
		Metrics: metrics.NewMetrics(),
	}
	a.setupLogger(logOut)

	a.Publisher = events.New(&events.Config{
		Enabled:   cfg.Kafka.Enabled,
		Brokers:   cfg.Kafka.Brokers,
		Topic:     cfg.Kafka.Topic,
		Principal: cfg.Kafka.Principal,
		Timeout:   cfg.Kafka.Timeout,
	}, a.Metrics)

	a.Logger.Debug().
		Str("method", "New").
		Str("repoRoot", cfg.Paths.RepoRoot).
		Msg("Species validator application created")
	return a
}

func (a *Application) setupLogger(out io.Writer) {
	lc := logging.DefaultConfig()
	if a.Cfg.Observability.LogLevel != "" {
		lc.Level = a.Cfg.Observability.LogLevel
	}
	if a.Cfg.Observability.LogFormat != "" {
		lc.Format = a.Cfg.Observability.LogFormat
	}
	if out != nil {
		lc.Output = out
	}
	logging.Init(lc)
	a.Logger = logging.Logger().With().
		Str("service", a.Cfg.Service.Principal).
		Str("component", "application").
		Logger()
}

// Run validates the species data once, writing the report to out, and returns
// the process exit status.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	runLogger := a.Logger.With().
		Str("method", "Run").
		Logger()

	a.StartupTime = time.Now().UTC()
	runLogger.Info().
		Time("startupTime", a.StartupTime).
		Str("schema", a.Cfg.Paths.SchemaPath).
		Str("speciesDir", a.Cfg.Paths.SpeciesDir).
		Msg("Species validation starting")

	r := runner.New(a.Cfg.Paths.SchemaPath, a.Cfg.Paths.SpeciesDir, out,
		runner.WithMetrics(a.Metrics),
		runner.WithPublisher(a.Publisher),
	)
	res, err := r.Run(ctx)
	if err != nil {
		runLogger.Error().Stack().Err(err).Msg("Species validation aborted")
	}

	if werr := a.Metrics.WriteTextfile(a.Cfg.Observability.MetricsTextfile); werr != nil {
		runLogger.Warn().Err(werr).
			Str("path", a.Cfg.Observability.MetricsTextfile).
			Msg("Failed to write metrics textfile")
	}

	return runner.ExitCode(res, err)
}

// Shutdown flushes the publisher before process exit.
func (a *Application) Shutdown() {
	shutdownLogger := a.Logger.With().
		Str("method", "Shutdown").
		Logger()

	if err := a.Publisher.Close(); err != nil {
		shutdownLogger.Warn().Err(err).Msg("Publisher close failed")
	}
	shutdownLogger.Debug().Msg("Species validator shutting down")
}
