package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"soiagi/internal/config"
	"soiagi/internal/errors"
	"soiagi/internal/infrastructure"
	"soiagi/internal/operations"
	"soiagi/pkg/contracts"
)

const (
	AppName = "soiagi - IRS SOI ZIP-code AGI toolkit"

	// ShutdownTimeout bounds telemetry flushing at exit
	ShutdownTimeout = 10 * time.Second
)

// Options control how the application is assembled
type Options struct {
	// ConfigFile is an explicit YAML file; empty searches the usual locations
	ConfigFile string
	// Override adjusts the loaded configuration, e.g. from CLI flags
	Override func(cfg *config.Config)
	// ContinueOnError keeps running independent steps after a failure
	ContinueOnError bool
}

// Application wires configuration, logging, telemetry and the operation
// manager for one CLI invocation
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Manager       *operations.Manager
	ErrorHandler  *errors.ErrorHandler
}

// NewApplication loads configuration and builds every component
func NewApplication(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, errors.NewConfigError("failed to load configuration", err)
	}
	if opts.Override != nil {
		opts.Override(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, errors.NewConfigError("invalid configuration override", err)
		}
	}
	return newApplication(cfg, opts)
}

// NewApplicationWithConfig builds the application from an already loaded
// configuration
func NewApplicationWithConfig(cfg *config.Config, opts Options) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigError("invalid configuration", err)
	}
	return newApplication(cfg, opts)
}

func newApplication(cfg *config.Config, opts Options) (*Application, error) {
	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return nil, errors.NewConfigError("failed to resolve paths", err)
	}

	cfg.Logging.FilePath = resolveAgainst(paths.BaseDir, cfg.Logging.FilePath)
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))

	if err := paths.EnsureDirectories(); err != nil {
		return nil, errors.NewStorageError("failed to ensure directories", err)
	}
	paths.LogPathResolution()

	otelCfg := infrastructure.OTelConfigFromTelemetry(cfg.Telemetry)
	otelCfg.TraceFile = resolveAgainst(paths.BaseDir, otelCfg.TraceFile)
	otelCfg.MetricsTextfile = resolveAgainst(paths.BaseDir, otelCfg.MetricsTextfile)

	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, errors.NewConfigError("failed to initialize OpenTelemetry", err)
	}

	tracer, err := operations.NewOperationTracer(providers)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize operation tracer: %w", err)
	}

	opCfg := operations.NewConfig()
	opCfg.ContinueOnError = opts.ContinueOnError

	registry := operations.NewRegistry()
	if err := operations.RegisterPipelineSteps(registry, operations.StepOptions{
		Config: cfg,
		Paths:  paths,
		Tracer: tracer,
		Logger: logger,
	}); err != nil {
		return nil, fmt.Errorf("failed to register pipeline steps: %w", err)
	}

	manager := operations.NewManager(registry, opCfg, logger)
	manager.SetTracer(tracer)

	return &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Manager:       manager,
		ErrorHandler:  errors.NewErrorHandler(logger),
	}, nil
}

// Run executes one step with its dependencies, or every step when step is
// empty or "all". The response is returned even when the run fails.
func (a *Application) Run(ctx context.Context, step string) (*operations.OperationResponse, error) {
	ctx = infrastructure.EnsureTraceID(ctx)

	a.Logger.InfoContext(ctx, "Run requested",
		slog.String("step", step),
		slog.Any("years", a.Config.Pipeline.Years),
		slog.Bool("filter_jurisdiction", a.Config.Pipeline.FilterJurisdiction),
		slog.String("jurisdiction", a.Config.Pipeline.Jurisdiction))

	return a.Manager.Execute(ctx, operations.OperationRequest{
		Step: step,
		Parameters: map[string]interface{}{
			"years":        a.Config.Pipeline.Years,
			"jurisdiction": a.Config.Pipeline.Jurisdiction,
		},
	})
}

// RunWithSignals is Run with SIGINT and SIGTERM cancelling the context
func (a *Application) RunWithSignals(ctx context.Context, step string) (*operations.OperationResponse, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Run(ctx, step)
}

// Stop flushes telemetry and closes the log file
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
			shutdownErr = err
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	if err := infrastructure.CloseLogFile(); err != nil && shutdownErr == nil {
		shutdownErr = err
	}
	return shutdownErr
}

func resolveAgainst(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
