package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/gridcap/internal/ctxlog"
	"github.com/vk/gridcap/internal/descriptor"
	"github.com/vk/gridcap/internal/scenario"
	"github.com/vk/gridcap/internal/solver"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	scenario *scenario.Config
	solver   solver.Solver
}

// Option customizes App construction.
type Option func(*App)

// WithSolver overrides the solver the scenario names. Tests inject fakes
// through this.
func WithSolver(s solver.Solver) Option {
	return func(a *App) { a.solver = s }
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and a loaded,
// validated scenario.
func NewApp(outW io.Writer, appConfig *Config, opts ...Option) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	cfg, err := descriptor.Load(ctx, appConfig.ScenarioPath)
	if err != nil {
		// A failure to load the scenario is a fatal startup error.
		panic(fmt.Errorf("failed to load scenario: %w", err))
	}
	logger.Debug("Scenario descriptor loaded and validated.", "path", appConfig.ScenarioPath)

	a := &App{
		outW:     outW,
		logger:   logger,
		scenario: cfg,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Scenario returns the loaded scenario. This is primarily for testing.
func (a *App) Scenario() *scenario.Config {
	return a.scenario
}
