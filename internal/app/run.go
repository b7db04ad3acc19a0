package app

import (
	"context"
	"fmt"

	"github.com/vk/gridcap/internal/ctxlog"
	"github.com/vk/gridcap/internal/pipeline"
)

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.logger.Info("Starting scenario run.",
		"scenario", appConfig.ScenarioPath,
		"workers", appConfig.WorkerCount)

	report, runErr := pipeline.Run(ctx, a.scenario, pipeline.Options{
		Workers:         appConfig.WorkerCount,
		SolveTimeout:    appConfig.SolveTimeout,
		DataDir:         appConfig.DataDir,
		BaseDir:         appConfig.BaseDir,
		PlantsCSV:       appConfig.PlantsCSV,
		CustomPlantsCSV: appConfig.CustomPlantsCSV,
		Solver:          a.solver,
	})

	if report != nil && appConfig.OutDir != "" {
		if err := report.Write(appConfig.OutDir); err != nil {
			a.logger.Error("Failed to write run report.", "error", err)
			if runErr == nil {
				runErr = err
			}
		} else {
			a.logger.Info("Run report written.", "dir", appConfig.OutDir)
		}
	}

	if runErr != nil {
		return fmt.Errorf("scenario run failed: %w", runErr)
	}

	a.logger.Info("Scenario run finished.",
		"instances", len(report.Instances), "failed", report.Failed())
	a.logger.Debug("App.Run method finished.")
	return nil
}
