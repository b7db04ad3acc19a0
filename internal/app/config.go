package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ScenarioPath points at the scenario descriptor (.hcl, .yaml or .yml).
	ScenarioPath string
	// OutDir receives the run report. Empty disables the report.
	OutDir string

	// DataDir holds cutout CSV data; missing cutouts use synthetic weather.
	DataDir string
	// BaseDir holds buses.csv and lines.csv replacing the built-in grid.
	BaseDir string
	// PlantsCSV replaces the built-in conventional plant roster,
	// CustomPlantsCSV amends it.
	PlantsCSV       string
	CustomPlantsCSV string

	LogFormat    string
	LogLevel     string
	WorkerCount  int
	SolveTimeout time.Duration
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ScenarioPath == "" {
		return nil, errors.New("ScenarioPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
