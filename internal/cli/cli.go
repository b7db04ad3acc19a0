package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/gridcap/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("gridcap", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
GridCap - a scenario compiler for capacity-expansion studies.

Usage:
  gridcap [options] [SCENARIO_PATH]

Arguments:
  SCENARIO_PATH
    Path to a scenario descriptor (.hcl, .yaml or .yml).

Options:
`)
		flagSet.PrintDefaults()
	}

	scenarioFlag := flagSet.String("scenario", "", "Path to the scenario descriptor.")
	sFlag := flagSet.String("s", "", "Path to the scenario descriptor (shorthand).")
	outFlag := flagSet.String("out", "", "Directory for the run report. Empty disables the report.")
	dataDirFlag := flagSet.String("data-dir", "", "Directory with cutout CSV data. Missing cutouts use synthetic weather.")
	baseDirFlag := flagSet.String("base-dir", "", "Directory with buses.csv and lines.csv replacing the built-in grid.")
	plantsFlag := flagSet.String("powerplants", "", "CSV file replacing the built-in conventional plant roster.")
	customPlantsFlag := flagSet.String("custom-powerplants", "", "CSV file amending the plant roster.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 4, "Number of scenario instances solved concurrently.")
	solveTimeoutFlag := flagSet.Duration("solve-timeout", 0, "Per-instance solver time budget. 0 disables the limit.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *scenarioFlag != "" {
		path = *scenarioFlag
	} else if *sFlag != "" {
		path = *sFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Scenario path determined.", "path", path)

	if path == "" {
		slog.Debug("No scenario path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *workersFlag < 1 {
		return nil, false, &ExitError{Code: 2, Message: "invalid workers: must be at least 1"}
	}
	if *solveTimeoutFlag < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid solve-timeout: must not be negative"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ScenarioPath:    path,
		OutDir:          *outFlag,
		DataDir:         *dataDirFlag,
		BaseDir:         *baseDirFlag,
		PlantsCSV:       *plantsFlag,
		CustomPlantsCSV: *customPlantsFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		WorkerCount:     *workersFlag,
		SolveTimeout:    *solveTimeoutFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
