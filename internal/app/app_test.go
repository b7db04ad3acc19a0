package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/gridcap/internal/opt"
	"github.com/vk/gridcap/internal/pipeline"
	"github.com/vk/gridcap/internal/solver"
	"github.com/vk/gridcap/internal/testutil"
)

const appScenarioHCL = `
countries = ["BE"]

snapshots {
  start = "2013-03-01"
  end   = "2013-03-03"
}

electricity {
  co2limit_enable = true
  co2limit        = 100e6

  extendable_carriers {
    Generator   = ["OCGT"]
    StorageUnit = ["battery"]
  }

  renewable_carriers = ["onwind", "solar"]
}

cutout "be-03-2013-era5" {
  module = "era5"
  x      = [2.0, 7.0]
  y      = [49.0, 52.0]
  time   = ["2013-03-01", "2013-03-08"]
}

renewable "onwind" {
  cutout = "be-03-2013-era5"
}

renewable "solar" {
  cutout = "be-03-2013-era5"
}

clustering {
  temporal {
    resolution_elec = "24H"
  }
}

lines {
  dynamic_line_rating {
    activate        = false
    cutout          = "be-03-2013-era5"
    max_line_rating = 1.3
  }
}

solving {
  solver {
    name    = "highs"
    options = "default"
  }
}

scenario {
  clusters = [5]
  opts     = [""]
}
`

type fixedSolver struct {
	objective float64
}

func (f *fixedSolver) Name() string { return "fixed" }

func (f *fixedSolver) Solve(_ context.Context, p *opt.Problem) (*solver.Result, error) {
	values := map[string]float64{}
	for _, v := range p.Variables {
		values[v.Name] = v.Lower
	}
	return &solver.Result{Objective: f.objective, Status: "Optimal", Values: values}, nil
}

func writeScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.hcl")
	require.NoError(t, os.WriteFile(path, []byte(appScenarioHCL), 0o644))
	return path
}

func TestAppRunsScenarioEndToEnd(t *testing.T) {
	outDir := t.TempDir()
	appConfig, err := NewConfig(Config{
		ScenarioPath: writeScenario(t),
		OutDir:       outDir,
		LogFormat:    "text",
		LogLevel:     "debug",
		WorkerCount:  2,
	})
	require.NoError(t, err)

	logs := &testutil.SafeBuffer{}
	a := NewApp(logs, appConfig, WithSolver(&fixedSolver{objective: 4.2e8}))
	require.NoError(t, a.Run(context.Background(), appConfig))

	raw, err := os.ReadFile(filepath.Join(outDir, "run_report.json"))
	require.NoError(t, err)

	var report pipeline.Report
	require.NoError(t, json.Unmarshal(raw, &report))
	require.Len(t, report.Instances, 1)
	require.Equal(t, "elec_s_5", report.Instances[0].Name)
	require.Equal(t, pipeline.StatusOK, report.Instances[0].Status)
	require.Equal(t, 4.2e8, report.Instances[0].Objective)

	require.Contains(t, logs.String(), "Scenario run finished.")
}

func TestAppLoadsScenario(t *testing.T) {
	appConfig, err := NewConfig(Config{ScenarioPath: writeScenario(t), LogLevel: "error", LogFormat: "text"})
	require.NoError(t, err)

	a := NewApp(&testutil.SafeBuffer{}, appConfig)
	require.Equal(t, []string{"BE"}, a.Scenario().Countries)
	require.Equal(t, []int{5}, a.Scenario().Scenario.Clusters)
}

func TestNewAppPanicsOnUnreadableScenario(t *testing.T) {
	appConfig, err := NewConfig(Config{ScenarioPath: "does-not-exist.hcl", LogLevel: "error", LogFormat: "text"})
	require.NoError(t, err)

	require.Panics(t, func() {
		NewApp(&testutil.SafeBuffer{}, appConfig)
	})
}

func TestNewConfigRequiresScenarioPath(t *testing.T) {
	_, err := NewConfig(Config{})
	require.Error(t, err)
}
