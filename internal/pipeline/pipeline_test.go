package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/gridcap/internal/cluster"
	"github.com/vk/gridcap/internal/opt"
	"github.com/vk/gridcap/internal/solver"
	"github.com/vk/gridcap/internal/testutil"
)

// fakeSolver returns a fixed objective and the lower bound of every
// capacity variable, without an external binary.
type fakeSolver struct {
	objective float64
	err       error
}

func (f *fakeSolver) Name() string { return "fake" }

func (f *fakeSolver) Solve(_ context.Context, p *opt.Problem) (*solver.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	values := map[string]float64{}
	for _, v := range p.Variables {
		values[v.Name] = v.Lower
	}
	return &solver.Result{Objective: f.objective, Status: "Optimal", Values: values}, nil
}

func TestRunSingleInstance(t *testing.T) {
	cfg := testutil.ExampleConfig()
	require.NoError(t, cfg.Validate())

	report, err := Run(context.Background(), cfg, Options{
		Workers: 2,
		Solver:  &fakeSolver{objective: 1.5e9},
	})
	require.NoError(t, err)
	require.Len(t, report.Instances, 1)

	res := report.Instances[0]
	require.Equal(t, StatusOK, res.Status)
	require.Equal(t, "elec_s_5", res.Name)
	require.Equal(t, 5, res.Clusters)
	require.Equal(t, 7, res.Blocks) // one week at 24H resolution
	require.Equal(t, 1.5e9, res.Objective)
	require.NotEmpty(t, res.ID)
	require.Zero(t, report.Failed())
}

func TestRunExpandsAxes(t *testing.T) {
	cfg := testutil.ExampleConfig()
	cfg.Scenario.Clusters = []int{3, 5}
	cfg.Scenario.Opts = []string{"", "Co2L0-3H"}
	require.NoError(t, cfg.Validate())

	report, err := Run(context.Background(), cfg, Options{Solver: &fakeSolver{objective: 1}})
	require.NoError(t, err)
	require.Len(t, report.Instances, 4)

	var names []string
	for _, res := range report.Instances {
		require.Equal(t, StatusOK, res.Status)
		names = append(names, res.Name)
	}
	require.ElementsMatch(t, []string{
		"elec_s_3", "elec_s_3_Co2L0-3H", "elec_s_5", "elec_s_5_Co2L0-3H",
	}, names)
}

func TestInstanceFailureIsLocalized(t *testing.T) {
	cfg := testutil.ExampleConfig()
	// The Belgian base grid has seven buses; 99 clusters cannot work.
	cfg.Scenario.Clusters = []int{5, 99}
	require.NoError(t, cfg.Validate())

	report, err := Run(context.Background(), cfg, Options{Solver: &fakeSolver{objective: 1}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "elec_s_99")

	var infeasible *cluster.InfeasibleClusteringError
	require.ErrorAs(t, err, &infeasible)

	require.Len(t, report.Instances, 2)
	require.Equal(t, 1, report.Failed())
	for _, res := range report.Instances {
		if res.Clusters == 5 {
			require.Equal(t, StatusOK, res.Status)
		} else {
			require.Equal(t, StatusFailed, res.Status)
			require.NotEmpty(t, res.Error)
		}
	}
}

func TestSolverFailureIsLocalized(t *testing.T) {
	cfg := testutil.ExampleConfig()
	require.NoError(t, cfg.Validate())

	solErr := &solver.Error{Kind: solver.KindTimeout, Err: errors.New("deadline")}
	report, err := Run(context.Background(), cfg, Options{Solver: &fakeSolver{err: solErr}})
	require.Error(t, err)

	var got *solver.Error
	require.ErrorAs(t, err, &got)
	require.Equal(t, solver.KindTimeout, got.Kind)
	require.Equal(t, 1, report.Failed())
}

func TestObjectiveGateFailsInstance(t *testing.T) {
	cfg := testutil.ExampleConfig()
	cfg.Solving.CheckObjective.Enable = true
	cfg.Solving.CheckObjective.ExpectedValue = 2e9
	require.NoError(t, cfg.Validate())

	_, err := Run(context.Background(), cfg, Options{Solver: &fakeSolver{objective: 1e9}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "deviates from expected")
}

func TestReportRoundTrip(t *testing.T) {
	cfg := testutil.ExampleConfig()
	require.NoError(t, cfg.Validate())

	report, err := Run(context.Background(), cfg, Options{Solver: &fakeSolver{objective: 7}})
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, report.Write(dir))

	raw, err := os.ReadFile(filepath.Join(dir, "run_report.json"))
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Instances, 1)
	require.Equal(t, "elec_s_5", decoded.Instances[0].Name)
	require.Equal(t, 7.0, decoded.Instances[0].Objective)
	require.False(t, decoded.FinishedAt.Before(decoded.StartedAt))
}
