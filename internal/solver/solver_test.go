package solver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vk/gridcap/internal/opt"
	"github.com/vk/gridcap/internal/scenario"
)

func TestNewRejectsUnknownSolver(t *testing.T) {
	_, err := New(scenario.SolverSpec{Name: "gurobi"})
	var confErr *scenario.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	require.Equal(t, "solving.solver.name", confErr.Key)
}

func TestNewRejectsUnknownPreset(t *testing.T) {
	_, err := New(scenario.SolverSpec{Name: "highs", Options: "magic"})
	var confErr *scenario.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	require.Equal(t, "solving.solver.options", confErr.Key)
}

func TestPresetsResolve(t *testing.T) {
	for preset, algorithm := range map[string]string{
		"": "choose", "default": "choose", "simplex": "simplex", "ipm": "ipm", "barrier": "ipm",
	} {
		s, err := New(scenario.SolverSpec{Name: "highs", Options: preset})
		require.NoError(t, err, "preset %q", preset)
		require.Equal(t, algorithm, s.(*HiGHS).algorithm)
	}
}

func smallProblem() *opt.Problem {
	// min 2x + 3y  s.t.  x + y >= 10, x <= 8
	p := opt.NewProblem("small")
	x := p.AddVariable("x", 0, 8, 2)
	y := p.AddVariable("y", 0, opt.Inf(), 3)
	p.AddConstraint("demand", []opt.Term{{Var: x, Coeff: 1}, {Var: y, Coeff: 1}}, opt.GreaterEq, 10)
	return p
}

func TestParseSolution(t *testing.T) {
	raw := `Model status
Optimal

# Primal solution values
Feasible
Objective 22
# Columns 2
x 8
y 2
# Rows 1
demand 10
`
	result, err := parseSolution(raw, smallProblem())
	require.NoError(t, err)
	require.Equal(t, "Optimal", result.Status)
	require.Equal(t, 22.0, result.Objective)
	require.Equal(t, map[string]float64{"x": 8, "y": 2}, result.Values)
}

func TestParseSolutionMapsSanitizedNamesBack(t *testing.T) {
	p := opt.NewProblem("named")
	p.AddVariable("pnom b2 solar", 0, opt.Inf(), 1)

	raw := `Model status
Optimal
Objective 5
# Columns 1
pnom_b2_solar 5
# Rows 0
`
	result, err := parseSolution(raw, p)
	require.NoError(t, err)
	require.Equal(t, 5.0, result.Values["pnom b2 solar"])
}

func TestParseSolutionInfeasible(t *testing.T) {
	raw := `Model status
Infeasible
`
	_, err := parseSolution(raw, smallProblem())
	var solErr *Error
	require.ErrorAs(t, err, &solErr)
	require.Equal(t, KindNoSolution, solErr.Kind)
	require.Equal(t, "Infeasible", solErr.Status)
}

func TestSolveEndToEnd(t *testing.T) {
	if !Available() {
		t.Skip("highs binary not on PATH")
	}
	s, err := New(scenario.SolverSpec{Name: "highs", Options: "simplex"})
	require.NoError(t, err)

	result, err := s.Solve(context.Background(), smallProblem())
	require.NoError(t, err)
	require.InDelta(t, 22.0, result.Objective, 1e-6)
	require.InDelta(t, 8.0, result.Values["x"], 1e-6)
	require.InDelta(t, 2.0, result.Values["y"], 1e-6)
}

func TestSolveExpiredDeadlineIsTimeout(t *testing.T) {
	s, err := New(scenario.SolverSpec{Name: "highs"})
	require.NoError(t, err)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err = s.Solve(ctx, smallProblem())
	var solErr *Error
	require.ErrorAs(t, err, &solErr)
	require.Equal(t, KindTimeout, solErr.Kind)
}
