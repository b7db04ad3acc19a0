// Package solver runs the compiled linear program through an external
// solver and maps its outcome back onto model variables.
package solver

import (
	"context"
	"fmt"

	"github.com/vk/gridcap/internal/opt"
	"github.com/vk/gridcap/internal/scenario"
)

// Kind classifies solver failures.
type Kind int

const (
	// KindFailed covers process and parse failures.
	KindFailed Kind = iota
	// KindTimeout means the solver exceeded its time budget.
	KindTimeout
	// KindNoSolution means the solver terminated without an optimal
	// solution (infeasible or unbounded model).
	KindNoSolution
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindNoSolution:
		return "no solution"
	default:
		return "failed"
	}
}

// Error is a failed solver run.
type Error struct {
	Kind   Kind
	Status string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("solver: %s", e.Kind)
	if e.Status != "" {
		msg += fmt.Sprintf(" (status %q)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result is a successful solver run.
type Result struct {
	Objective float64
	Status    string
	// Values holds the primal solution keyed by model variable name.
	Values map[string]float64
}

// Solver solves a linear program. Implementations honor context
// cancellation and deadlines.
type Solver interface {
	Name() string
	Solve(ctx context.Context, p *opt.Problem) (*Result, error)
}

// New builds the solver the scenario asks for. Unknown solver names and
// unknown option presets are configuration errors.
func New(spec scenario.SolverSpec) (Solver, error) {
	switch spec.Name {
	case "highs":
		return newHiGHS(spec.Options)
	default:
		return nil, &scenario.ConfigurationError{
			Key:    "solving.solver.name",
			Reason: fmt.Sprintf("unknown solver %q", spec.Name),
		}
	}
}
