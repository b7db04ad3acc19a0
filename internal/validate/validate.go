// Package validate implements the objective regression gate: a solved
// instance is compared against a configured expected objective value.
package validate

import (
	"fmt"
	"math"

	"github.com/vk/gridcap/internal/scenario"
)

// ValidationError reports an objective value outside the accepted band.
type ValidationError struct {
	Expected  float64
	Actual    float64
	Tolerance float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate: objective %g deviates from expected %g by more than relative tolerance %g",
		e.Actual, e.Expected, e.Tolerance)
}

// CheckObjective applies the opt-in regression gate. A disabled gate
// always passes.
func CheckObjective(spec scenario.CheckObjectiveSpec, actual float64) error {
	if !spec.Enable {
		return nil
	}
	tol := spec.Tolerance()
	// Relative to the expected value; an expected value of exactly zero falls
	// back to an absolute band.
	scale := math.Abs(spec.ExpectedValue)
	if scale == 0 {
		scale = 1
	}
	if math.Abs(actual-spec.ExpectedValue) > tol*scale {
		return &ValidationError{Expected: spec.ExpectedValue, Actual: actual, Tolerance: tol}
	}
	return nil
}
