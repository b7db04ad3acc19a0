// Package opt holds the optimization problem representation, the model
// builder that compiles a clustered network into a linear program, and the
// LP-format export handed to external solvers.
package opt

import (
	"fmt"
	"math"
)

// Sense of a linear constraint.
type Sense int

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

// Variable is one decision variable with box bounds and objective cost.
type Variable struct {
	Name  string
	Lower float64
	Upper float64 // math.Inf(1) for unbounded
	Cost  float64
}

// Term is one coefficient of a linear expression.
type Term struct {
	Var   int
	Coeff float64
}

// Constraint is a named linear constraint over variable indices.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Problem is a linear program in minimization form. Variable and constraint
// order is insertion order, which the builder keeps deterministic so the
// exported LP text is stable.
type Problem struct {
	Name        string
	Variables   []Variable
	Constraints []Constraint

	varIndex map[string]int
}

// NewProblem creates an empty minimization problem.
func NewProblem(name string) *Problem {
	return &Problem{Name: name, varIndex: map[string]int{}}
}

// AddVariable registers a variable and returns its index. Registering a
// name twice is a programming error.
func (p *Problem) AddVariable(name string, lower, upper, cost float64) int {
	if _, dup := p.varIndex[name]; dup {
		panic(fmt.Sprintf("opt: duplicate variable %q", name))
	}
	idx := len(p.Variables)
	p.Variables = append(p.Variables, Variable{Name: name, Lower: lower, Upper: upper, Cost: cost})
	p.varIndex[name] = idx
	return idx
}

// VariableIndex looks a variable up by name.
func (p *Problem) VariableIndex(name string) (int, bool) {
	idx, ok := p.varIndex[name]
	return idx, ok
}

// AddConstraint appends a constraint.
func (p *Problem) AddConstraint(name string, terms []Term, sense Sense, rhs float64) {
	p.Constraints = append(p.Constraints, Constraint{Name: name, Terms: terms, Sense: sense, RHS: rhs})
}

// Objective evaluates the objective for a full variable assignment keyed by
// variable name.
func (p *Problem) Objective(values map[string]float64) float64 {
	var sum float64
	for _, v := range p.Variables {
		sum += v.Cost * values[v.Name]
	}
	return sum
}

// Inf returns the unbounded upper bound.
func Inf() float64 {
	return math.Inf(1)
}

// Infinite reports whether a bound is unbounded.
func Infinite(bound float64) bool {
	return math.IsInf(bound, 0)
}
