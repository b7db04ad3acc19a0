package opt

import (
	"context"
	"fmt"

	"github.com/vk/gridcap/internal/ctxlog"
	"github.com/vk/gridcap/internal/linerating"
	"github.com/vk/gridcap/internal/network"
	"github.com/vk/gridcap/internal/profile"
	"github.com/vk/gridcap/internal/temporal"
)

// hoursPerYear scales annualized capital costs down to the share of the
// year the snapshot horizon covers.
const hoursPerYear = 8760.0

// InfeasibleModelError reports a structural defect detected before the
// model is handed to a solver: a demand bus that no generation can reach.
type InfeasibleModelError struct {
	Bus string
}

func (e *InfeasibleModelError) Error() string {
	return fmt.Sprintf("opt: model is structurally infeasible: bus %q carries demand but no generation or storage can reach it", e.Bus)
}

// BuildInput collects everything the builder compiles into a linear
// program for one scenario instance.
type BuildInput struct {
	Name string
	// Net is the clustered network the model is built over.
	Net *network.Network
	// Agg maps native snapshots onto the optimization blocks.
	Agg *temporal.Aggregation
	// Profiles holds the capacity-factor profiles keyed by carrier.
	// Carriers without a profile dispatch freely up to capacity.
	Profiles map[string]*profile.TechnologyProfile
	// Ratings holds the per-line thermal rating series.
	Ratings *linerating.RatingSet

	CO2LimitEnable bool
	CO2Limit       float64
}

// Build compiles the input into a transshipment capacity-expansion LP.
//
// Decision variables: block dispatch per generator, block flow per line and
// link, storage charge/discharge/state-of-charge, and nominal capacity for
// every extendable asset. Constraints: per-bus per-block energy balance,
// dispatch bounded by capacity times capacity factor, state-of-charge
// chaining with cyclic closure, and optionally a total-emissions cap.
func Build(ctx context.Context, in BuildInput) (*Problem, error) {
	logger := ctxlog.FromContext(ctx)

	if err := checkReachability(in.Net); err != nil {
		return nil, err
	}

	b := &builder{
		in:      in,
		p:       NewProblem(in.Name),
		share:   float64(in.Agg.SourceSnapshots()) / hoursPerYear,
		blocks:  in.Agg.Blocks(),
		weights: in.Agg.Weights,
	}

	if err := b.addGenerators(); err != nil {
		return nil, err
	}
	b.addLines()
	b.addLinks()
	if err := b.addStorage(); err != nil {
		return nil, err
	}
	if err := b.addBalances(); err != nil {
		return nil, err
	}
	b.addEmissionCap()

	logger.Debug("Optimization model built.",
		"instance", in.Name,
		"variables", len(b.p.Variables),
		"constraints", len(b.p.Constraints))
	return b.p, nil
}

type builder struct {
	in      BuildInput
	p       *Problem
	share   float64
	blocks  int
	weights []float64

	// balance[busID][block] accumulates the energy balance terms.
	balance map[string][]([]Term)
}

// CapacityVariable returns the capacity variable name of an extendable
// asset, so callers can read optimal capacities out of a solution.
func CapacityVariable(assetID string) string { return "pnom " + assetID }

func dispatchVarName(id string, b int) string { return fmt.Sprintf("p %s %d", id, b) }
func flowVarName(id string, b int) string     { return fmt.Sprintf("f %s %d", id, b) }
func chargeVarName(id string, b int) string   { return fmt.Sprintf("store %s %d", id, b) }
func socVarName(id string, b int) string      { return fmt.Sprintf("soc %s %d", id, b) }

func (b *builder) addBalanceTerm(bus string, block int, t Term) {
	if b.balance == nil {
		b.balance = map[string][][]Term{}
	}
	if b.balance[bus] == nil {
		b.balance[bus] = make([][]Term, b.blocks)
	}
	b.balance[bus][block] = append(b.balance[bus][block], t)
}

// capacityFactors returns the per-block mean capacity factor of a
// generator, or nil when the carrier dispatches freely.
func (b *builder) capacityFactors(gen network.Generator) ([]float64, error) {
	prof, ok := b.in.Profiles[gen.Carrier]
	if !ok {
		return nil, nil
	}
	bus, _ := b.in.Net.Bus(gen.Bus)
	series := prof.AtCoordinate(bus.X, bus.Y)
	if series == nil {
		// No eligible site near this bus: the carrier cannot produce here.
		return make([]float64, b.blocks), nil
	}
	return b.in.Agg.Mean(series)
}

func (b *builder) addGenerators() error {
	for _, gen := range b.in.Net.Generators {
		cf, err := b.capacityFactors(gen)
		if err != nil {
			return err
		}

		capVar := -1
		if gen.Extendable {
			capVar = b.p.AddVariable(CapacityVariable(gen.ID), gen.PNom, Inf(), gen.CapitalCost*b.share)
		}

		for t := 0; t < b.blocks; t++ {
			upper := Inf()
			if !gen.Extendable {
				upper = gen.PNom
				if cf != nil {
					upper = gen.PNom * cf[t]
				}
			}
			v := b.p.AddVariable(dispatchVarName(gen.ID, t), 0, upper, gen.MarginalCost*b.weights[t])
			b.addBalanceTerm(gen.Bus, t, Term{Var: v, Coeff: 1})

			if gen.Extendable {
				factor := 1.0
				if cf != nil {
					factor = cf[t]
				}
				b.p.AddConstraint(
					fmt.Sprintf("cap %s %d", gen.ID, t),
					[]Term{{Var: v, Coeff: 1}, {Var: capVar, Coeff: -factor}},
					LessEq, 0)
			}
		}
	}
	return nil
}

func (b *builder) addLines() {
	for _, line := range b.in.Net.Lines {
		rating := b.lineRating(line)
		for t := 0; t < b.blocks; t++ {
			v := b.p.AddVariable(flowVarName(line.ID, t), -rating[t], rating[t], 0)
			b.addBalanceTerm(line.From, t, Term{Var: v, Coeff: -1})
			b.addBalanceTerm(line.To, t, Term{Var: v, Coeff: 1})
		}
	}
}

// lineRating reduces a line's rating series to per-block means, falling
// back to the static nominal rating when no series was computed for it.
func (b *builder) lineRating(line network.Line) []float64 {
	if b.in.Ratings != nil {
		if series, ok := b.in.Ratings.Ratings[line.ID]; ok {
			if blocks, err := b.in.Agg.Mean(series); err == nil {
				return blocks
			}
		}
	}
	out := make([]float64, b.blocks)
	for i := range out {
		out[i] = line.SNom
	}
	return out
}

func (b *builder) addLinks() {
	for _, link := range b.in.Net.Links {
		eff := link.Efficiency
		if eff <= 0 {
			eff = 1
		}
		for t := 0; t < b.blocks; t++ {
			v := b.p.AddVariable(flowVarName(link.ID, t), -link.PNom, link.PNom, 0)
			b.addBalanceTerm(link.From, t, Term{Var: v, Coeff: -1})
			b.addBalanceTerm(link.To, t, Term{Var: v, Coeff: eff})
		}
	}
}

func (b *builder) addStorage() error {
	for _, su := range b.in.Net.StorageUnits {
		effStore := su.EfficiencyStore
		if effStore <= 0 {
			effStore = 1
		}
		effDispatch := su.EfficiencyDispatch
		if effDispatch <= 0 {
			effDispatch = 1
		}

		capVar := -1
		if su.Extendable {
			capVar = b.p.AddVariable(CapacityVariable(su.ID), su.PNom, Inf(), su.CapitalCost*b.share)
		}

		charge := make([]int, b.blocks)
		dispatch := make([]int, b.blocks)
		soc := make([]int, b.blocks)
		for t := 0; t < b.blocks; t++ {
			powerBound := Inf()
			energyBound := Inf()
			if !su.Extendable {
				powerBound = su.PNom
				energyBound = su.PNom * su.MaxHours
			}
			charge[t] = b.p.AddVariable(chargeVarName(su.ID, t), 0, powerBound, 0)
			dispatch[t] = b.p.AddVariable(dispatchVarName(su.ID, t), 0, powerBound, su.MarginalCost*b.weights[t])
			soc[t] = b.p.AddVariable(socVarName(su.ID, t), 0, energyBound, 0)

			b.addBalanceTerm(su.Bus, t, Term{Var: dispatch[t], Coeff: 1})
			b.addBalanceTerm(su.Bus, t, Term{Var: charge[t], Coeff: -1})

			if su.Extendable {
				b.p.AddConstraint(
					fmt.Sprintf("cap store %s %d", su.ID, t),
					[]Term{{Var: charge[t], Coeff: 1}, {Var: capVar, Coeff: -1}},
					LessEq, 0)
				b.p.AddConstraint(
					fmt.Sprintf("cap dispatch %s %d", su.ID, t),
					[]Term{{Var: dispatch[t], Coeff: 1}, {Var: capVar, Coeff: -1}},
					LessEq, 0)
				b.p.AddConstraint(
					fmt.Sprintf("cap soc %s %d", su.ID, t),
					[]Term{{Var: soc[t], Coeff: 1}, {Var: capVar, Coeff: -su.MaxHours}},
					LessEq, 0)
			}
		}

		// State-of-charge chaining with cyclic closure: the first block
		// continues from the last, so the horizon is energy-neutral.
		for t := 0; t < b.blocks; t++ {
			prev := (t - 1 + b.blocks) % b.blocks
			b.p.AddConstraint(
				fmt.Sprintf("soc bal %s %d", su.ID, t),
				[]Term{
					{Var: soc[t], Coeff: 1},
					{Var: soc[prev], Coeff: -1},
					{Var: charge[t], Coeff: -b.weights[t] * effStore},
					{Var: dispatch[t], Coeff: b.weights[t] / effDispatch},
				},
				Equal, 0)
		}
	}
	return nil
}

func (b *builder) addBalances() error {
	demand := map[string][]float64{}
	for _, load := range b.in.Net.Loads {
		blocks, err := b.in.Agg.Mean(load.Series)
		if err != nil {
			return err
		}
		if demand[load.Bus] == nil {
			demand[load.Bus] = make([]float64, b.blocks)
		}
		for t, v := range blocks {
			demand[load.Bus][t] += v
		}
	}

	for _, bus := range b.in.Net.Buses {
		terms := b.balance[bus.ID]
		for t := 0; t < b.blocks; t++ {
			var rhs float64
			if d := demand[bus.ID]; d != nil {
				rhs = d[t]
			}
			var blockTerms []Term
			if terms != nil {
				blockTerms = terms[t]
			}
			if len(blockTerms) == 0 && rhs == 0 {
				continue
			}
			b.p.AddConstraint(
				fmt.Sprintf("balance %s %d", bus.ID, t),
				blockTerms, Equal, rhs)
		}
	}
	return nil
}

func (b *builder) addEmissionCap() {
	if !b.in.CO2LimitEnable {
		return
	}
	var terms []Term
	for _, gen := range b.in.Net.Generators {
		carrier, ok := b.in.Net.Carriers[gen.Carrier]
		if !ok || carrier.CO2Emissions == 0 {
			continue
		}
		for t := 0; t < b.blocks; t++ {
			v, ok := b.p.VariableIndex(dispatchVarName(gen.ID, t))
			if !ok {
				continue
			}
			terms = append(terms, Term{Var: v, Coeff: carrier.CO2Emissions * b.weights[t]})
		}
	}
	if len(terms) == 0 {
		return
	}
	b.p.AddConstraint("co2 cap", terms, LessEq, b.in.CO2Limit)
}

// checkReachability verifies that every bus with nonzero demand can reach
// at least one generator or storage unit over lines and links.
func checkReachability(net *network.Network) error {
	adjacency := map[string][]string{}
	addEdge := func(a, b string) {
		adjacency[a] = append(adjacency[a], b)
		adjacency[b] = append(adjacency[b], a)
	}
	for _, line := range net.Lines {
		addEdge(line.From, line.To)
	}
	for _, link := range net.Links {
		addEdge(link.From, link.To)
	}

	supplied := map[string]bool{}
	for _, gen := range net.Generators {
		supplied[gen.Bus] = true
	}
	for _, su := range net.StorageUnits {
		supplied[su.Bus] = true
	}

	for _, load := range net.Loads {
		var peak float64
		for _, v := range load.Series {
			if v > peak {
				peak = v
			}
		}
		if peak == 0 {
			continue
		}
		if !reaches(load.Bus, adjacency, supplied) {
			return &InfeasibleModelError{Bus: load.Bus}
		}
	}
	return nil
}

func reaches(start string, adjacency map[string][]string, supplied map[string]bool) bool {
	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		bus := queue[0]
		queue = queue[1:]
		if supplied[bus] {
			return true
		}
		for _, next := range adjacency[bus] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}
