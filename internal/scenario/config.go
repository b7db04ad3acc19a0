package scenario

import (
	"time"
)

// Config is the immutable scenario descriptor model. It is populated by a
// descriptor.Loader and never mutated after Validate has passed.
type Config struct {
	// Countries restricts the base network to these region codes (ISO-3166
	// alpha-2, e.g. "BE").
	Countries []string

	// Snapshots is the half-open model horizon [Start, End).
	Snapshots SnapshotWindow

	Electricity Electricity
	Cutouts     map[string]CutoutSpec
	Renewables  map[string]RenewableSpec
	Clustering  ClusteringSpec
	Lines       LinesSpec
	Solving     SolvingSpec

	// Scenario holds the axes that are cross-producted into run instances.
	Scenario Axes
}

// SnapshotWindow is the model time horizon at native (hourly) resolution.
type SnapshotWindow struct {
	Start time.Time
	End   time.Time
}

// Snapshots returns the hourly timestamps covered by the window.
func (w SnapshotWindow) Snapshots() []time.Time {
	var out []time.Time
	for t := w.Start; t.Before(w.End); t = t.Add(time.Hour) {
		out = append(out, t)
	}
	return out
}

// Electricity groups the technology-eligibility settings.
type Electricity struct {
	CO2LimitEnable bool
	CO2Limit       float64

	// ExtendableCarriers maps an asset class ("Generator", "StorageUnit",
	// "Store", "Line", "Link") to the carriers whose installed capacity the
	// optimizer may expand.
	ExtendableCarriers map[string][]string

	RenewableCarriers []string

	// PowerPlantsFilter restricts which conventional plants from the roster
	// are attached to the network. Nil means no filtering.
	PowerPlantsFilter *PlantFilter

	// CustomPowerPlants enables amending the roster with user-provided
	// entries.
	CustomPowerPlants bool
}

// PlantFilter is a declarative filter over the conventional plant roster.
type PlantFilter struct {
	// Countries, when non-empty, keeps only plants in these region codes.
	Countries []string
	// MinYearCommissioned, when nonzero, drops plants commissioned earlier.
	MinYearCommissioned int
}

// CutoutSpec names a gridded weather dataset and its envelope.
type CutoutSpec struct {
	// Module identifies the upstream climate data source (e.g. "era5").
	Module string
	XMin   float64
	XMax   float64
	YMin   float64
	YMax   float64
	Time   SnapshotWindow
}

// Covers reports whether the cutout's time range contains the window.
func (c CutoutSpec) Covers(w SnapshotWindow) bool {
	return !c.Time.Start.After(w.Start) && !c.Time.End.Before(w.End)
}

// Contains reports whether a coordinate lies inside the spatial envelope.
func (c CutoutSpec) Contains(x, y float64) bool {
	return x >= c.XMin && x <= c.XMax && y >= c.YMin && y <= c.YMax
}

// RenewableSpec holds per-technology siting constraints. Depth bounds are
// pointers: nil means unconstrained, matching a descriptor value of false.
type RenewableSpec struct {
	Cutout   string
	MinDepth *float64
	MaxDepth *float64
}

// ClusteringSpec parameterizes spatial and temporal reduction.
type ClusteringSpec struct {
	// ExcludeCarriers lists carriers whose assets keep their original bus
	// during spatial clustering.
	ExcludeCarriers []string
	Temporal        TemporalSpec
}

// TemporalSpec names the target snapshot resolution, e.g. "24H".
type TemporalSpec struct {
	ResolutionElec string
}

// LinesSpec holds transmission line settings.
type LinesSpec struct {
	DynamicLineRating DynamicLineRatingSpec
}

// DynamicLineRatingSpec configures weather-dependent line ratings.
type DynamicLineRatingSpec struct {
	Activate      bool
	Cutout        string
	MaxLineRating float64
}

// SolvingSpec selects the solver and the post-solve objective check.
type SolvingSpec struct {
	Solver         SolverSpec
	CheckObjective CheckObjectiveSpec
}

// SolverSpec names the external solver and one of its option presets.
type SolverSpec struct {
	Name    string
	Options string
}

// CheckObjectiveSpec is the opt-in regression gate on the objective value.
type CheckObjectiveSpec struct {
	Enable        bool
	ExpectedValue float64
	// RelTolerance defaults to 1e-6 when zero.
	RelTolerance float64
}

// Tolerance returns the effective relative tolerance.
func (c CheckObjectiveSpec) Tolerance() float64 {
	if c.RelTolerance > 0 {
		return c.RelTolerance
	}
	return 1e-6
}

// Axes are the scenario dimensions expanded into independent instances.
type Axes struct {
	Clusters []int
	Opts     []string
}

// ExcludeCarrierSet returns the clustering exclusion set for O(1) lookup.
func (c *Config) ExcludeCarrierSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Clustering.ExcludeCarriers))
	for _, carrier := range c.Clustering.ExcludeCarriers {
		set[carrier] = struct{}{}
	}
	return set
}

// RenewableCarrierSet returns the renewable carriers for O(1) lookup.
func (c *Config) RenewableCarrierSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Electricity.RenewableCarriers))
	for _, carrier := range c.Electricity.RenewableCarriers {
		set[carrier] = struct{}{}
	}
	return set
}

// ExtendableSet returns the extendable carriers for one asset class.
func (c *Config) ExtendableSet(assetClass string) map[string]struct{} {
	carriers := c.Electricity.ExtendableCarriers[assetClass]
	set := make(map[string]struct{}, len(carriers))
	for _, carrier := range carriers {
		set[carrier] = struct{}{}
	}
	return set
}

// CountrySet returns the configured countries for O(1) lookup.
func (c *Config) CountrySet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Countries))
	for _, country := range c.Countries {
		set[country] = struct{}{}
	}
	return set
}
