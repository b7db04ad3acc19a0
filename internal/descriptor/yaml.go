package descriptor

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/vk/gridcap/internal/ctxlog"
	"github.com/vk/gridcap/internal/scenario"
)

// YAMLLoader is the YAML-specific implementation of the Loader interface.
// The accepted document shape follows the upstream energy-system tooling
// (countries / snapshots / electricity / atlite / renewable / clustering /
// lines / solving / scenario top-level keys).
type YAMLLoader struct{}

// NewYAMLLoader creates a new YAML descriptor loader.
func NewYAMLLoader() *YAMLLoader {
	return &YAMLLoader{}
}

type yamlRoot struct {
	Countries   []string                `yaml:"countries"`
	Snapshots   yamlWindow              `yaml:"snapshots"`
	Electricity yamlElectricity         `yaml:"electricity"`
	Atlite      yamlAtlite              `yaml:"atlite"`
	Renewable   map[string]yamlRenSpec  `yaml:"renewable"`
	Clustering  yamlClustering          `yaml:"clustering"`
	Lines       yamlLines               `yaml:"lines"`
	Solving     yamlSolving             `yaml:"solving"`
	Scenario    yamlScenario            `yaml:"scenario"`
}

type yamlWindow struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type yamlElectricity struct {
	CO2LimitEnable     bool                `yaml:"co2limit_enable"`
	CO2Limit           float64             `yaml:"co2limit"`
	ExtendableCarriers map[string][]string `yaml:"extendable_carriers"`
	RenewableCarriers  []string            `yaml:"renewable_carriers"`
	PowerPlantsFilter  *yamlPlantFilter    `yaml:"powerplants_filter"`
	CustomPowerPlants  bool                `yaml:"custom_powerplants"`
}

type yamlPlantFilter struct {
	Countries           []string `yaml:"countries"`
	MinYearCommissioned int      `yaml:"min_year_commissioned"`
}

type yamlAtlite struct {
	Cutouts map[string]yamlCutout `yaml:"cutouts"`
}

type yamlCutout struct {
	Module string    `yaml:"module"`
	X      []float64 `yaml:"x"`
	Y      []float64 `yaml:"y"`
	Time   []string  `yaml:"time"`
}

type yamlRenSpec struct {
	Cutout string `yaml:"cutout"`
	// Depth bounds are false or a number in the upstream form.
	MinDepth interface{} `yaml:"min_depth"`
	MaxDepth interface{} `yaml:"max_depth"`
}

type yamlClustering struct {
	ExcludeCarriers []string     `yaml:"exclude_carriers"`
	Temporal        yamlTemporal `yaml:"temporal"`
}

type yamlTemporal struct {
	ResolutionElec string `yaml:"resolution_elec"`
}

type yamlLines struct {
	DynamicLineRating yamlDLR `yaml:"dynamic_line_rating"`
}

type yamlDLR struct {
	Activate      bool    `yaml:"activate"`
	Cutout        string  `yaml:"cutout"`
	MaxLineRating float64 `yaml:"max_line_rating"`
}

type yamlSolving struct {
	Solver         yamlSolver   `yaml:"solver"`
	CheckObjective yamlCheckObj `yaml:"check_objective"`
}

type yamlSolver struct {
	Name    string `yaml:"name"`
	Options string `yaml:"options"`
}

type yamlCheckObj struct {
	Enable        bool    `yaml:"enable"`
	ExpectedValue float64 `yaml:"expected_value"`
	RelTolerance  float64 `yaml:"rel_tolerance"`
}

type yamlScenario struct {
	Clusters []int    `yaml:"clusters"`
	Opts     []string `yaml:"opts"`
}

// Load parses and translates one YAML scenario descriptor.
func (l *YAMLLoader) Load(ctx context.Context, path string) (*scenario.Config, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML descriptor loader started.", "path", path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor %s: %w", path, err)
	}

	var root yamlRoot
	if err := yaml.UnmarshalStrict(raw, &root); err != nil {
		return nil, fmt.Errorf("failed to decode YAML descriptor %s: %w", path, err)
	}

	cfg, err := l.translate(&root)
	if err != nil {
		return nil, err
	}
	logger.Debug("YAML descriptor loaded.",
		"countries", len(cfg.Countries), "cutouts", len(cfg.Cutouts), "renewables", len(cfg.Renewables))
	return cfg, nil
}

// translate converts the YAML schema structs into the agnostic model.
func (l *YAMLLoader) translate(root *yamlRoot) (*scenario.Config, error) {
	cfg := &scenario.Config{
		Countries:  root.Countries,
		Cutouts:    map[string]scenario.CutoutSpec{},
		Renewables: map[string]scenario.RenewableSpec{},
	}

	var err error
	if cfg.Snapshots, err = translateWindow("snapshots", root.Snapshots.Start, root.Snapshots.End); err != nil {
		return nil, err
	}

	cfg.Electricity = scenario.Electricity{
		CO2LimitEnable:     root.Electricity.CO2LimitEnable,
		CO2Limit:           root.Electricity.CO2Limit,
		ExtendableCarriers: root.Electricity.ExtendableCarriers,
		RenewableCarriers:  root.Electricity.RenewableCarriers,
		CustomPowerPlants:  root.Electricity.CustomPowerPlants,
	}
	if f := root.Electricity.PowerPlantsFilter; f != nil {
		cfg.Electricity.PowerPlantsFilter = &scenario.PlantFilter{
			Countries:           f.Countries,
			MinYearCommissioned: f.MinYearCommissioned,
		}
	}

	for name, cut := range root.Atlite.Cutouts {
		key := "atlite.cutouts." + name
		if len(cut.X) != 2 || len(cut.Y) != 2 || len(cut.Time) != 2 {
			return nil, &scenario.ConfigurationError{Key: key, Reason: "x, y and time must each hold exactly two values"}
		}
		window, err := translateWindow(key+".time", cut.Time[0], cut.Time[1])
		if err != nil {
			return nil, err
		}
		cfg.Cutouts[name] = scenario.CutoutSpec{
			Module: cut.Module,
			XMin:   cut.X[0], XMax: cut.X[1],
			YMin: cut.Y[0], YMax: cut.Y[1],
			Time: window,
		}
	}

	for tech, spec := range root.Renewable {
		key := "renewable." + tech
		minDepth, err := depthFromYAML(key+".min_depth", spec.MinDepth)
		if err != nil {
			return nil, err
		}
		maxDepth, err := depthFromYAML(key+".max_depth", spec.MaxDepth)
		if err != nil {
			return nil, err
		}
		cfg.Renewables[tech] = scenario.RenewableSpec{
			Cutout:   spec.Cutout,
			MinDepth: minDepth,
			MaxDepth: maxDepth,
		}
	}

	cfg.Clustering = scenario.ClusteringSpec{
		ExcludeCarriers: root.Clustering.ExcludeCarriers,
		Temporal:        scenario.TemporalSpec{ResolutionElec: root.Clustering.Temporal.ResolutionElec},
	}

	cfg.Lines.DynamicLineRating = scenario.DynamicLineRatingSpec{
		Activate:      root.Lines.DynamicLineRating.Activate,
		Cutout:        root.Lines.DynamicLineRating.Cutout,
		MaxLineRating: root.Lines.DynamicLineRating.MaxLineRating,
	}

	cfg.Solving = scenario.SolvingSpec{
		Solver: scenario.SolverSpec{
			Name:    root.Solving.Solver.Name,
			Options: root.Solving.Solver.Options,
		},
		CheckObjective: scenario.CheckObjectiveSpec{
			Enable:        root.Solving.CheckObjective.Enable,
			ExpectedValue: root.Solving.CheckObjective.ExpectedValue,
			RelTolerance:  root.Solving.CheckObjective.RelTolerance,
		},
	}

	cfg.Scenario = scenario.Axes{Clusters: root.Scenario.Clusters, Opts: root.Scenario.Opts}

	return cfg, nil
}

// depthFromYAML interprets a depth bound that may be absent, false, or a
// number. A value of false (the upstream convention) means "no constraint".
func depthFromYAML(key string, raw interface{}) (*float64, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case bool:
		if v {
			return nil, &scenario.ConfigurationError{Key: key, Reason: "true is not a valid depth bound"}
		}
		return nil, nil
	case int:
		depth := float64(v)
		return &depth, nil
	case float64:
		return &v, nil
	default:
		return nil, &scenario.ConfigurationError{Key: key, Reason: fmt.Sprintf("expected a number or false, got %T", raw)}
	}
}
