package descriptor

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/gridcap/internal/ctxlog"
	"github.com/vk/gridcap/internal/scenario"
)

// HCLLoader is the HCL-specific implementation of the Loader interface.
type HCLLoader struct{}

// NewHCLLoader creates a new HCL descriptor loader.
func NewHCLLoader() *HCLLoader {
	return &HCLLoader{}
}

// hclRoot mirrors the top-level structure of a scenario descriptor file.
type hclRoot struct {
	Countries   []string        `hcl:"countries"`
	Snapshots   *hclWindow      `hcl:"snapshots,block"`
	Electricity *hclElectricity `hcl:"electricity,block"`
	Cutouts     []*hclCutout    `hcl:"cutout,block"`
	Renewables  []*hclRenewable `hcl:"renewable,block"`
	Clustering  *hclClustering  `hcl:"clustering,block"`
	Lines       *hclLines       `hcl:"lines,block"`
	Solving     *hclSolving     `hcl:"solving,block"`
	Scenario    *hclScenario    `hcl:"scenario,block"`
}

type hclWindow struct {
	Start string `hcl:"start"`
	End   string `hcl:"end"`
}

type hclElectricity struct {
	CO2LimitEnable     bool            `hcl:"co2limit_enable,optional"`
	CO2Limit           float64         `hcl:"co2limit,optional"`
	ExtendableCarriers *hclBodyHolder  `hcl:"extendable_carriers,block"`
	RenewableCarriers  []string        `hcl:"renewable_carriers,optional"`
	PowerPlantsFilter  *hclPlantFilter `hcl:"powerplants_filter,block"`
	CustomPowerPlants  bool            `hcl:"custom_powerplants,optional"`
}

// hclBodyHolder captures a block whose attribute names are user-chosen
// (asset classes in extendable_carriers). The attributes are pulled out via
// cty after the structural decode.
type hclBodyHolder struct {
	Remain hcl.Body `hcl:",remain"`
}

type hclPlantFilter struct {
	Countries           []string `hcl:"countries,optional"`
	MinYearCommissioned int      `hcl:"min_year_commissioned,optional"`
}

type hclCutout struct {
	Name   string    `hcl:"name,label"`
	Module string    `hcl:"module"`
	X      []float64 `hcl:"x"`
	Y      []float64 `hcl:"y"`
	Time   []string  `hcl:"time"`
}

type hclRenewable struct {
	Tech     string         `hcl:"tech,label"`
	Cutout   string         `hcl:"cutout"`
	MinDepth hcl.Expression `hcl:"min_depth,optional"`
	MaxDepth hcl.Expression `hcl:"max_depth,optional"`
}

type hclClustering struct {
	ExcludeCarriers []string     `hcl:"exclude_carriers,optional"`
	Temporal        *hclTemporal `hcl:"temporal,block"`
}

type hclTemporal struct {
	ResolutionElec string `hcl:"resolution_elec"`
}

type hclLines struct {
	DynamicLineRating *hclDLR `hcl:"dynamic_line_rating,block"`
}

type hclDLR struct {
	Activate      bool    `hcl:"activate,optional"`
	Cutout        string  `hcl:"cutout,optional"`
	MaxLineRating float64 `hcl:"max_line_rating,optional"`
}

type hclSolving struct {
	Solver         *hclSolver         `hcl:"solver,block"`
	CheckObjective *hclCheckObjective `hcl:"check_objective,block"`
}

type hclSolver struct {
	Name    string `hcl:"name"`
	Options string `hcl:"options,optional"`
}

type hclCheckObjective struct {
	Enable        bool    `hcl:"enable,optional"`
	ExpectedValue float64 `hcl:"expected_value,optional"`
	RelTolerance  float64 `hcl:"rel_tolerance,optional"`
}

type hclScenario struct {
	Clusters []int    `hcl:"clusters"`
	Opts     []string `hcl:"opts"`
}

// Load parses and translates one HCL scenario descriptor.
func (l *HCLLoader) Load(ctx context.Context, path string) (*scenario.Config, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL descriptor loader started.", "path", path)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL descriptor %s: %w", path, diags)
	}

	var root hclRoot
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL descriptor %s: %w", path, diags)
	}

	cfg, err := l.translate(&root)
	if err != nil {
		return nil, err
	}
	logger.Debug("HCL descriptor loaded.",
		"countries", len(cfg.Countries), "cutouts", len(cfg.Cutouts), "renewables", len(cfg.Renewables))
	return cfg, nil
}

// translate converts the HCL schema structs into the agnostic model.
func (l *HCLLoader) translate(root *hclRoot) (*scenario.Config, error) {
	cfg := &scenario.Config{
		Countries:  root.Countries,
		Cutouts:    map[string]scenario.CutoutSpec{},
		Renewables: map[string]scenario.RenewableSpec{},
	}

	if root.Snapshots == nil {
		return nil, &scenario.ConfigurationError{Key: "snapshots", Reason: "block is required"}
	}
	var err error
	if cfg.Snapshots, err = translateWindow("snapshots", root.Snapshots.Start, root.Snapshots.End); err != nil {
		return nil, err
	}

	if el := root.Electricity; el != nil {
		cfg.Electricity = scenario.Electricity{
			CO2LimitEnable:    el.CO2LimitEnable,
			CO2Limit:          el.CO2Limit,
			RenewableCarriers: el.RenewableCarriers,
			CustomPowerPlants: el.CustomPowerPlants,
		}
		if el.ExtendableCarriers != nil {
			carriers, err := extendableFromBody(el.ExtendableCarriers.Remain)
			if err != nil {
				return nil, err
			}
			cfg.Electricity.ExtendableCarriers = carriers
		}
		if f := el.PowerPlantsFilter; f != nil {
			cfg.Electricity.PowerPlantsFilter = &scenario.PlantFilter{
				Countries:           f.Countries,
				MinYearCommissioned: f.MinYearCommissioned,
			}
		}
	}

	for _, cut := range root.Cutouts {
		key := "atlite.cutouts." + cut.Name
		if len(cut.X) != 2 || len(cut.Y) != 2 || len(cut.Time) != 2 {
			return nil, &scenario.ConfigurationError{Key: key, Reason: "x, y and time must each hold exactly two values"}
		}
		window, err := translateWindow(key+".time", cut.Time[0], cut.Time[1])
		if err != nil {
			return nil, err
		}
		cfg.Cutouts[cut.Name] = scenario.CutoutSpec{
			Module: cut.Module,
			XMin:   cut.X[0], XMax: cut.X[1],
			YMin: cut.Y[0], YMax: cut.Y[1],
			Time: window,
		}
	}

	for _, ren := range root.Renewables {
		key := "renewable." + ren.Tech
		minDepth, err := depthFromExpr(key+".min_depth", ren.MinDepth)
		if err != nil {
			return nil, err
		}
		maxDepth, err := depthFromExpr(key+".max_depth", ren.MaxDepth)
		if err != nil {
			return nil, err
		}
		cfg.Renewables[ren.Tech] = scenario.RenewableSpec{
			Cutout:   ren.Cutout,
			MinDepth: minDepth,
			MaxDepth: maxDepth,
		}
	}

	if cl := root.Clustering; cl != nil {
		cfg.Clustering.ExcludeCarriers = cl.ExcludeCarriers
		if cl.Temporal != nil {
			cfg.Clustering.Temporal.ResolutionElec = cl.Temporal.ResolutionElec
		}
	}

	if root.Lines != nil && root.Lines.DynamicLineRating != nil {
		dlr := root.Lines.DynamicLineRating
		cfg.Lines.DynamicLineRating = scenario.DynamicLineRatingSpec{
			Activate:      dlr.Activate,
			Cutout:        dlr.Cutout,
			MaxLineRating: dlr.MaxLineRating,
		}
	}

	if s := root.Solving; s != nil {
		if s.Solver != nil {
			cfg.Solving.Solver = scenario.SolverSpec{Name: s.Solver.Name, Options: s.Solver.Options}
		}
		if s.CheckObjective != nil {
			cfg.Solving.CheckObjective = scenario.CheckObjectiveSpec{
				Enable:        s.CheckObjective.Enable,
				ExpectedValue: s.CheckObjective.ExpectedValue,
				RelTolerance:  s.CheckObjective.RelTolerance,
			}
		}
	}

	if root.Scenario == nil {
		return nil, &scenario.ConfigurationError{Key: "scenario", Reason: "block is required"}
	}
	cfg.Scenario = scenario.Axes{Clusters: root.Scenario.Clusters, Opts: root.Scenario.Opts}

	return cfg, nil
}

// translateWindow parses a (start, end) timestamp pair.
func translateWindow(key, start, end string) (scenario.SnapshotWindow, error) {
	startT, err := parseDate(key+".start", start)
	if err != nil {
		return scenario.SnapshotWindow{}, err
	}
	endT, err := parseDate(key+".end", end)
	if err != nil {
		return scenario.SnapshotWindow{}, err
	}
	return scenario.SnapshotWindow{Start: startT, End: endT}, nil
}

// extendableFromBody pulls the asset-class attributes out of the
// extendable_carriers block. The attribute names are user data, so the block
// is decoded into a remain body and read back through cty.
func extendableFromBody(body hcl.Body) (map[string][]string, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to read extendable_carriers: %w", diags)
	}

	out := make(map[string][]string, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate extendable_carriers.%s: %w", name, diags)
		}
		listVal, err := convert.Convert(val, cty.List(cty.String))
		if err != nil {
			return nil, &scenario.ConfigurationError{
				Key:    "electricity.extendable_carriers." + name,
				Reason: "expected a list of carrier names",
			}
		}
		var carriers []string
		for it := listVal.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			carriers = append(carriers, elem.AsString())
		}
		out[name] = carriers
	}
	return out, nil
}

// depthFromExpr evaluates an optional depth bound. Absent attributes and a
// literal false both mean "no constraint".
func depthFromExpr(key string, expr hcl.Expression) (*float64, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to evaluate %s: %w", key, diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	if val.Type() == cty.Bool {
		if val.True() {
			return nil, &scenario.ConfigurationError{Key: key, Reason: "true is not a valid depth bound"}
		}
		return nil, nil
	}
	numVal, err := convert.Convert(val, cty.Number)
	if err != nil {
		return nil, &scenario.ConfigurationError{Key: key, Reason: "expected a number or false"}
	}
	depth, _ := numVal.AsBigFloat().Float64()
	return &depth, nil
}
