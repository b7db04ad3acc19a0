package scenario

import (
	"fmt"
)

// knownAssetClasses are the asset classes an extendable-carriers entry may name.
var knownAssetClasses = map[string]struct{}{
	"Generator":   {},
	"StorageUnit": {},
	"Store":       {},
	"Line":        {},
	"Link":        {},
}

// Validate cross-checks the loaded descriptor. It returns a
// *ConfigurationError naming the offending key on the first inconsistency
// found. A Config that passed Validate is safe to hand to every stage.
func (c *Config) Validate() error {
	if len(c.Countries) == 0 {
		return &ConfigurationError{Key: "countries", Reason: "at least one country is required"}
	}
	for _, country := range c.Countries {
		if len(country) != 2 {
			return &ConfigurationError{
				Key:    "countries",
				Reason: fmt.Sprintf("%q is not a two-letter region code", country),
			}
		}
	}

	if !c.Snapshots.Start.Before(c.Snapshots.End) {
		return &ConfigurationError{
			Key:    "snapshots",
			Reason: fmt.Sprintf("start %s is not before end %s", c.Snapshots.Start, c.Snapshots.End),
		}
	}

	if len(c.Scenario.Clusters) == 0 {
		return &ConfigurationError{Key: "scenario.clusters", Reason: "at least one cluster count is required"}
	}
	for _, k := range c.Scenario.Clusters {
		if k < 1 {
			return &ConfigurationError{
				Key:    "scenario.clusters",
				Reason: fmt.Sprintf("cluster count %d must be positive", k),
			}
		}
	}

	for class := range c.Electricity.ExtendableCarriers {
		if _, ok := knownAssetClasses[class]; !ok {
			return &ConfigurationError{
				Key:    "electricity.extendable_carriers",
				Reason: fmt.Sprintf("unknown asset class %q", class),
			}
		}
	}

	for name, spec := range c.Cutouts {
		key := "atlite.cutouts." + name
		if spec.XMin >= spec.XMax || spec.YMin >= spec.YMax {
			return &ConfigurationError{Key: key, Reason: "degenerate spatial envelope"}
		}
		if !spec.Time.Start.Before(spec.Time.End) {
			return &ConfigurationError{Key: key + ".time", Reason: "degenerate time range"}
		}
	}

	for tech, spec := range c.Renewables {
		key := "renewable." + tech
		cut, ok := c.Cutouts[spec.Cutout]
		if !ok {
			return &ConfigurationError{
				Key:    key + ".cutout",
				Reason: fmt.Sprintf("references undefined cutout %q", spec.Cutout),
			}
		}
		if !cut.Covers(c.Snapshots) {
			return &ConfigurationError{
				Key:    key + ".cutout",
				Reason: fmt.Sprintf("cutout %q does not cover the snapshot window", spec.Cutout),
			}
		}
		if spec.MinDepth != nil && spec.MaxDepth != nil && *spec.MinDepth >= *spec.MaxDepth {
			return &ConfigurationError{
				Key: key,
				Reason: fmt.Sprintf("contradictory depth bounds: min_depth %g >= max_depth %g",
					*spec.MinDepth, *spec.MaxDepth),
			}
		}
	}

	if dlr := c.Lines.DynamicLineRating; dlr.Activate {
		if _, ok := c.Cutouts[dlr.Cutout]; !ok {
			return &ConfigurationError{
				Key:    "lines.dynamic_line_rating.cutout",
				Reason: fmt.Sprintf("references undefined cutout %q", dlr.Cutout),
			}
		}
		if dlr.MaxLineRating < 1 {
			return &ConfigurationError{
				Key:    "lines.dynamic_line_rating.max_line_rating",
				Reason: fmt.Sprintf("multiplier %g must be at least 1", dlr.MaxLineRating),
			}
		}
	}

	if c.Solving.Solver.Name == "" {
		return &ConfigurationError{Key: "solving.solver.name", Reason: "solver name is required"}
	}
	if c.Solving.CheckObjective.Enable && c.Solving.CheckObjective.ExpectedValue == 0 {
		return &ConfigurationError{
			Key:    "solving.check_objective.expected_value",
			Reason: "objective check enabled without an expected value",
		}
	}

	// Option tags are parsed eagerly so a typo fails the run up front
	// instead of failing one instance mid-flight.
	for _, opt := range c.Scenario.Opts {
		if _, err := parseOpts(opt); err != nil {
			return err
		}
	}

	return nil
}
