package scenario

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Instance is one element of the scenario cross-product. Each instance is
// built and solved independently of its siblings.
type Instance struct {
	// ID uniquely identifies the instance within the run.
	ID string
	// Name is the human-readable wildcard form, e.g. "elec_s_5_Co2L-24H".
	Name string

	Clusters int
	Opts     string

	// Overrides derived from the instance's option tags.
	CO2LimitEnable bool
	CO2Limit       float64
	Resolution     string
}

// optOverrides collects the effect of one option-tag string.
type optOverrides struct {
	co2Limit   *float64
	resolution string
}

// parseOpts interprets a scenario option-tag string. Tags are separated by
// "-". Recognized forms: "Co2L<float>" overrides the CO2 budget, "<n>H"
// overrides the temporal resolution. The empty string carries no overrides.
func parseOpts(opts string) (optOverrides, error) {
	var out optOverrides
	if opts == "" {
		return out, nil
	}
	for _, tag := range strings.Split(opts, "-") {
		switch {
		case strings.HasPrefix(tag, "Co2L"):
			limit, err := strconv.ParseFloat(tag[len("Co2L"):], 64)
			if err != nil {
				return out, &ConfigurationError{
					Key:    "scenario.opts",
					Reason: fmt.Sprintf("malformed CO2 limit tag %q", tag),
				}
			}
			out.co2Limit = &limit
		case strings.HasSuffix(tag, "H"):
			if _, err := strconv.Atoi(strings.TrimSuffix(tag, "H")); err != nil {
				return out, &ConfigurationError{
					Key:    "scenario.opts",
					Reason: fmt.Sprintf("malformed resolution tag %q", tag),
				}
			}
			out.resolution = tag
		default:
			return out, &ConfigurationError{
				Key:    "scenario.opts",
				Reason: fmt.Sprintf("unknown option tag %q", tag),
			}
		}
	}
	return out, nil
}

// Expand cross-products the scenario axes (cluster counts × option tags)
// into the ordered list of instances to build and solve. The config must
// have passed Validate.
func (c *Config) Expand() ([]*Instance, error) {
	var instances []*Instance
	for _, k := range c.Scenario.Clusters {
		for _, opts := range c.Scenario.Opts {
			overrides, err := parseOpts(opts)
			if err != nil {
				return nil, err
			}

			inst := &Instance{
				ID:             uuid.NewString(),
				Name:           instanceName(k, opts),
				Clusters:       k,
				Opts:           opts,
				CO2LimitEnable: c.Electricity.CO2LimitEnable,
				CO2Limit:       c.Electricity.CO2Limit,
				Resolution:     c.Clustering.Temporal.ResolutionElec,
			}
			if overrides.co2Limit != nil {
				inst.CO2LimitEnable = true
				inst.CO2Limit = *overrides.co2Limit
			}
			if overrides.resolution != "" {
				inst.Resolution = overrides.resolution
			}
			instances = append(instances, inst)
		}
	}
	return instances, nil
}

// instanceName renders the wildcard-style instance label.
func instanceName(clusters int, opts string) string {
	if opts == "" {
		return fmt.Sprintf("elec_s_%d", clusters)
	}
	return fmt.Sprintf("elec_s_%d_%s", clusters, opts)
}
