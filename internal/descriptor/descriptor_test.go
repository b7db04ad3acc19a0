package descriptor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/vk/gridcap/internal/scenario"
)

const exampleHCL = `
countries = ["BE"]

snapshots {
  start = "2013-03-01"
  end   = "2013-03-08"
}

electricity {
  co2limit_enable = true
  co2limit        = 100e6

  extendable_carriers {
    Generator   = ["OCGT"]
    StorageUnit = ["battery"]
  }

  renewable_carriers = ["onwind", "offwind-ac", "solar"]
}

cutout "be-03-2013-era5" {
  module = "era5"
  x      = [4.0, 15.0]
  y      = [46.0, 56.0]
  time   = ["2013-03-01", "2013-03-08"]
}

renewable "onwind" {
  cutout = "be-03-2013-era5"
}

renewable "offwind-ac" {
  cutout    = "be-03-2013-era5"
  max_depth = 50
}

renewable "solar" {
  cutout = "be-03-2013-era5"
}

clustering {
  exclude_carriers = []

  temporal {
    resolution_elec = "24H"
  }
}

lines {
  dynamic_line_rating {
    activate        = false
    cutout          = "be-03-2013-era5"
    max_line_rating = 1.3
  }
}

solving {
  solver {
    name    = "highs"
    options = "default"
  }

  check_objective {
    enable         = true
    expected_value = 3.8120188094e7
  }
}

scenario {
  clusters = [5]
  opts     = [""]
}
`

const exampleYAML = `
countries: [BE]

snapshots:
  start: "2013-03-01"
  end: "2013-03-08"

electricity:
  co2limit_enable: true
  co2limit: 100.e+6
  extendable_carriers:
    Generator: [OCGT]
    StorageUnit: [battery]
  renewable_carriers: [onwind, offwind-ac, solar]

atlite:
  cutouts:
    be-03-2013-era5:
      module: era5
      x: [4., 15.]
      y: [46., 56.]
      time: ["2013-03-01", "2013-03-08"]

renewable:
  onwind:
    cutout: be-03-2013-era5
  offwind-ac:
    cutout: be-03-2013-era5
    max_depth: 50
  solar:
    cutout: be-03-2013-era5

clustering:
  exclude_carriers: []
  temporal:
    resolution_elec: "24H"

lines:
  dynamic_line_rating:
    activate: false
    cutout: be-03-2013-era5
    max_line_rating: 1.3

solving:
  solver:
    name: highs
    options: default
  check_objective:
    enable: true
    expected_value: 38120188.094

scenario:
  clusters: [5]
  opts: ['']
`

func writeDescriptor(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadHCLDescriptor(t *testing.T) {
	path := writeDescriptor(t, "scenario.hcl", exampleHCL)

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)

	require.Equal(t, []string{"BE"}, cfg.Countries)
	require.Equal(t, 100e6, cfg.Electricity.CO2Limit)
	require.True(t, cfg.Electricity.CO2LimitEnable)
	require.ElementsMatch(t, []string{"OCGT"}, cfg.Electricity.ExtendableCarriers["Generator"])
	require.Contains(t, cfg.Cutouts, "be-03-2013-era5")
	require.Equal(t, "era5", cfg.Cutouts["be-03-2013-era5"].Module)

	offwind := cfg.Renewables["offwind-ac"]
	require.Nil(t, offwind.MinDepth)
	require.NotNil(t, offwind.MaxDepth)
	require.Equal(t, 50.0, *offwind.MaxDepth)

	require.Equal(t, "24H", cfg.Clustering.Temporal.ResolutionElec)
	require.Equal(t, "highs", cfg.Solving.Solver.Name)
	require.Equal(t, []int{5}, cfg.Scenario.Clusters)
	require.Equal(t, []string{""}, cfg.Scenario.Opts)
}

func TestLoadYAMLDescriptor(t *testing.T) {
	path := writeDescriptor(t, "scenario.yaml", exampleYAML)

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, []string{"BE"}, cfg.Countries)
	require.Equal(t, 1.3, cfg.Lines.DynamicLineRating.MaxLineRating)
}

// The two descriptor forms are alternative encodings of the same model, so
// equivalent files must decode to identical configs.
func TestHCLAndYAMLFormsAgree(t *testing.T) {
	hclCfg, err := Load(context.Background(), writeDescriptor(t, "scenario.hcl", exampleHCL))
	require.NoError(t, err)
	yamlCfg, err := Load(context.Background(), writeDescriptor(t, "scenario.yaml", exampleYAML))
	require.NoError(t, err)

	if diff := cmp.Diff(hclCfg, yamlCfg); diff != "" {
		t.Fatalf("descriptor forms disagree (-hcl +yaml):\n%s", diff)
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := writeDescriptor(t, "scenario.toml", "countries = [\"BE\"]")

	_, err := Load(context.Background(), path)
	var confErr *scenario.ConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func TestLoadRejectsInvalidDescriptor(t *testing.T) {
	// The cutout reference in renewable.onwind does not exist.
	broken := `
countries: [BE]
snapshots:
  start: "2013-03-01"
  end: "2013-03-08"
renewable:
  onwind:
    cutout: missing
solving:
  solver:
    name: highs
scenario:
  clusters: [5]
  opts: ['']
`
	_, err := Load(context.Background(), writeDescriptor(t, "scenario.yaml", broken))
	var confErr *scenario.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	require.Equal(t, "renewable.onwind.cutout", confErr.Key)
}

func TestDepthFalseMeansUnconstrained(t *testing.T) {
	doc := `
countries: [BE]
snapshots:
  start: "2013-03-01"
  end: "2013-03-08"
atlite:
  cutouts:
    cut:
      module: era5
      x: [4., 15.]
      y: [46., 56.]
      time: ["2013-03-01", "2013-03-08"]
renewable:
  onwind:
    cutout: cut
    max_depth: false
solving:
  solver:
    name: highs
scenario:
  clusters: [1]
  opts: ['']
`
	cfg, err := Load(context.Background(), writeDescriptor(t, "scenario.yaml", doc))
	require.NoError(t, err)
	require.Nil(t, cfg.Renewables["onwind"].MaxDepth)
}
