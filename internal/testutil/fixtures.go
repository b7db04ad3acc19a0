// Package testutil provides shared fixtures and helpers for tests across
// the pipeline packages.
package testutil

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vk/gridcap/internal/network"
	"github.com/vk/gridcap/internal/scenario"
)

// ExampleConfig returns the reference scenario: Belgium, one week of March
// 2013, five clusters, CO2 budget 100 MtCO2, HiGHS.
func ExampleConfig() *scenario.Config {
	start := time.Date(2013, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2013, 3, 8, 0, 0, 0, 0, time.UTC)
	maxDepth := 50.0
	return &scenario.Config{
		Countries: []string{"BE"},
		Snapshots: scenario.SnapshotWindow{Start: start, End: end},
		Electricity: scenario.Electricity{
			CO2LimitEnable: true,
			CO2Limit:       100e6,
			ExtendableCarriers: map[string][]string{
				"Generator":   {"OCGT"},
				"StorageUnit": {"battery"},
			},
			RenewableCarriers: []string{"onwind", "offwind-ac", "solar"},
		},
		Cutouts: map[string]scenario.CutoutSpec{
			"be-03-2013-era5": {
				Module: "era5",
				XMin:   2.0, XMax: 7.0,
				YMin: 49.0, YMax: 52.0,
				Time: scenario.SnapshotWindow{Start: start, End: end},
			},
		},
		Renewables: map[string]scenario.RenewableSpec{
			"onwind":     {Cutout: "be-03-2013-era5"},
			"offwind-ac": {Cutout: "be-03-2013-era5", MaxDepth: &maxDepth},
			"solar":      {Cutout: "be-03-2013-era5"},
		},
		Clustering: scenario.ClusteringSpec{
			Temporal: scenario.TemporalSpec{ResolutionElec: "24H"},
		},
		Lines: scenario.LinesSpec{DynamicLineRating: scenario.DynamicLineRatingSpec{
			Activate:      false,
			Cutout:        "be-03-2013-era5",
			MaxLineRating: 1.3,
		}},
		Solving: scenario.SolvingSpec{
			Solver:         scenario.SolverSpec{Name: "highs", Options: "default"},
			CheckObjective: scenario.CheckObjectiveSpec{Enable: false},
		},
		Scenario: scenario.Axes{Clusters: []int{5}, Opts: []string{""}},
	}
}

// ExampleNetwork assembles the built-in base grid for the example scenario.
func ExampleNetwork(t *testing.T) *network.Network {
	t.Helper()
	net, err := network.Assemble(ExampleConfig(), network.AssembleOptions{})
	require.NoError(t, err)
	return net
}

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}
