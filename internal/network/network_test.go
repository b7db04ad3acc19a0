package network

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vk/gridcap/internal/scenario"
)

func beConfig() *scenario.Config {
	start := time.Date(2013, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2013, 3, 8, 0, 0, 0, 0, time.UTC)
	return &scenario.Config{
		Countries: []string{"BE"},
		Snapshots: scenario.SnapshotWindow{Start: start, End: end},
		Electricity: scenario.Electricity{
			ExtendableCarriers: map[string][]string{
				"Generator":   {"OCGT"},
				"StorageUnit": {"battery"},
			},
			RenewableCarriers: []string{"onwind", "solar"},
		},
		Scenario: scenario.Axes{Clusters: []int{5}, Opts: []string{""}},
	}
}

func TestAssembleRestrictsToCountries(t *testing.T) {
	net, err := Assemble(beConfig(), AssembleOptions{})
	require.NoError(t, err)

	for _, bus := range net.Buses {
		require.Equal(t, "BE", bus.Country)
	}
	require.Len(t, net.Buses, 7)

	// Cross-border lines are dropped with their foreign endpoint.
	for _, line := range net.Lines {
		_, fromOK := net.Bus(line.From)
		_, toOK := net.Bus(line.To)
		require.True(t, fromOK && toOK)
	}
}

func TestAssembleAttachesDemand(t *testing.T) {
	net, err := Assemble(beConfig(), AssembleOptions{})
	require.NoError(t, err)

	require.NotEmpty(t, net.Loads)
	require.Positive(t, net.TotalDemand())
	for _, load := range net.Loads {
		require.Len(t, load.Series, len(net.Snapshots))
	}
}

func TestAssembleCreatesInvestmentCandidates(t *testing.T) {
	net, err := Assemble(beConfig(), AssembleOptions{})
	require.NoError(t, err)

	counts := map[string]int{}
	for _, gen := range net.Generators {
		if gen.Extendable {
			counts[gen.Carrier]++
		} else {
			// Roster plants are never extendable.
			require.Positive(t, gen.PNom)
		}
	}
	// One candidate per bus for each renewable plus OCGT.
	require.Equal(t, len(net.Buses), counts["onwind"])
	require.Equal(t, len(net.Buses), counts["solar"])
	require.Equal(t, len(net.Buses), counts["OCGT"])

	require.Len(t, net.StorageUnits, len(net.Buses))
	for _, su := range net.StorageUnits {
		require.Equal(t, "battery", su.Carrier)
		require.True(t, su.Extendable)
	}
}

func TestAssembleUnknownCountryFails(t *testing.T) {
	cfg := beConfig()
	cfg.Countries = []string{"XX"}

	_, err := Assemble(cfg, AssembleOptions{})
	var confErr *scenario.ConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func TestAssembleFromCSVBase(t *testing.T) {
	dir := t.TempDir()
	buses := "id,country,x,y,peak_load\nA,BE,4.0,50.5,1000\nB,BE,5.0,51.0,500\nC,NL,5.0,52.0,800\n"
	lines := "id,from,to,s_nom\nL1,A,B,700\nL2,B,C,600\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "buses.csv"), []byte(buses), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lines.csv"), []byte(lines), 0o644))

	net, err := Assemble(beConfig(), AssembleOptions{BaseDir: dir})
	require.NoError(t, err)
	require.Len(t, net.Buses, 2)
	require.Len(t, net.Lines, 1) // L2 crosses into NL and is dropped
	require.Equal(t, "L1", net.Lines[0].ID)
	require.Positive(t, net.Lines[0].Length)
}

func TestRosterFilter(t *testing.T) {
	cfg := beConfig()
	cfg.Electricity.PowerPlantsFilter = &scenario.PlantFilter{MinYearCommissioned: 2000}

	net, err := Assemble(cfg, AssembleOptions{})
	require.NoError(t, err)
	for _, gen := range net.Generators {
		if gen.Extendable {
			continue
		}
		// The two BE nuclear plants (1983, 1985) and the 1998 OCGT must be gone.
		require.NotEqual(t, "nuclear", gen.Carrier)
	}
}

func TestCustomPlantsNearestBusAssignment(t *testing.T) {
	dir := t.TempDir()
	// A plant at Zeebrugge should land on the Bruges bus (BE5).
	roster := "name,country,carrier,capacity_mw,year,x,y\nZeebrugge CCGT,BE,CCGT,400,2017,3.20,51.33\n"
	path := filepath.Join(dir, "custom.csv")
	require.NoError(t, os.WriteFile(path, []byte(roster), 0o644))

	cfg := beConfig()
	cfg.Electricity.CustomPowerPlants = true
	net, err := Assemble(cfg, AssembleOptions{CustomPlantsCSV: path})
	require.NoError(t, err)

	var found bool
	for _, gen := range net.Generators {
		if gen.ID == "Zeebrugge CCGT" {
			found = true
			require.Equal(t, "BE5", gen.Bus)
		}
	}
	require.True(t, found)
}

func TestRosterAssignsToCSVBaseBuses(t *testing.T) {
	dir := t.TempDir()
	// Bus IDs deliberately absent from the built-in grid: the roster must be
	// sited onto the grid actually loaded.
	buses := "id,country,x,y,peak_load\nX0,BE,4.0,50.5,1000\nX1,BE,5.0,51.0,500\n"
	lines := "id,from,to,s_nom\nL1,X0,X1,700\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "buses.csv"), []byte(buses), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lines.csv"), []byte(lines), 0o644))

	roster := "name,country,carrier,capacity_mw,year,x,y\nHerdersbrug CCGT,BE,CCGT,460,1997,4.01,50.5\n"
	rosterPath := filepath.Join(dir, "plants.csv")
	require.NoError(t, os.WriteFile(rosterPath, []byte(roster), 0o644))

	net, err := Assemble(beConfig(), AssembleOptions{BaseDir: dir, PlantsCSV: rosterPath})
	require.NoError(t, err)

	var found bool
	for _, gen := range net.Generators {
		if gen.ID == "Herdersbrug CCGT" {
			found = true
			require.Equal(t, "X0", gen.Bus)
			require.InDelta(t, 460, gen.PNom, 1e-9)
		}
	}
	require.True(t, found, "roster plant missing from assembled network")
}

func TestHaversineParisLyon(t *testing.T) {
	dist := Haversine(2.35, 48.86, 4.83, 45.76)
	require.InDelta(t, 390, dist, 15)
}

func TestValidateCatchesDanglingReference(t *testing.T) {
	net, err := Assemble(beConfig(), AssembleOptions{})
	require.NoError(t, err)

	net.Generators = append(net.Generators, Generator{ID: "ghost", Bus: "nope", Carrier: "OCGT"})
	require.Error(t, net.Validate())
}
