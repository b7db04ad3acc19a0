package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/gridcap/internal/cutout"
	"github.com/vk/gridcap/internal/scenario"
	"github.com/vk/gridcap/internal/testutil"
)

func exampleStore(t *testing.T) (*cutout.Store, *scenario.Config) {
	t.Helper()
	cfg := testutil.ExampleConfig()
	store, err := cutout.NewStore(context.Background(), cfg, "")
	require.NoError(t, err)
	return store, cfg
}

func TestGenerateOnwindProfile(t *testing.T) {
	store, cfg := exampleStore(t)

	prof, err := Generate(context.Background(), "onwind", cfg.Renewables["onwind"], store, cfg.Snapshots)
	require.NoError(t, err)
	require.NotEmpty(t, prof.Sites)

	snapshots := len(cfg.Snapshots.Snapshots())
	for i, series := range prof.CapacityFactors {
		require.Len(t, series, snapshots)
		for _, cf := range series {
			require.GreaterOrEqual(t, cf, 0.0, "site %d", i)
			require.LessOrEqual(t, cf, 1.0, "site %d", i)
		}
	}

	// Onshore sites are land cells only.
	for _, site := range prof.Sites {
		require.Zero(t, site.Depth)
	}
}

func TestGenerateOffshoreRespectsDepthBounds(t *testing.T) {
	store, cfg := exampleStore(t)

	prof, err := Generate(context.Background(), "offwind-ac", cfg.Renewables["offwind-ac"], store, cfg.Snapshots)
	require.NoError(t, err)

	for _, site := range prof.Sites {
		require.Positive(t, site.Depth)
		require.LessOrEqual(t, site.Depth, 50.0)
	}
}

func TestGenerateUndefinedCutoutFails(t *testing.T) {
	store, cfg := exampleStore(t)

	_, err := Generate(context.Background(), "onwind", scenario.RenewableSpec{Cutout: "missing"}, store, cfg.Snapshots)
	var confErr *scenario.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	require.Equal(t, "renewable.onwind.cutout", confErr.Key)
}

func TestGenerateContradictoryDepthBoundsFail(t *testing.T) {
	store, cfg := exampleStore(t)

	lo, hi := 60.0, 50.0
	spec := scenario.RenewableSpec{Cutout: "be-03-2013-era5", MinDepth: &lo, MaxDepth: &hi}
	_, err := Generate(context.Background(), "offwind-ac", spec, store, cfg.Snapshots)
	var confErr *scenario.ConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func TestGenerateUnknownTechnologyFails(t *testing.T) {
	store, cfg := exampleStore(t)

	_, err := Generate(context.Background(), "geothermal", scenario.RenewableSpec{Cutout: "be-03-2013-era5"}, store, cfg.Snapshots)
	var confErr *scenario.ConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func TestSolarIsDarkAtNight(t *testing.T) {
	store, cfg := exampleStore(t)

	prof, err := Generate(context.Background(), "solar", cfg.Renewables["solar"], store, cfg.Snapshots)
	require.NoError(t, err)
	require.NotEmpty(t, prof.CapacityFactors)

	// Snapshot 0 is midnight on March 1st.
	for _, series := range prof.CapacityFactors {
		require.Zero(t, series[0])
	}
}

func TestAtCoordinatePicksNearestSite(t *testing.T) {
	store, cfg := exampleStore(t)

	prof, err := Generate(context.Background(), "onwind", cfg.Renewables["onwind"], store, cfg.Snapshots)
	require.NoError(t, err)

	series := prof.AtCoordinate(4.35, 50.85)
	require.NotNil(t, series)
	require.Len(t, series, len(cfg.Snapshots.Snapshots()))
}
