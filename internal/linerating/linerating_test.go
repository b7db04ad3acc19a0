package linerating

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/gridcap/internal/cutout"
	"github.com/vk/gridcap/internal/scenario"
	"github.com/vk/gridcap/internal/testutil"
)

func TestDeactivatedYieldsStaticRatings(t *testing.T) {
	cfg := testutil.ExampleConfig()
	net := testutil.ExampleNetwork(t)
	store, err := cutout.NewStore(context.Background(), cfg, "")
	require.NoError(t, err)

	spec := scenario.DynamicLineRatingSpec{Activate: false}
	set, err := Compute(context.Background(), net, spec, store, cfg.Snapshots)
	require.NoError(t, err)
	require.Zero(t, set.StaticFallbacks)

	for _, line := range net.Lines {
		series := set.Ratings[line.ID]
		require.Len(t, series, len(cfg.Snapshots.Snapshots()))
		for _, rating := range series {
			require.Equal(t, line.SNom, rating)
		}
	}
}

func TestActiveRatingsStayWithinBounds(t *testing.T) {
	cfg := testutil.ExampleConfig()
	net := testutil.ExampleNetwork(t)
	store, err := cutout.NewStore(context.Background(), cfg, "")
	require.NoError(t, err)

	spec := cfg.Lines.DynamicLineRating
	spec.Activate = true
	set, err := Compute(context.Background(), net, spec, store, cfg.Snapshots)
	require.NoError(t, err)

	for _, line := range net.Lines {
		for _, rating := range set.Ratings[line.ID] {
			require.GreaterOrEqual(t, rating, line.SNom)
			require.LessOrEqual(t, rating, spec.MaxLineRating*line.SNom)
		}
	}
}

func TestLineOutsideEnvelopeFallsBackToStatic(t *testing.T) {
	cfg := testutil.ExampleConfig()
	net := testutil.ExampleNetwork(t)

	// Shift the cutout envelope far away from every line midpoint.
	far := cfg.Cutouts["be-03-2013-era5"]
	far.XMin, far.XMax = 30, 35
	far.YMin, far.YMax = 60, 63
	cfg.Cutouts["be-03-2013-era5"] = far

	store, err := cutout.NewStore(context.Background(), cfg, "")
	require.NoError(t, err)

	spec := cfg.Lines.DynamicLineRating
	spec.Activate = true
	set, err := Compute(context.Background(), net, spec, store, cfg.Snapshots)
	require.NoError(t, err)

	require.Equal(t, len(net.Lines), set.StaticFallbacks)
	for _, line := range net.Lines {
		for _, rating := range set.Ratings[line.ID] {
			require.Equal(t, line.SNom, rating)
		}
	}
}

func TestUndefinedCutoutFails(t *testing.T) {
	cfg := testutil.ExampleConfig()
	net := testutil.ExampleNetwork(t)
	store, err := cutout.NewStore(context.Background(), cfg, "")
	require.NoError(t, err)

	spec := scenario.DynamicLineRatingSpec{Activate: true, Cutout: "missing", MaxLineRating: 1.3}
	_, err = Compute(context.Background(), net, spec, store, cfg.Snapshots)
	var confErr *scenario.ConfigurationError
	require.ErrorAs(t, err, &confErr)
}
