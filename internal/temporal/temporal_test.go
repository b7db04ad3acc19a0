package temporal

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vk/gridcap/internal/scenario"
)

func hourly(n int) []time.Time {
	start := time.Date(2013, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return out
}

func TestParseResolution(t *testing.T) {
	hours, err := ParseResolution("24H")
	require.NoError(t, err)
	require.Equal(t, 24, hours)

	hours, err = ParseResolution("")
	require.NoError(t, err)
	require.Equal(t, 1, hours)

	_, err = ParseResolution("daily")
	var confErr *scenario.ConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func TestWeightsSumToSnapshotCount(t *testing.T) {
	for _, resolution := range []string{"1H", "3H", "24H", "168H"} {
		agg, err := Build(hourly(168), resolution)
		require.NoError(t, err)

		var total float64
		for _, w := range agg.Weights {
			total += w
		}
		require.Equal(t, 168.0, total, "resolution %s", resolution)
	}
}

func TestWeightedSumPreservesExtensiveQuantities(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	series := make([]float64, 168)
	var exact float64
	for i := range series {
		series[i] = rng.Float64() * 1000
		exact += series[i]
	}

	agg, err := Build(hourly(168), "24H")
	require.NoError(t, err)

	blocks, err := agg.Mean(series)
	require.NoError(t, err)
	require.Len(t, blocks, 7)
	require.InDelta(t, exact, agg.WeightedSum(blocks), 1e-6)
}

func TestRaggedTailBlockKeepsItsWeight(t *testing.T) {
	// 50 snapshots at 24H resolution: blocks of 24, 24 and 2.
	agg, err := Build(hourly(50), "24H")
	require.NoError(t, err)
	require.Equal(t, 3, agg.Blocks())
	require.Equal(t, []float64{24, 24, 2}, agg.Weights)

	series := make([]float64, 50)
	var exact float64
	for i := range series {
		series[i] = float64(i)
		exact += series[i]
	}
	blocks, err := agg.Mean(series)
	require.NoError(t, err)
	require.InDelta(t, exact, agg.WeightedSum(blocks), 1e-9)
}

func TestMeanRejectsLengthMismatch(t *testing.T) {
	agg, err := Build(hourly(24), "24H")
	require.NoError(t, err)
	_, err = agg.Mean(make([]float64, 23))
	require.Error(t, err)
}

func TestNativeResolutionIsIdentity(t *testing.T) {
	agg, err := Build(hourly(12), "1H")
	require.NoError(t, err)
	require.Equal(t, 12, agg.Blocks())

	series := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	blocks, err := agg.Mean(series)
	require.NoError(t, err)
	require.Equal(t, series, blocks)
}
