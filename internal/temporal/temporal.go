// Package temporal implements snapshot aggregation: reduction of hourly
// series to a coarser resolution with per-block weights.
//
// Weights carry the snapshot count of each block, so the weighted sum over
// blocks equals the unweighted sum over the original series for every
// extensive quantity. The optimization objective relies on this to remain a
// correct cost and emission estimate.
package temporal

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vk/gridcap/internal/scenario"
)

// Aggregation maps native snapshots onto coarse blocks.
type Aggregation struct {
	// BlockStarts holds the first snapshot of each block.
	BlockStarts []time.Time
	// Weights holds the snapshot count of each block.
	Weights []float64

	// offsets[i] is the index of the first snapshot of block i; the block
	// ends where the next one starts.
	offsets   []int
	snapshots int
}

// ParseResolution interprets a resolution string like "24H". The empty
// string means native resolution.
func ParseResolution(resolution string) (int, error) {
	if resolution == "" {
		return 1, nil
	}
	raw := strings.TrimSuffix(resolution, "H")
	hours, err := strconv.Atoi(raw)
	if err != nil || hours < 1 {
		return 0, &scenario.ConfigurationError{
			Key:    "clustering.temporal.resolution_elec",
			Reason: fmt.Sprintf("malformed resolution %q", resolution),
		}
	}
	return hours, nil
}

// Build groups consecutive snapshots into blocks of the target resolution.
func Build(snapshots []time.Time, resolution string) (*Aggregation, error) {
	hours, err := ParseResolution(resolution)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("temporal: no snapshots to aggregate")
	}

	agg := &Aggregation{snapshots: len(snapshots)}
	for i := 0; i < len(snapshots); i += hours {
		end := i + hours
		if end > len(snapshots) {
			end = len(snapshots)
		}
		agg.BlockStarts = append(agg.BlockStarts, snapshots[i])
		agg.Weights = append(agg.Weights, float64(end-i))
		agg.offsets = append(agg.offsets, i)
	}
	return agg, nil
}

// Blocks returns the number of blocks.
func (a *Aggregation) Blocks() int {
	return len(a.offsets)
}

// SourceSnapshots returns the native snapshot count the aggregation covers.
func (a *Aggregation) SourceSnapshots() int {
	return a.snapshots
}

// blockRange returns the [lo, hi) native index range of block i.
func (a *Aggregation) blockRange(i int) (int, int) {
	lo := a.offsets[i]
	hi := a.snapshots
	if i+1 < len(a.offsets) {
		hi = a.offsets[i+1]
	}
	return lo, hi
}

// Mean reduces an intensive series (capacity factors, ratings, prices) to
// its per-block mean.
func (a *Aggregation) Mean(series []float64) ([]float64, error) {
	if len(series) != a.snapshots {
		return nil, fmt.Errorf("temporal: series length %d does not match %d snapshots", len(series), a.snapshots)
	}
	out := make([]float64, a.Blocks())
	for i := range out {
		lo, hi := a.blockRange(i)
		var sum float64
		for j := lo; j < hi; j++ {
			sum += series[j]
		}
		out[i] = sum / float64(hi-lo)
	}
	return out, nil
}

// WeightedSum evaluates the block representation of an extensive quantity:
// sum of block value times block weight.
func (a *Aggregation) WeightedSum(blockSeries []float64) float64 {
	var sum float64
	for i, v := range blockSeries {
		sum += v * a.Weights[i]
	}
	return sum
}
