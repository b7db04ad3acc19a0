// Package profile implements the renewable profile generator: per-site
// capacity-factor time series derived from a cutout and per-technology
// siting constraints.
package profile

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/vk/gridcap/internal/ctxlog"
	"github.com/vk/gridcap/internal/cutout"
	"github.com/vk/gridcap/internal/scenario"
)

// Wind turbine power curve parameters (m/s).
const (
	cutInSpeed  = 3.0
	ratedSpeed  = 12.0
	cutOutSpeed = 25.0
)

// TechnologyProfile holds the derived capacity factors of one renewable
// carrier: one series per eligible site, values in [0, 1], at the cutout's
// native resolution restricted to the scenario snapshot window.
type TechnologyProfile struct {
	Tech   string
	Cutout string
	// Sites are the eligible grid cells, aligned with CapacityFactors.
	Sites           []cutout.Site
	CapacityFactors [][]float64
}

// Generate derives the capacity-factor series for one technology. It fails
// with *scenario.ConfigurationError when the referenced cutout is not in
// the store or the depth bounds are contradictory.
func Generate(ctx context.Context, tech string, spec scenario.RenewableSpec, store *cutout.Store, window scenario.SnapshotWindow) (*TechnologyProfile, error) {
	logger := ctxlog.FromContext(ctx)

	cut, ok := store.Get(spec.Cutout)
	if !ok {
		return nil, &scenario.ConfigurationError{
			Key:    "renewable." + tech + ".cutout",
			Reason: fmt.Sprintf("references undefined cutout %q", spec.Cutout),
		}
	}
	if spec.MinDepth != nil && spec.MaxDepth != nil && *spec.MinDepth >= *spec.MaxDepth {
		return nil, &scenario.ConfigurationError{
			Key: "renewable." + tech,
			Reason: fmt.Sprintf("contradictory depth bounds: min_depth %g >= max_depth %g",
				*spec.MinDepth, *spec.MaxDepth),
		}
	}

	convert, offshore, err := converterFor(tech)
	if err != nil {
		return nil, err
	}

	prof := &TechnologyProfile{Tech: tech, Cutout: spec.Cutout}
	for i, site := range cut.Sites {
		if !eligible(site, offshore, spec) {
			continue
		}
		series, err := convert(cut, i, window)
		if err != nil {
			return nil, err
		}
		prof.Sites = append(prof.Sites, site)
		prof.CapacityFactors = append(prof.CapacityFactors, series)
	}

	logger.Debug("Renewable profile generated.",
		"tech", tech, "cutout", spec.Cutout,
		"eligible_sites", len(prof.Sites), "of", len(cut.Sites))
	return prof, nil
}

// eligible applies the siting constraints: offshore technologies require
// sea cells within the depth bounds, onshore ones require land cells.
// Absent bounds mean "no constraint" within the technology's domain.
func eligible(site cutout.Site, offshore bool, spec scenario.RenewableSpec) bool {
	if offshore {
		if site.Depth <= 0 {
			return false
		}
		if spec.MinDepth != nil && site.Depth < *spec.MinDepth {
			return false
		}
		if spec.MaxDepth != nil && site.Depth > *spec.MaxDepth {
			return false
		}
		return true
	}
	return site.Depth == 0
}

// converter turns raw weather at one site into a capacity-factor series.
type converter func(cut *cutout.Cutout, site int, window scenario.SnapshotWindow) ([]float64, error)

// converterFor maps a technology name onto its conversion model.
func converterFor(tech string) (converter, bool, error) {
	switch {
	case strings.HasPrefix(tech, "offwind"):
		return windConverter, true, nil
	case strings.HasPrefix(tech, "onwind"):
		return windConverter, false, nil
	case strings.HasPrefix(tech, "solar"):
		return solarConverter, false, nil
	default:
		return nil, false, &scenario.ConfigurationError{
			Key:    "renewable." + tech,
			Reason: "no conversion model for this technology",
		}
	}
}

// windConverter applies a generic turbine power curve to 100m wind speed.
func windConverter(cut *cutout.Cutout, site int, window scenario.SnapshotWindow) ([]float64, error) {
	speeds, err := cut.SeriesAt(cutout.VarWind, site, window)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(speeds))
	for i, v := range speeds {
		switch {
		case v < cutInSpeed || v > cutOutSpeed:
			out[i] = 0
		case v >= ratedSpeed:
			out[i] = 1
		default:
			num := math.Pow(v, 3) - math.Pow(cutInSpeed, 3)
			den := math.Pow(ratedSpeed, 3) - math.Pow(cutInSpeed, 3)
			out[i] = num / den
		}
	}
	return out, nil
}

// solarConverter scales irradiance by standard test conditions with a
// linear temperature derating above 25 degC.
func solarConverter(cut *cutout.Cutout, site int, window scenario.SnapshotWindow) ([]float64, error) {
	influx, err := cut.SeriesAt(cutout.VarInflux, site, window)
	if err != nil {
		return nil, err
	}
	temp, err := cut.SeriesAt(cutout.VarTemperature, site, window)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(influx))
	for i := range influx {
		cf := influx[i] / 1000.0
		if temp[i] > 25 {
			cf *= 1 - 0.005*(temp[i]-25)
		}
		out[i] = math.Min(1, math.Max(0, cf))
	}
	return out, nil
}

// AtCoordinate returns the capacity-factor series of the eligible site
// nearest to (x, y), or nil when no site is eligible.
func (p *TechnologyProfile) AtCoordinate(x, y float64) []float64 {
	best, bestDist := -1, 0.0
	for i, site := range p.Sites {
		dx, dy := site.X-x, site.Y-y
		dist := dx*dx + dy*dy
		if best < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return nil
	}
	return p.CapacityFactors[best]
}
