// Package cutout implements the weather/resource provider: named, bounded
// gridded weather datasets shared read-only across scenario instances.
package cutout

import (
	"fmt"
	"time"

	"github.com/vk/gridcap/internal/scenario"
)

// Variable names carried by every cutout.
const (
	VarWind        = "wnd100m"     // wind speed at 100m, m/s
	VarInflux      = "influx"      // downward solar irradiance, W/m2
	VarTemperature = "temperature" // ambient temperature, degC
)

// Site is one grid cell of a cutout.
type Site struct {
	X float64 // longitude, degrees east
	Y float64 // latitude, degrees north
	// Depth is the sea depth in meters (positive down); zero on land.
	Depth float64
}

// Cutout is a named gridded weather dataset. It is immutable once built:
// concurrent reads from multiple scenario instances are safe.
type Cutout struct {
	Name  string
	Spec  scenario.CutoutSpec
	Sites []Site
	Times []time.Time

	// values holds per-variable data indexed [site][time].
	values map[string][][]float64
}

// Variable returns the per-site series for one climate variable.
func (c *Cutout) Variable(name string) ([][]float64, error) {
	data, ok := c.values[name]
	if !ok {
		return nil, fmt.Errorf("cutout %q has no variable %q", c.Name, name)
	}
	return data, nil
}

// SeriesAt returns the series of one variable at one site, restricted to the
// given snapshot window.
func (c *Cutout) SeriesAt(name string, site int, window scenario.SnapshotWindow) ([]float64, error) {
	data, err := c.Variable(name)
	if err != nil {
		return nil, err
	}
	lo, hi, err := c.window(window)
	if err != nil {
		return nil, err
	}
	return data[site][lo:hi], nil
}

// window maps a snapshot window onto index bounds of the cutout time axis.
func (c *Cutout) window(w scenario.SnapshotWindow) (int, int, error) {
	lo, hi := -1, -1
	for i, t := range c.Times {
		if lo < 0 && !t.Before(w.Start) {
			lo = i
		}
		if t.Before(w.End) {
			hi = i + 1
		}
	}
	if lo < 0 || hi <= lo {
		return 0, 0, fmt.Errorf("cutout %q does not cover window %s..%s", c.Name, w.Start, w.End)
	}
	return lo, hi, nil
}

// NearestSite returns the index of the grid cell closest to (x, y), or -1
// when the coordinate lies outside the cutout's spatial envelope.
func (c *Cutout) NearestSite(x, y float64) int {
	if !c.Spec.Contains(x, y) {
		return -1
	}
	best, bestDist := -1, 0.0
	for i, site := range c.Sites {
		dx, dy := site.X-x, site.Y-y
		dist := dx*dx + dy*dy
		if best < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

// hourlyTimes enumerates the cutout's native time axis.
func hourlyTimes(w scenario.SnapshotWindow) []time.Time {
	var out []time.Time
	for t := w.Start; t.Before(w.End); t = t.Add(time.Hour) {
		out = append(out, t)
	}
	return out
}
