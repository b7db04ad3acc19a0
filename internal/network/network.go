package network

import (
	"fmt"
	"math"
	"time"
)

// Bus is a network node.
type Bus struct {
	ID      string
	Country string
	X       float64 // longitude
	Y       float64 // latitude
}

// Line is an AC transmission line between two buses.
type Line struct {
	ID   string
	From string
	To   string
	// SNom is the nominal thermal rating in MW.
	SNom   float64
	Length float64 // km
}

// Link is a controllable (DC or conversion) connection between two buses.
type Link struct {
	ID      string
	From    string
	To      string
	Carrier string
	PNom    float64
	// Efficiency of transfer from From to To.
	Efficiency float64
}

// Generator is a generation asset attached to a bus.
type Generator struct {
	ID      string
	Bus     string
	Carrier string
	// PNom is the installed capacity in MW.
	PNom float64
	// Extendable marks the capacity as an optimization variable.
	Extendable bool
	// MarginalCost in currency/MWh, CapitalCost in currency/MW/a.
	MarginalCost float64
	CapitalCost  float64
}

// StorageUnit is a storage asset attached to a bus.
type StorageUnit struct {
	ID         string
	Bus        string
	Carrier    string
	PNom       float64
	Extendable bool
	// MaxHours is the energy capacity per MW of power capacity.
	MaxHours           float64
	EfficiencyStore    float64
	EfficiencyDispatch float64
	MarginalCost       float64
	CapitalCost        float64
}

// Load is a demand asset with its per-snapshot series in MW.
type Load struct {
	ID     string
	Bus    string
	Peak   float64
	Series []float64
}

// Carrier describes a technology/fuel type.
type Carrier struct {
	Name string
	// CO2Emissions in tCO2 per MWh of electricity produced.
	CO2Emissions float64
}

// Network is the assembled grid for one scenario. After assembly it is
// only read by downstream stages; clustering produces a new Network.
type Network struct {
	Buses        []Bus
	Lines        []Line
	Links        []Link
	Generators   []Generator
	StorageUnits []StorageUnit
	Loads        []Load
	Carriers     map[string]Carrier
	Snapshots    []time.Time
}

// Bus returns a bus by ID.
func (n *Network) Bus(id string) (Bus, bool) {
	for _, bus := range n.Buses {
		if bus.ID == id {
			return bus, true
		}
	}
	return Bus{}, false
}

// CapacityByCarrier sums installed generator and storage capacity per
// carrier. Clustering must conserve this map exactly.
func (n *Network) CapacityByCarrier() map[string]float64 {
	out := map[string]float64{}
	for _, gen := range n.Generators {
		out[gen.Carrier] += gen.PNom
	}
	for _, su := range n.StorageUnits {
		out[su.Carrier] += su.PNom
	}
	return out
}

// TotalDemand sums load over all buses and snapshots, in MWh.
func (n *Network) TotalDemand() float64 {
	var sum float64
	for _, load := range n.Loads {
		for _, v := range load.Series {
			sum += v
		}
	}
	return sum
}

// Validate checks referential integrity of the graph.
func (n *Network) Validate() error {
	buses := make(map[string]struct{}, len(n.Buses))
	for _, bus := range n.Buses {
		if _, dup := buses[bus.ID]; dup {
			return fmt.Errorf("network: duplicate bus %q", bus.ID)
		}
		buses[bus.ID] = struct{}{}
	}
	for _, line := range n.Lines {
		if _, ok := buses[line.From]; !ok {
			return fmt.Errorf("network: line %q references unknown bus %q", line.ID, line.From)
		}
		if _, ok := buses[line.To]; !ok {
			return fmt.Errorf("network: line %q references unknown bus %q", line.ID, line.To)
		}
	}
	for _, link := range n.Links {
		if _, ok := buses[link.From]; !ok {
			return fmt.Errorf("network: link %q references unknown bus %q", link.ID, link.From)
		}
		if _, ok := buses[link.To]; !ok {
			return fmt.Errorf("network: link %q references unknown bus %q", link.ID, link.To)
		}
	}
	for _, gen := range n.Generators {
		if _, ok := buses[gen.Bus]; !ok {
			return fmt.Errorf("network: generator %q references unknown bus %q", gen.ID, gen.Bus)
		}
	}
	for _, su := range n.StorageUnits {
		if _, ok := buses[su.Bus]; !ok {
			return fmt.Errorf("network: storage unit %q references unknown bus %q", su.ID, su.Bus)
		}
	}
	for _, load := range n.Loads {
		if _, ok := buses[load.Bus]; !ok {
			return fmt.Errorf("network: load %q references unknown bus %q", load.ID, load.Bus)
		}
		if len(load.Series) != len(n.Snapshots) {
			return fmt.Errorf("network: load %q series length %d does not match %d snapshots",
				load.ID, len(load.Series), len(n.Snapshots))
		}
	}
	return nil
}

// Haversine returns the great-circle distance between two coordinates in km.
func Haversine(x1, y1, x2, y2 float64) float64 {
	const earthRadiusKm = 6371.0
	rad := math.Pi / 180
	dLat := (y2 - y1) * rad
	dLon := (x2 - x1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(y1*rad)*math.Cos(y2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
