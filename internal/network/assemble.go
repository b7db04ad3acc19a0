package network

import (
	"fmt"
	"sort"
	"time"

	"github.com/vk/gridcap/internal/scenario"
)

// AssembleOptions point the assembler at optional on-disk inputs. All of
// them may be empty, in which case the built-in base grid and roster apply.
type AssembleOptions struct {
	// BaseDir holds buses.csv and lines.csv for the base network.
	BaseDir string
	// PlantsCSV replaces the built-in conventional plant roster.
	PlantsCSV string
	// CustomPlantsCSV amends the roster; only read when the scenario sets
	// electricity.custom_powerplants.
	CustomPlantsCSV string
}

// Assemble builds the base network for a scenario: buses and lines of the
// configured countries, demand series, the conventional plant roster, and
// one investment-candidate generator or storage unit per bus for every
// eligible carrier.
func Assemble(cfg *scenario.Config, opts AssembleOptions) (*Network, error) {
	countries := cfg.CountrySet()

	base, err := loadBase(opts.BaseDir)
	if err != nil {
		return nil, err
	}

	net := &Network{
		Carriers:  CarrierTable(),
		Snapshots: cfg.Snapshots.Snapshots(),
	}

	kept := map[string]struct{}{}
	for _, bus := range base.buses {
		if _, ok := countries[bus.country]; !ok {
			continue
		}
		net.Buses = append(net.Buses, Bus{ID: bus.id, Country: bus.country, X: bus.x, Y: bus.y})
		kept[bus.id] = struct{}{}
		if bus.peakLoad > 0 {
			net.Loads = append(net.Loads, Load{
				ID:     bus.id + " load",
				Bus:    bus.id,
				Peak:   bus.peakLoad,
				Series: demandSeries(bus.peakLoad, net.Snapshots),
			})
		}
	}
	if len(net.Buses) == 0 {
		return nil, &scenario.ConfigurationError{
			Key:    "countries",
			Reason: fmt.Sprintf("no buses in base network for countries %v", cfg.Countries),
		}
	}

	for _, line := range base.lines {
		_, fromKept := kept[line.from]
		_, toKept := kept[line.to]
		if !fromKept || !toKept {
			continue
		}
		fromBus, _ := busByID(net.Buses, line.from)
		toBus, _ := busByID(net.Buses, line.to)
		net.Lines = append(net.Lines, Line{
			ID:     line.id,
			From:   line.from,
			To:     line.to,
			SNom:   line.sNom,
			Length: Haversine(fromBus.X, fromBus.Y, toBus.X, toBus.Y),
		})
	}

	plants, err := loadRoster(cfg, opts, base.buses)
	if err != nil {
		return nil, err
	}
	for _, plant := range plants {
		if _, ok := kept[plant.bus]; !ok {
			continue
		}
		cost := CostsFor(plant.carrier)
		net.Generators = append(net.Generators, Generator{
			ID:           plant.id,
			Bus:          plant.bus,
			Carrier:      plant.carrier,
			PNom:         plant.pNom,
			MarginalCost: cost.Marginal,
			CapitalCost:  cost.Capital,
		})
	}

	renewables := cfg.RenewableCarrierSet()

	// One investment candidate per bus for every renewable carrier and for
	// every extendable conventional carrier.
	candidateCarriers := append([]string{}, cfg.Electricity.RenewableCarriers...)
	for _, carrier := range cfg.Electricity.ExtendableCarriers["Generator"] {
		if _, isRenewable := renewables[carrier]; !isRenewable {
			candidateCarriers = append(candidateCarriers, carrier)
		}
	}
	for _, carrier := range candidateCarriers {
		if _, known := net.Carriers[carrier]; !known {
			return nil, &scenario.ConfigurationError{
				Key:    "electricity",
				Reason: fmt.Sprintf("unknown carrier %q", carrier),
			}
		}
		cost := CostsFor(carrier)
		for _, bus := range net.Buses {
			net.Generators = append(net.Generators, Generator{
				ID:           bus.ID + " " + carrier,
				Bus:          bus.ID,
				Carrier:      carrier,
				Extendable:   true,
				MarginalCost: cost.Marginal,
				CapitalCost:  cost.Capital,
			})
		}
	}

	for _, carrier := range cfg.Electricity.ExtendableCarriers["StorageUnit"] {
		if _, known := net.Carriers[carrier]; !known {
			return nil, &scenario.ConfigurationError{
				Key:    "electricity.extendable_carriers.StorageUnit",
				Reason: fmt.Sprintf("unknown carrier %q", carrier),
			}
		}
		cost := CostsFor(carrier)
		maxHours := 6.0
		if carrier == "H2" {
			maxHours = 168.0
		}
		for _, bus := range net.Buses {
			net.StorageUnits = append(net.StorageUnits, StorageUnit{
				ID:                 bus.ID + " " + carrier,
				Bus:                bus.ID,
				Carrier:            carrier,
				Extendable:         true,
				MaxHours:           maxHours,
				EfficiencyStore:    0.95,
				EfficiencyDispatch: 0.95,
				MarginalCost:       cost.Marginal,
				CapitalCost:        cost.Capital,
			})
		}
	}

	sortAssets(net)
	if err := net.Validate(); err != nil {
		return nil, err
	}
	return net, nil
}

// sortAssets fixes a deterministic asset order regardless of map iteration
// during assembly.
func sortAssets(net *Network) {
	sort.Slice(net.Buses, func(i, j int) bool { return net.Buses[i].ID < net.Buses[j].ID })
	sort.Slice(net.Lines, func(i, j int) bool { return net.Lines[i].ID < net.Lines[j].ID })
	sort.Slice(net.Links, func(i, j int) bool { return net.Links[i].ID < net.Links[j].ID })
	sort.Slice(net.Generators, func(i, j int) bool { return net.Generators[i].ID < net.Generators[j].ID })
	sort.Slice(net.StorageUnits, func(i, j int) bool { return net.StorageUnits[i].ID < net.StorageUnits[j].ID })
	sort.Slice(net.Loads, func(i, j int) bool { return net.Loads[i].ID < net.Loads[j].ID })
}

func busByID(buses []Bus, id string) (Bus, bool) {
	for _, bus := range buses {
		if bus.ID == id {
			return bus, true
		}
	}
	return Bus{}, false
}

// demandSeries shapes a peak load into an hourly demand profile: a daytime
// plateau with an evening peak, damped on weekends.
func demandSeries(peak float64, snapshots []time.Time) []float64 {
	out := make([]float64, len(snapshots))
	for i, t := range snapshots {
		out[i] = peak * demandShape(t)
	}
	return out
}

func demandShape(t time.Time) float64 {
	hour := t.Hour()
	shape := 0.55
	switch {
	case hour >= 7 && hour <= 19:
		shape = 0.85
	case hour == 20 || hour == 21:
		shape = 1.0
	case hour >= 22 || hour <= 1:
		shape = 0.7
	}
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		shape *= 0.85
	}
	return shape
}
