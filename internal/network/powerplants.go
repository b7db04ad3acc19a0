package network

import (
	"fmt"
	"strconv"

	"github.com/vk/gridcap/internal/scenario"
)

// Roster CSV columns: name,country,carrier,capacity_mw,year,x,y. Plants are
// assigned to the nearest base-network bus by great-circle distance, the
// same rule the upstream powerplant matching applies.

// loadRoster assembles the conventional plant list: the base roster
// (built-in or CSV), optionally amended with custom plants, then filtered.
// CSV plants are sited onto the buses of the supplied base grid, so a grid
// loaded from disk receives the roster just like the built-in one.
func loadRoster(cfg *scenario.Config, opts AssembleOptions, buses []builtinBus) ([]builtinPlant, error) {
	var plants []builtinPlant
	if opts.PlantsCSV == "" {
		plants = append(plants, builtinPlants...)
	} else {
		fromCSV, err := readRosterCSV(opts.PlantsCSV, buses)
		if err != nil {
			return nil, err
		}
		plants = append(plants, fromCSV...)
	}

	if cfg.Electricity.CustomPowerPlants && opts.CustomPlantsCSV != "" {
		custom, err := readRosterCSV(opts.CustomPlantsCSV, buses)
		if err != nil {
			return nil, err
		}
		plants = append(plants, custom...)
	}

	return filterRoster(plants, cfg.Electricity.PowerPlantsFilter, buses), nil
}

// filterRoster applies the declarative powerplants_filter.
func filterRoster(plants []builtinPlant, filter *scenario.PlantFilter, buses []builtinBus) []builtinPlant {
	if filter == nil {
		return plants
	}
	allowed := map[string]struct{}{}
	for _, country := range filter.Countries {
		allowed[country] = struct{}{}
	}

	var out []builtinPlant
	for _, plant := range plants {
		if len(allowed) > 0 {
			if _, ok := allowed[countryOfBus(plant.bus, buses)]; !ok {
				continue
			}
		}
		if filter.MinYearCommissioned > 0 && plant.year < filter.MinYearCommissioned {
			continue
		}
		out = append(out, plant)
	}
	return out
}

// countryOfBus resolves a plant's country from its assigned bus.
func countryOfBus(busID string, buses []builtinBus) string {
	for _, bus := range buses {
		if bus.id == busID {
			return bus.country
		}
	}
	if len(busID) >= 2 {
		return busID[:2]
	}
	return ""
}

// readRosterCSV reads a plant roster and assigns each plant to its nearest
// bus of the base grid.
func readRosterCSV(path string, buses []builtinBus) ([]builtinPlant, error) {
	records, err := readCSV(path, 7)
	if err != nil {
		return nil, err
	}

	var plants []builtinPlant
	for i, rec := range records {
		capacity, err1 := strconv.ParseFloat(rec[3], 64)
		year, err2 := strconv.Atoi(rec[4])
		x, err3 := strconv.ParseFloat(rec[5], 64)
		y, err4 := strconv.ParseFloat(rec[6], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, fmt.Errorf("%s row %d: malformed numeric field", path, i+2)
		}

		bus, ok := nearestBus(x, y, rec[1], buses)
		if !ok {
			// A plant in a country outside the base grid is silently
			// dropped, matching the country restriction of the network.
			continue
		}
		plants = append(plants, builtinPlant{
			id:      rec[0],
			bus:     bus,
			carrier: rec[2],
			pNom:    capacity,
			year:    year,
		})
	}
	return plants, nil
}

// nearestBus finds the closest bus within the plant's own country.
func nearestBus(x, y float64, country string, buses []builtinBus) (string, bool) {
	best, bestDist := "", 0.0
	for _, bus := range buses {
		if bus.country != country {
			continue
		}
		dist := Haversine(x, y, bus.x, bus.y)
		if best == "" || dist < bestDist {
			best, bestDist = bus.id, dist
		}
	}
	return best, best != ""
}
