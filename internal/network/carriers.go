package network

// defaultCarriers is the built-in technology table. Emission factors are
// tCO2 per MWh of electricity, costs are EUR/MWh marginal and EUR/MW/a
// annualized capital.
var defaultCarriers = map[string]Carrier{
	"OCGT":       {Name: "OCGT", CO2Emissions: 0.49},
	"CCGT":       {Name: "CCGT", CO2Emissions: 0.36},
	"coal":       {Name: "coal", CO2Emissions: 0.82},
	"nuclear":    {Name: "nuclear"},
	"onwind":     {Name: "onwind"},
	"offwind-ac": {Name: "offwind-ac"},
	"offwind-dc": {Name: "offwind-dc"},
	"solar":      {Name: "solar"},
	"battery":    {Name: "battery"},
	"H2":         {Name: "H2"},
	"AC":         {Name: "AC"},
	"DC":         {Name: "DC"},
}

// CarrierCost holds default cost assumptions per carrier.
type CarrierCost struct {
	Marginal float64 // EUR/MWh
	Capital  float64 // EUR/MW/a
}

var defaultCosts = map[string]CarrierCost{
	"OCGT":       {Marginal: 64.3, Capital: 47235},
	"CCGT":       {Marginal: 46.5, Capital: 94725},
	"coal":       {Marginal: 29.8, Capital: 176000},
	"nuclear":    {Marginal: 10.6, Capital: 559000},
	"onwind":     {Marginal: 0.015, Capital: 109296},
	"offwind-ac": {Marginal: 0.02, Capital: 189212},
	"offwind-dc": {Marginal: 0.02, Capital: 199044},
	"solar":      {Marginal: 0.01, Capital: 51426},
	"battery":    {Marginal: 0.0, Capital: 120389},
	"H2":         {Marginal: 0.0, Capital: 195000},
}

// CostsFor returns the default cost assumptions for a carrier.
func CostsFor(carrier string) CarrierCost {
	return defaultCosts[carrier]
}

// CarrierTable returns a copy of the built-in carrier table so callers can
// attach it to a Network without sharing the map.
func CarrierTable() map[string]Carrier {
	out := make(map[string]Carrier, len(defaultCarriers))
	for name, c := range defaultCarriers {
		out[name] = c
	}
	return out
}
