package network

// The built-in base grid is a reduced western-European topology used when no
// base-network directory is supplied. Coordinates are approximate substation
// locations; ratings and peak loads are stylized but order-of-magnitude
// realistic.

type builtinBus struct {
	id      string
	country string
	x, y    float64
	// peakLoad in MW; zero means no load attached.
	peakLoad float64
}

var builtinBuses = []builtinBus{
	{"BE0", "BE", 4.35, 50.85, 2900}, // Brussels
	{"BE1", "BE", 4.40, 51.22, 2400}, // Antwerp
	{"BE2", "BE", 5.57, 50.63, 1600}, // Liège
	{"BE3", "BE", 3.72, 51.05, 1500}, // Ghent
	{"BE4", "BE", 4.87, 50.47, 1100}, // Namur
	{"BE5", "BE", 3.22, 51.21, 900},  // Bruges (coast)
	{"BE6", "BE", 5.34, 50.93, 800},  // Hasselt
	{"NL0", "NL", 4.90, 52.37, 3300}, // Amsterdam
	{"NL1", "NL", 4.48, 51.92, 2800}, // Rotterdam
	{"NL2", "NL", 5.69, 50.85, 1200}, // Maastricht
	{"FR0", "FR", 2.35, 48.86, 5200}, // Paris
	{"FR1", "FR", 3.06, 50.63, 2100}, // Lille
	{"FR2", "FR", 4.83, 45.76, 2600}, // Lyon
	{"DE0", "DE", 6.96, 50.94, 3100}, // Cologne
	{"DE1", "DE", 8.68, 50.11, 3400}, // Frankfurt
	{"LU0", "LU", 6.13, 49.61, 600},  // Luxembourg
}

type builtinLine struct {
	id       string
	from, to string
	sNom     float64 // MW
}

var builtinLines = []builtinLine{
	{"L-BE0-BE1", "BE0", "BE1", 2200},
	{"L-BE0-BE2", "BE0", "BE2", 1700},
	{"L-BE0-BE3", "BE0", "BE3", 1700},
	{"L-BE0-BE4", "BE0", "BE4", 1400},
	{"L-BE1-BE3", "BE1", "BE3", 1400},
	{"L-BE1-BE6", "BE1", "BE6", 1100},
	{"L-BE2-BE4", "BE2", "BE4", 1100},
	{"L-BE2-BE6", "BE2", "BE6", 1100},
	{"L-BE3-BE5", "BE3", "BE5", 1100},
	{"L-BE5-BE0", "BE5", "BE0", 900},
	{"L-BE1-NL1", "BE1", "NL1", 1600},
	{"L-BE6-NL2", "BE6", "NL2", 900},
	{"L-BE0-FR1", "BE0", "FR1", 1800},
	{"L-BE4-LU0", "BE4", "LU0", 700},
	{"L-NL0-NL1", "NL0", "NL1", 2600},
	{"L-NL1-NL2", "NL1", "NL2", 1400},
	{"L-FR0-FR1", "FR0", "FR1", 3000},
	{"L-FR0-FR2", "FR0", "FR2", 3000},
	{"L-DE0-DE1", "DE0", "DE1", 2800},
	{"L-DE0-NL2", "DE0", "NL2", 1300},
	{"L-DE0-LU0", "DE0", "LU0", 800},
}

type builtinPlant struct {
	id      string
	bus     string
	carrier string
	pNom    float64 // MW
	year    int
}

// builtinPlants is the default conventional roster; a plant roster CSV, when
// supplied, replaces it entirely. Only the custom plant CSV amends.
var builtinPlants = []builtinPlant{
	{"BE0 CCGT", "BE0", "CCGT", 900, 2009},
	{"BE1 CCGT", "BE1", "CCGT", 1100, 2011},
	{"BE2 OCGT", "BE2", "OCGT", 350, 1998},
	{"BE4 nuclear", "BE4", "nuclear", 2900, 1985},
	{"BE1 nuclear", "BE1", "nuclear", 3000, 1983},
	{"NL0 CCGT", "NL0", "CCGT", 1300, 2012},
	{"NL1 coal", "NL1", "coal", 1070, 2015},
	{"FR0 nuclear", "FR0", "nuclear", 5200, 1990},
	{"FR1 CCGT", "FR1", "CCGT", 800, 2008},
	{"FR2 nuclear", "FR2", "nuclear", 3600, 1988},
	{"DE0 coal", "DE0", "coal", 2100, 2002},
	{"DE1 CCGT", "DE1", "CCGT", 1400, 2010},
	{"LU0 OCGT", "LU0", "OCGT", 200, 2001},
}
