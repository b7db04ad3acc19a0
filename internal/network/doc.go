// Package network defines the transmission/generation network model and the
// assembler that builds the base network for a scenario.
//
// A Network is a graph of buses connected by lines and links, with
// generators, storage units and loads attached to buses. Every asset is
// tagged with a carrier; extendability is decided by the scenario's
// extendable-carriers map, except renewable carriers, which are investment
// candidates by construction.
package network
