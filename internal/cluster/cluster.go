// Package cluster implements the spatial clustering engine: reduction of a
// network to K representative buses.
//
// Buses are partitioned by k-means over their coordinates using
// great-circle distance. Initialization is deterministic farthest-point
// seeding starting from the lexicographically smallest bus ID; assignment
// ties break toward the lowest cluster index. Assets are reassigned, never
// scaled, so installed capacity per carrier is conserved exactly. Assets
// whose carrier is in the exclusion set keep their original bus; the
// preserved bus joins its cluster representative through an unconstrained
// tie line.
package cluster

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/gridcap/internal/ctxlog"
	"github.com/vk/gridcap/internal/network"
)

// tieLineRating is the rating of the line connecting a preserved bus to its
// cluster representative. Large enough never to bind.
const tieLineRating = 1e7

// maxIterations bounds the k-means refinement loop.
const maxIterations = 50

// InfeasibleClusteringError reports a cluster count exceeding the number of
// clusterable buses.
type InfeasibleClusteringError struct {
	K           int
	Clusterable int
}

// Error implements the error interface.
func (e *InfeasibleClusteringError) Error() string {
	return fmt.Sprintf("clustering: target count %d exceeds %d clusterable buses", e.K, e.Clusterable)
}

// Result is a clustered network with its bus assignment.
type Result struct {
	Network *network.Network
	// Assignment maps every original bus to its representative bus.
	Assignment map[string]string
	// PreservedBuses lists buses copied through for excluded-carrier assets.
	PreservedBuses []string
}

// Cluster reduces the network to k representative buses. Excluded-carrier
// assets are copied through unmerged, one bus per original location.
func Cluster(ctx context.Context, net *network.Network, k int, exclude map[string]struct{}) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	if k > len(net.Buses) {
		return nil, &InfeasibleClusteringError{K: k, Clusterable: len(net.Buses)}
	}

	buses := append([]network.Bus{}, net.Buses...)
	sort.Slice(buses, func(i, j int) bool { return buses[i].ID < buses[j].ID })

	assignment := kmeans(buses, k)

	// Representative bus per cluster, placed at the member centroid.
	reps := make([]network.Bus, k)
	counts := make([]int, k)
	for i, bus := range buses {
		c := assignment[i]
		reps[c].X += bus.X
		reps[c].Y += bus.Y
		counts[c]++
		if reps[c].Country == "" {
			reps[c].Country = bus.Country
		}
	}
	for c := range reps {
		reps[c].ID = fmt.Sprintf("c%d", c)
		reps[c].X /= float64(counts[c])
		reps[c].Y /= float64(counts[c])
	}

	busToRep := make(map[string]string, len(buses))
	for i, bus := range buses {
		busToRep[bus.ID] = reps[assignment[i]].ID
	}

	out := &network.Network{
		Buses:     reps,
		Carriers:  net.Carriers,
		Snapshots: net.Snapshots,
	}
	result := &Result{Network: out, Assignment: busToRep}

	mergeLines(net, out, busToRep, reps)
	preserved := mergeAssets(net, out, busToRep, exclude)

	// Preserved buses keep their original location and connect to their
	// cluster through a non-binding tie line.
	preservedIDs := make([]string, 0, len(preserved))
	for id := range preserved {
		preservedIDs = append(preservedIDs, id)
	}
	sort.Strings(preservedIDs)
	for _, id := range preservedIDs {
		orig, _ := net.Bus(id)
		out.Buses = append(out.Buses, orig)
		out.Lines = append(out.Lines, network.Line{
			ID:   "tie-" + id,
			From: id,
			To:   busToRep[id],
			SNom: tieLineRating,
		})
	}
	result.PreservedBuses = preservedIDs

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("clustering produced inconsistent network: %w", err)
	}
	logger.Debug("Network clustered.",
		"k", k, "buses_before", len(net.Buses), "buses_after", len(out.Buses),
		"preserved", len(preservedIDs))
	return result, nil
}

// kmeans assigns each bus (sorted by ID) to one of k clusters.
func kmeans(buses []network.Bus, k int) []int {
	type point struct{ x, y float64 }
	centers := make([]point, 0, k)

	// Farthest-point seeding from the lexicographically smallest bus.
	centers = append(centers, point{buses[0].X, buses[0].Y})
	for len(centers) < k {
		bestIdx, bestDist := -1, -1.0
		for i, bus := range buses {
			nearest := -1.0
			for _, c := range centers {
				d := network.Haversine(bus.X, bus.Y, c.x, c.y)
				if nearest < 0 || d < nearest {
					nearest = d
				}
			}
			// Strict > keeps the earliest (smallest ID) bus on ties.
			if nearest > bestDist {
				bestIdx, bestDist = i, nearest
			}
		}
		centers = append(centers, point{buses[bestIdx].X, buses[bestIdx].Y})
	}

	assignment := make([]int, len(buses))
	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, bus := range buses {
			best, bestDist := 0, -1.0
			for c, center := range centers {
				d := network.Haversine(bus.X, bus.Y, center.x, center.y)
				// Strict < breaks ties toward the lowest cluster index.
				if bestDist < 0 || d < bestDist {
					best, bestDist = c, d
				}
			}
			if assignment[i] != best {
				assignment[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		sums := make([]point, k)
		counts := make([]int, k)
		for i, bus := range buses {
			sums[assignment[i]].x += bus.X
			sums[assignment[i]].y += bus.Y
			counts[assignment[i]]++
		}
		for c := range centers {
			if counts[c] > 0 {
				centers[c] = point{sums[c].x / float64(counts[c]), sums[c].y / float64(counts[c])}
			}
		}
	}
	ensureNonEmpty(assignment, k)
	return assignment
}

// ensureNonEmpty moves one bus into each empty cluster. Coincident bus
// coordinates can duplicate a seed center, and tie-breaking then starves the
// later cluster; k <= len(buses) guarantees a donor cluster with at least
// two members exists. Donors come from the largest cluster, earliest bus
// first, keeping the result deterministic.
func ensureNonEmpty(assignment []int, k int) {
	counts := make([]int, k)
	for _, c := range assignment {
		counts[c]++
	}
	for c := 0; c < k; c++ {
		if counts[c] > 0 {
			continue
		}
		donor := -1
		for i, a := range assignment {
			if counts[a] < 2 {
				continue
			}
			if donor < 0 || counts[a] > counts[assignment[donor]] {
				donor = i
			}
		}
		counts[assignment[donor]]--
		assignment[donor] = c
		counts[c]++
	}
}

// mergeLines aggregates inter-cluster lines and drops intra-cluster ones.
func mergeLines(net, out *network.Network, busToRep map[string]string, reps []network.Bus) {
	type pair struct{ from, to string }
	merged := map[pair]float64{}
	for _, line := range net.Lines {
		from, to := busToRep[line.From], busToRep[line.To]
		if from == to {
			continue
		}
		if from > to {
			from, to = to, from
		}
		merged[pair{from, to}] += line.SNom
	}

	pairs := make([]pair, 0, len(merged))
	for p := range merged {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].from != pairs[j].from {
			return pairs[i].from < pairs[j].from
		}
		return pairs[i].to < pairs[j].to
	})

	repByID := map[string]network.Bus{}
	for _, rep := range reps {
		repByID[rep.ID] = rep
	}
	for _, p := range pairs {
		from, to := repByID[p.from], repByID[p.to]
		out.Lines = append(out.Lines, network.Line{
			ID:     p.from + "-" + p.to,
			From:   p.from,
			To:     p.to,
			SNom:   merged[p],
			Length: network.Haversine(from.X, from.Y, to.X, to.Y),
		})
	}

	for _, link := range net.Links {
		from, to := busToRep[link.From], busToRep[link.To]
		if from == to {
			continue
		}
		merged := link
		merged.From, merged.To = from, to
		out.Links = append(out.Links, merged)
	}
}

// mergeAssets aggregates generators, storage and loads per cluster and
// copies excluded-carrier assets through unmerged. It returns the set of
// buses that must be preserved.
func mergeAssets(net, out *network.Network, busToRep map[string]string, exclude map[string]struct{}) map[string]struct{} {
	preserved := map[string]struct{}{}

	type genKey struct {
		bus, carrier string
		extendable   bool
	}
	genSum := map[genKey]*network.Generator{}
	var genOrder []genKey
	for _, gen := range net.Generators {
		if _, excluded := exclude[gen.Carrier]; excluded {
			out.Generators = append(out.Generators, gen)
			preserved[gen.Bus] = struct{}{}
			continue
		}
		key := genKey{busToRep[gen.Bus], gen.Carrier, gen.Extendable}
		if existing, ok := genSum[key]; ok {
			existing.PNom += gen.PNom
		} else {
			merged := gen
			merged.Bus = key.bus
			merged.ID = key.bus + " " + gen.Carrier
			if !gen.Extendable {
				merged.ID += " fixed"
			}
			genSum[key] = &merged
			genOrder = append(genOrder, key)
		}
	}
	for _, key := range genOrder {
		out.Generators = append(out.Generators, *genSum[key])
	}

	type suKey struct {
		bus, carrier string
	}
	suSum := map[suKey]*network.StorageUnit{}
	var suOrder []suKey
	for _, su := range net.StorageUnits {
		if _, excluded := exclude[su.Carrier]; excluded {
			out.StorageUnits = append(out.StorageUnits, su)
			preserved[su.Bus] = struct{}{}
			continue
		}
		key := suKey{busToRep[su.Bus], su.Carrier}
		if existing, ok := suSum[key]; ok {
			existing.PNom += su.PNom
		} else {
			merged := su
			merged.Bus = key.bus
			merged.ID = key.bus + " " + su.Carrier
			suSum[key] = &merged
			suOrder = append(suOrder, key)
		}
	}
	for _, key := range suOrder {
		out.StorageUnits = append(out.StorageUnits, *suSum[key])
	}

	loadSum := map[string]*network.Load{}
	var loadOrder []string
	for _, load := range net.Loads {
		rep := busToRep[load.Bus]
		if existing, ok := loadSum[rep]; ok {
			existing.Peak += load.Peak
			for i := range existing.Series {
				existing.Series[i] += load.Series[i]
			}
		} else {
			merged := load
			merged.Bus = rep
			merged.ID = rep + " load"
			merged.Series = append([]float64{}, load.Series...)
			loadSum[rep] = &merged
			loadOrder = append(loadOrder, rep)
		}
	}
	sort.Strings(loadOrder)
	for _, rep := range loadOrder {
		out.Loads = append(out.Loads, *loadSum[rep])
	}

	return preserved
}
