// Package planner computes shortest-path routing tables for every router
// in a topology via Dijkstra, grounded on the teacher's getSPTree/routeFrom
// cache-and-project structure (routes.go) but running its own lazy
// min-heap Dijkstra rather than delegating to gonum, since spec.md names
// the algorithm itself as a tested property of this module.
package planner

import (
	"math"

	"github.com/iti/netsim/internal/container"
	"github.com/iti/netsim/internal/topology"
)

// dijkstraItem is one entry in the planner's frontier heap: a candidate
// distance to a vertex. Ties are broken on vertex index, matching spec.md
// §4.2's min-heap instantiation for the planner.
type dijkstraItem struct {
	dist   float64
	vertex int
}

func lessDijkstraItem(a, b dijkstraItem) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.vertex < b.vertex
}

// shortestPathsFrom runs Dijkstra from source over g, returning the
// distance to every vertex and a parent-pointer map for path
// reconstruction (spec.md §4.5). Unreached vertices have distance +Inf and
// parent -1.
func shortestPathsFrom(g *topology.Graph, source int) (dist []float64, parent []int) {
	n := g.NumVertices()
	dist = make([]float64, n)
	parent = make([]int, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		parent[i] = -1
	}
	dist[source] = 0

	frontier := container.NewHeap[dijkstraItem](lessDijkstraItem)
	for i := 0; i < n; i++ {
		frontier.Push(dijkstraItem{dist: dist[i], vertex: i})
	}

	// Pop the minimum at most |V| times; stale heap entries (pushed again
	// on a distance improvement) are simply skipped once their vertex has
	// already settled at a smaller distance.
	for extractions := 0; extractions < n && !frontier.Empty(); extractions++ {
		item, _ := frontier.Pop()
		u := item.vertex
		if item.dist > dist[u] {
			continue
		}
		for _, e := range g.Neighbors(u) {
			alt := dist[u] + e.Weight
			if alt < dist[e.To] {
				dist[e.To] = alt
				parent[e.To] = u
				frontier.Push(dijkstraItem{dist: alt, vertex: e.To})
			}
		}
	}

	return dist, parent
}

// pathFirstHop reconstructs the path from source to dest via parent and
// returns the first hop after source on it (p1 in spec.md §4.5's
// s=p0,p1,...,pk=dest notation).
func pathFirstHop(dest, source int, parent []int) int {
	here := dest
	for parent[here] != -1 && parent[here] != source {
		here = parent[here]
	}
	return here
}

// Plan recomputes every router's routing table from the current state of
// topo.Graph, projecting Dijkstra's result into the table representation
// chosen for the topology (spec.md §4.5). It aborts with a fatal error if
// any machine has other than one incident edge (spec.md §4.5, §7).
func Plan(topo *topology.Topology) error {
	if err := topo.ValidateMachineEdges(); err != nil {
		return err
	}
	topo.AttachMachinesToRouters()

	for _, router := range topo.Routers() {
		srcIdx, ok := topo.Index.Lookup(router.Addr)
		if !ok {
			continue
		}
		dist, parent := shortestPathsFrom(topo.Graph, srcIdx)

		table := topology.NewRoutingTable(topo.TableKind)
		for i := 0; i < topo.Graph.NumVertices(); i++ {
			if i == srcIdx || math.IsInf(dist[i], 1) {
				continue
			}
			m, ok := topo.Graph.Device(i).(*topology.Machine)
			if !ok {
				continue
			}
			hop := pathFirstHop(i, srcIdx, parent)
			table.Add(topology.RoutingField{
				Dest: m.Addr,
				Next: topo.Graph.Device(hop).Address(),
			})
		}
		router.Table = table
	}
	return nil
}

// Distance returns the shortest-path distance from source to dest in topo,
// for use by callers (notably tests) that want to cross-check a router's
// routing table against an independently computed distance.
func Distance(topo *topology.Topology, source, dest topology.Address) (float64, bool) {
	srcIdx, ok := topo.Index.Lookup(source)
	if !ok {
		return 0, false
	}
	dstIdx, ok := topo.Index.Lookup(dest)
	if !ok {
		return 0, false
	}
	dist, _ := shortestPathsFrom(topo.Graph, srcIdx)
	if math.IsInf(dist[dstIdx], 1) {
		return 0, false
	}
	return dist[dstIdx], true
}
