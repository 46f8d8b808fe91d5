package topology

import (
	"golang.org/x/exp/slices"

	"github.com/iti/netsim/internal/container"
)

// Edge is one out-edge of a vertex: the index of the neighboring vertex and
// the non-negative weight of the link to it. Edges are inserted
// bidirectionally by the loader, so the graph is effectively undirected
// even though each direction is stored as its own Edge value.
type Edge struct {
	To     int
	Weight float64
}

// Vertex is one node of the Graph: the device it carries plus its list of
// out-edges.
type Vertex struct {
	Device Device
	Edges  []*Edge
}

// Graph is an indexed, append-only sequence of vertices plus their
// out-edges. Vertex indices are stable for the lifetime of the topology —
// no vertex is ever removed once the loader has placed it (spec.md §3).
type Graph struct {
	vertices []*Vertex
}

// NewGraph constructs an empty Graph.
func NewGraph() *Graph {
	return &Graph{}
}

// AddVertex appends a new vertex carrying dev and returns its index.
func (g *Graph) AddVertex(dev Device) int {
	g.vertices = append(g.vertices, &Vertex{Device: dev})
	return len(g.vertices) - 1
}

// NumVertices returns the number of vertices in the graph.
func (g *Graph) NumVertices() int {
	return len(g.vertices)
}

// Vertex returns the vertex at index i.
func (g *Graph) Vertex(i int) *Vertex {
	return g.vertices[i]
}

// Device returns the device carried by the vertex at index i.
func (g *Graph) Device(i int) Device {
	return g.vertices[i].Device
}

// edgeTo returns the Edge from vertex a to vertex b, if one already
// exists. Uses slices.IndexFunc for the membership scan, matching net.go's
// own reach for golang.org/x/exp/slices over a hand-rolled loop.
func (g *Graph) edgeTo(a, b int) *Edge {
	edges := g.vertices[a].Edges
	i := slices.IndexFunc(edges, func(e *Edge) bool { return e.To == b })
	if i < 0 {
		return nil
	}
	return edges[i]
}

// InsertEdge adds a symmetric edge between a and b with the given weight.
// It is a no-op if an edge between a and b already exists in either
// direction (spec.md §4.3).
func (g *Graph) InsertEdge(a, b int, weight float64) {
	if g.edgeTo(a, b) != nil {
		return
	}
	g.vertices[a].Edges = append(g.vertices[a].Edges, &Edge{To: b, Weight: weight})
	g.vertices[b].Edges = append(g.vertices[b].Edges, &Edge{To: a, Weight: weight})
}

// GetEdge returns a mutable handle to the edge from a to b, if present.
// Because edges are stored by pointer, mutating the weight of the returned
// Edge updates the graph in place.
func (g *Graph) GetEdge(a, b int) (*Edge, bool) {
	e := g.edgeTo(a, b)
	if e == nil {
		return nil, false
	}
	return e, true
}

// SetEdgeWeight updates both directions of the a-b edge to weight,
// reporting false if either direction is absent (spec.md §4.7 `change
// edge`).
func (g *Graph) SetEdgeWeight(a, b int, weight float64) bool {
	ab := g.edgeTo(a, b)
	ba := g.edgeTo(b, a)
	if ab == nil || ba == nil {
		return false
	}
	ab.Weight = weight
	ba.Weight = weight
	return true
}

// Neighbors returns the out-edges of vertex v.
func (g *Graph) Neighbors(v int) []*Edge {
	return g.vertices[v].Edges
}

// AddressIndex is an ordered map from canonical address to vertex index,
// maintained in lockstep with the Graph (spec.md §3).
type AddressIndex struct {
	tree *container.SplayMap[Address, int]
}

// NewAddressIndex constructs an empty AddressIndex.
func NewAddressIndex() *AddressIndex {
	return &AddressIndex{tree: container.NewSplayMap[Address, int]()}
}

// Insert records that addr maps to vertex index idx, returning false if
// addr is already present (duplicate addresses are a fatal load error,
// spec.md §4.4).
func (ix *AddressIndex) Insert(addr Address, idx int) bool {
	return ix.tree.Insert(addr.Canonical(), idx)
}

// Lookup returns the vertex index for addr, and whether addr is known.
func (ix *AddressIndex) Lookup(addr Address) (int, bool) {
	return ix.tree.Search(addr.Canonical())
}

// Addresses returns every known address in ascending order.
func (ix *AddressIndex) Addresses() []Address {
	entries := ix.tree.Walk()
	out := make([]Address, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}
	return out
}

// Len returns the number of addresses indexed.
func (ix *AddressIndex) Len() int {
	return ix.tree.Len()
}
