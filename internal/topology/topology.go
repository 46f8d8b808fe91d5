package topology

import "fmt"

// Topology is the complete, loaded state the rest of the simulator
// operates on: the weighted device graph, its address index, and the
// table representation chosen once at startup (spec.md §3, §6 menu).
type Topology struct {
	Graph     *Graph
	Index     *AddressIndex
	TableKind TableKind
}

// NewTopology constructs an empty Topology using the given routing-table
// representation for every router created in it.
func NewTopology(kind TableKind) *Topology {
	return &Topology{
		Graph:     NewGraph(),
		Index:     NewAddressIndex(),
		TableKind: kind,
	}
}

// AddDevice creates a vertex for dev, indexing it by address. It panics if
// addr is already present — duplicate addresses are a loader-time fatal
// error and should be checked by the caller before reaching here so that a
// proper diagnostic (not a panic) surfaces to the operator.
func (t *Topology) AddDevice(dev Device) int {
	idx := t.Graph.AddVertex(dev)
	if !t.Index.Insert(dev.Address(), idx) {
		panic(fmt.Sprintf("duplicate address %s added to topology", dev.Address()))
	}
	return idx
}

// DeviceAt returns the device and vertex index for addr.
func (t *Topology) DeviceAt(addr Address) (Device, int, bool) {
	idx, ok := t.Index.Lookup(addr)
	if !ok {
		return nil, 0, false
	}
	return t.Graph.Device(idx), idx, true
}

// MachineAt returns the Machine and vertex index for addr, failing if addr
// is absent or names a Router.
func (t *Topology) MachineAt(addr Address) (*Machine, int, bool) {
	dev, idx, ok := t.DeviceAt(addr)
	if !ok {
		return nil, 0, false
	}
	m, ok := dev.(*Machine)
	return m, idx, ok
}

// RouterAt returns the Router and vertex index for addr, failing if addr
// is absent or names a Machine.
func (t *Topology) RouterAt(addr Address) (*Router, int, bool) {
	dev, idx, ok := t.DeviceAt(addr)
	if !ok {
		return nil, 0, false
	}
	r, ok := dev.(*Router)
	return r, idx, ok
}

// Machines returns every Machine in the topology, in graph (vertex index)
// order.
func (t *Topology) Machines() []*Machine {
	var out []*Machine
	for i := 0; i < t.Graph.NumVertices(); i++ {
		if m, ok := t.Graph.Device(i).(*Machine); ok {
			out = append(out, m)
		}
	}
	return out
}

// Routers returns every Router in the topology, in graph (vertex index)
// order.
func (t *Topology) Routers() []*Router {
	var out []*Router
	for i := 0; i < t.Graph.NumVertices(); i++ {
		if r, ok := t.Graph.Device(i).(*Router); ok {
			out = append(out, r)
		}
	}
	return out
}

// Devices returns every device in the topology, in graph (vertex index)
// order — the order the forwarding engine steps through each cycle
// (spec.md §4.6).
func (t *Topology) Devices() []Device {
	out := make([]Device, t.Graph.NumVertices())
	for i := range out {
		out[i] = t.Graph.Device(i)
	}
	return out
}

// ValidateMachineEdges checks the invariant that every machine has exactly
// one incident edge, and that edge's other endpoint is a router. Violation
// is fatal at planning time (spec.md §3, §4.5, §7).
func (t *Topology) ValidateMachineEdges() error {
	for i := 0; i < t.Graph.NumVertices(); i++ {
		m, ok := t.Graph.Device(i).(*Machine)
		if !ok {
			continue
		}
		edges := t.Graph.Neighbors(i)
		if len(edges) != 1 {
			return NewFatalError("validate-topology",
				fmt.Errorf("machine %s has %d incident edges, want exactly 1", m.Addr, len(edges)))
		}
		other := t.Graph.Device(edges[0].To)
		if other.Kind() != RouterKind {
			return NewFatalError("validate-topology",
				fmt.Errorf("machine %s's sole link is to %s, not a router", m.Addr, other.Address()))
		}
	}
	return nil
}

// AttachMachinesToRouters sets every Machine's RouterAddr field from its
// sole incident edge. ValidateMachineEdges must have passed first.
func (t *Topology) AttachMachinesToRouters() {
	for i := 0; i < t.Graph.NumVertices(); i++ {
		m, ok := t.Graph.Device(i).(*Machine)
		if !ok {
			continue
		}
		edges := t.Graph.Neighbors(i)
		if len(edges) != 1 {
			continue
		}
		m.RouterAddr = t.Graph.Device(edges[0].To).Address()
	}
}
