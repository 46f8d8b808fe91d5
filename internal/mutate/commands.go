// Package mutate implements the operator's mutation commands (spec.md
// §4.7): routing-table edits, edge-weight changes, path-log queries, and
// starting a simulation run. Grounded on net.go's `setParam`/`matchParam`
// validated-mutation pattern — reject and leave state unchanged on any
// mismatch, rather than partially applying a command.
package mutate

import (
	"fmt"
	"io"

	"github.com/iti/netsim/internal/control"
	"github.com/iti/netsim/internal/forwarding"
	"github.com/iti/netsim/internal/pathlog"
	"github.com/iti/netsim/internal/planner"
	"github.com/iti/netsim/internal/topology"
	"github.com/iti/netsim/internal/topoload"
)

// CommandError is the second error tier of spec.md §7: a command-level
// failure that the operator shell reports while leaving all state
// unchanged.
type CommandError struct {
	Op  string
	Err error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func newCommandError(op string, err error) *CommandError {
	return &CommandError{Op: op, Err: err}
}

// RoutingEditKind distinguishes the two forms of `change rt`.
type RoutingEditKind int

const (
	RoutingAdd RoutingEditKind = iota
	RoutingRemove
)

// ChangeRoutingTable applies a batch of routing-field edits to the named
// router's table, per spec.md §4.7 `change rt <router> add|remove
// <fields>`. Edits are applied in input order; `add` cannot fail. If any
// `remove` fails to find a matching dest, the router's table is restored to
// its pre-command snapshot and the whole command fails. Successful edits do
// not trigger re-planning — an operator-initiated override is preserved
// until the next edge change or restart.
func ChangeRoutingTable(topo *topology.Topology, routerAddr topology.Address, kind RoutingEditKind, fields []topoload.RoutingFieldRecord) error {
	router, _, ok := topo.RouterAt(routerAddr)
	if !ok {
		return newCommandError("change rt", fmt.Errorf("unknown router %s", routerAddr))
	}

	snapshot := router.Table.Clone()
	for _, f := range fields {
		switch kind {
		case RoutingAdd:
			router.Table.Add(topology.RoutingField{Dest: f.Dest, Next: f.Next})
		case RoutingRemove:
			if !router.Table.RemoveByDest(f.Dest) {
				router.Table = snapshot
				return newCommandError("change rt",
					fmt.Errorf("remove: no entry for dest %s in router %s's table", f.Dest, routerAddr))
			}
		}
	}
	return nil
}

// ChangeEdge updates the weight of the A-B link in both directions, per
// spec.md §4.7 `change edge <A> <B> <w>`. On success it re-runs the
// planner across the whole topology. The edge must already exist; this
// command never creates new links.
func ChangeEdge(topo *topology.Topology, a, b topology.Address, weight float64) error {
	aIdx, ok := topo.Index.Lookup(a)
	if !ok {
		return newCommandError("change edge", fmt.Errorf("unknown address %s", a))
	}
	bIdx, ok := topo.Index.Lookup(b)
	if !ok {
		return newCommandError("change edge", fmt.Errorf("unknown address %s", b))
	}
	if !topo.Graph.SetEdgeWeight(aIdx, bIdx, weight) {
		return newCommandError("change edge", fmt.Errorf("no edge between %s and %s", a, b))
	}
	if err := planner.Plan(topo); err != nil {
		return err
	}
	return nil
}

// ChangeEdgeFile parses a full adjacency matrix from r and applies every
// cell that differs from the current graph, per spec.md §4.7 `change edge
// <file>`. Parsing is all-or-nothing: a malformed weight or out-of-range
// vertex reference aborts with nothing applied. An empty change set is a
// soft warning (spec.md §7), not a failure. On success, each change is
// written to the existing link between its two devices and the planner
// re-runs once. applied is the number of differing cells: a link changed in
// both of its cells counts twice, and a cell naming a pair with no link is
// counted but creates no link.
func ChangeEdgeFile(topo *topology.Topology, r io.Reader) (applied int, warning string, err error) {
	changes, err := topoload.LoadEdgeChangeFile(r, topo)
	if err != nil {
		return 0, "", newCommandError("change edge", err)
	}
	if len(changes) == 0 {
		return 0, "no cell in the file differs from the current topology", nil
	}

	for _, c := range changes {
		aIdx, _ := topo.Index.Lookup(c.A)
		bIdx, _ := topo.Index.Lookup(c.B)
		topo.Graph.SetEdgeWeight(aIdx, bIdx, c.Weight)
	}
	if err := planner.Plan(topo); err != nil {
		return 0, "", err
	}
	return len(changes), "", nil
}

// PrintPath queries the run's path log for lines matching src and dst (each
// either an address or "*"), per spec.md §4.7 `print path`.
func PrintPath(log *pathlog.Log, src, dst string) ([]string, error) {
	lines, err := log.Query(src, dst)
	if err != nil {
		return nil, newCommandError("print path", err)
	}
	return lines, nil
}

// SendMessages parses a message file, enqueues every message into its
// source machine's inbound queue, and starts the forwarding engine as the
// control plane's single background worker, per spec.md §4.7 `send msg
// <file>`. An empty message file is a soft warning, not a failure
// (spec.md §7). If a worker is already running it returns an error before
// enqueuing anything; the caller is expected to have already checked this
// via plane.Running() before parsing input, but SendMessages enforces it too.
func SendMessages(topo *topology.Topology, plane *control.Plane, eng *forwarding.Engine, r io.Reader) (queued int, warning string, err error) {
	records, err := topoload.LoadMessages(r)
	if err != nil {
		return 0, "", newCommandError("send msg", err)
	}
	if len(records) == 0 {
		return 0, "message file is empty, nothing to send", nil
	}

	srcs := make([]*topology.Machine, len(records))
	for i, rec := range records {
		src, _, ok := topo.MachineAt(rec.Src)
		if !ok {
			return 0, "", newCommandError("send msg", fmt.Errorf("src %s is not a known machine", rec.Src))
		}
		if _, _, ok := topo.MachineAt(rec.Dst); !ok {
			return 0, "", newCommandError("send msg", fmt.Errorf("dst %s is not a known machine", rec.Dst))
		}
		srcs[i] = src
	}

	if !plane.TryStartWorker() {
		return 0, "", newCommandError("send msg", fmt.Errorf("a simulation is already running"))
	}
	for i, rec := range records {
		msg := topology.NewMessage(rec.ID, rec.Priority, rec.Src, rec.Dst, rec.Payload)
		srcs[i].Inbound.Enqueue(msg)
	}
	go func() {
		defer plane.FinishWorker()
		eng.Run()
	}()

	return len(records), "", nil
}
