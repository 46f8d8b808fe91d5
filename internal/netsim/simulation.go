// Package netsim wires together the topology, control plane, path log, and
// forwarding engine into one owned value per run. It is the Go realization
// of the teacher's process-global singleton (net.go's package-level
// `topoGraph`/`topoDevByID` maps), held here as a struct passed by pointer
// instead of package-level state, per spec.md's DESIGN NOTES §9.
package netsim

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/iti/netsim/internal/control"
	"github.com/iti/netsim/internal/forwarding"
	"github.com/iti/netsim/internal/mutate"
	"github.com/iti/netsim/internal/pathlog"
	"github.com/iti/netsim/internal/planner"
	"github.com/iti/netsim/internal/topoload"
	"github.com/iti/netsim/internal/topology"
	"github.com/iti/netsim/pkg/netsimlog"
)

// Simulation owns everything one netsim process needs: the loaded
// topology, the coordination plane, the path log, the forwarding engine
// bound to all three, and the logger every command is reported through.
type Simulation struct {
	Topo   *topology.Topology
	Plane  *control.Plane
	Paths  *pathlog.Log
	Engine *forwarding.Engine
	Log    *logrus.Logger
}

// New loads a topology from r using the given table-kind, plans its
// initial routing tables, and wires a control plane, path log, and
// forwarding engine around it, per spec.md §6's startup sequence (menu
// choice, fixed topology file) generalized into a constructor.
func New(r io.Reader, kind topology.TableKind, pathLogFile string, log *logrus.Logger) (*Simulation, error) {
	if log == nil {
		log = netsimlog.New("info", nil)
	}

	topo, err := topoload.LoadTopology(r, kind)
	if err != nil {
		return nil, err
	}
	if err := planner.Plan(topo); err != nil {
		return nil, err
	}

	plane := control.New()
	paths := pathlog.New(pathLogFile)
	eng := forwarding.New(topo, plane, paths, log)

	return &Simulation{
		Topo:   topo,
		Plane:  plane,
		Paths:  paths,
		Engine: eng,
		Log:    log,
	}, nil
}

// Running reports whether the forwarding engine's background worker is
// currently active.
func (s *Simulation) Running() bool {
	return s.Plane.Running()
}

// SendMsg starts a simulation run from a message file, per spec.md §4.7
// `send msg <file>`.
func (s *Simulation) SendMsg(r io.Reader) (queued int, warning string, err error) {
	queued, warning, err = mutate.SendMessages(s.Topo, s.Plane, s.Engine, r)
	if err != nil {
		s.Log.WithError(err).Warn("send msg failed")
		return 0, "", err
	}
	if warning != "" {
		s.Log.Warn(warning)
	} else {
		s.Log.WithField("count", queued).Info("send msg: simulation started")
	}
	return queued, warning, nil
}

// ChangeRoutingTable applies a batch of add/remove edits to one router's
// table, per spec.md §4.7 `change rt`.
func (s *Simulation) ChangeRoutingTable(router topology.Address, kind mutate.RoutingEditKind, fields []topoload.RoutingFieldRecord) error {
	if err := mutate.ChangeRoutingTable(s.Topo, router, kind, fields); err != nil {
		s.Log.WithError(err).Warn("change rt failed")
		return err
	}
	s.Log.WithField("router", router).Info("change rt applied")
	return nil
}

// ChangeEdge updates one link's weight and re-plans, per spec.md §4.7
// `change edge <A> <B> <w>`.
func (s *Simulation) ChangeEdge(a, b topology.Address, weight float64) error {
	if err := mutate.ChangeEdge(s.Topo, a, b, weight); err != nil {
		s.Log.WithError(err).Warn("change edge failed")
		return err
	}
	s.Log.WithFields(logrus.Fields{"a": a, "b": b, "weight": weight}).Info("change edge applied")
	return nil
}

// ChangeEdgeFile applies a bulk adjacency-matrix edge update and re-plans,
// per spec.md §4.7 `change edge <file>`.
func (s *Simulation) ChangeEdgeFile(r io.Reader) (applied int, warning string, err error) {
	applied, warning, err = mutate.ChangeEdgeFile(s.Topo, r)
	if err != nil {
		s.Log.WithError(err).Warn("change edge file failed")
		return 0, "", err
	}
	if warning != "" {
		s.Log.Warn(warning)
	} else {
		s.Log.WithField("count", applied).Info("change edge file applied")
	}
	return applied, warning, nil
}

// PrintPath queries the path log, per spec.md §4.7 `print path`.
func (s *Simulation) PrintPath(src, dst string) ([]string, error) {
	lines, err := mutate.PrintPath(s.Paths, src, dst)
	if err != nil {
		s.Log.WithError(err).Warn("print path failed")
		return nil, err
	}
	return lines, nil
}

// Pause toggles the operator pause/resume command (spec.md §5 `p`): the
// first call acquires the control plane's lock, freezing the worker
// between hops; the second call releases it. It reports the state
// reached.
func (s *Simulation) Pause() (paused bool) {
	if s.Plane.LockFlag() {
		s.Plane.Unlock()
		s.Plane.SetLockFlag(false)
		return false
	}
	s.Plane.Lock()
	s.Plane.SetLockFlag(true)
	return true
}

// Stop issues the operator quit command (spec.md §5 `q`): clears the
// control plane's run flag so the worker exits at its next check.
func (s *Simulation) Stop() {
	s.Plane.Stop()
}

// String reports a one-line summary of the simulation's topology size, for
// the operator shell's startup banner.
func (s *Simulation) String() string {
	return fmt.Sprintf("%d devices (%d machines, %d routers)",
		s.Topo.Graph.NumVertices(), len(s.Topo.Machines()), len(s.Topo.Routers()))
}
