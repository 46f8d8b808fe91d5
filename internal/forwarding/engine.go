// Package forwarding implements the Forwarding Engine (spec.md §4.6): a
// discrete-cycle worker that steps every device in graph order, moving
// messages along their planned routes one hop per device per cycle, and
// yielding the control plane's lock between hops so the operator shell can
// suspend or mutate state mid-run. Grounded on the teacher's transition.go
// per-device per-hop state stepping and trace.go's append-on-event logging,
// translated from event-scheduled (evtm) to the control package's
// cooperative mutex+sleep idiom.
package forwarding

import (
	"fmt"
	"time"

	"github.com/iti/netsim/internal/control"
	"github.com/iti/netsim/internal/pathlog"
	"github.com/iti/netsim/internal/topology"
	"github.com/sirupsen/logrus"
)

// TickInterval is the wall-clock sleep each yield performs, standing in for
// the ~1s simulated tick spec.md §4.6 calls for.
var TickInterval = time.Second

// Engine drives one topology's forwarding cycle loop.
type Engine struct {
	topo  *topology.Topology
	plane *control.Plane
	paths *pathlog.Log
	log   *logrus.Logger
}

// New constructs an Engine over topo, coordinating with plane and appending
// deliveries to paths.
func New(topo *topology.Topology, plane *control.Plane, paths *pathlog.Log, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.New()
	}
	return &Engine{topo: topo, plane: plane, paths: paths, log: log}
}

// Run steps cycles until a cycle moves nothing and every queue is empty, or
// the control plane's runFlag is cleared (spec.md §4.6, §5). It is meant to
// run as the control plane's single background worker.
func (e *Engine) Run() error {
	e.plane.Lock()
	defer e.plane.Unlock()

	for e.plane.ShouldContinueLocked() {
		moved, err := e.stepCycle()
		if err != nil {
			e.log.WithError(err).Error("forwarding engine stopped on error")
			return err
		}
		if !moved && e.allQueuesEmpty() {
			return nil
		}
	}
	return nil
}

// allQueuesEmpty reports whether every device's queues hold no messages,
// the engine's natural termination condition (spec.md §4.6).
func (e *Engine) allQueuesEmpty() bool {
	for _, dev := range e.topo.Devices() {
		switch d := dev.(type) {
		case *topology.Machine:
			if !d.Inbound.Empty() || !d.Outbound.Empty() {
				return false
			}
		case *topology.Router:
			if !d.Inbound.Empty() || !d.Outbound.Empty() {
				return false
			}
		}
	}
	return true
}

// stepCycle performs one pass over every device in graph order, reporting
// whether any device made progress (moved or delivered a message).
func (e *Engine) stepCycle() (bool, error) {
	moved := false
	for _, dev := range e.topo.Devices() {
		if !e.plane.ShouldContinueLocked() {
			return moved, nil
		}
		var stepped bool
		var err error
		switch d := dev.(type) {
		case *topology.Machine:
			stepped, err = e.stepMachine(d)
		case *topology.Router:
			stepped, err = e.stepRouter(d)
		}
		if err != nil {
			return moved, err
		}
		if stepped {
			moved = true
		}
	}
	return moved, nil
}

// stepMachine performs one machine step: pick up from inbound, then act on
// the outbound head as originator, destination, or pass-through (spec.md
// §4.6).
func (e *Engine) stepMachine(m *topology.Machine) (bool, error) {
	if msg, ok := m.Inbound.Dequeue(); ok {
		m.Outbound.Enqueue(msg)
	}

	msg, ok := m.Outbound.Front()
	if !ok {
		return false, nil
	}

	switch {
	case msg.Src == m.Addr:
		router, _, ok := e.topo.RouterAt(m.RouterAddr)
		if !ok {
			m.Outbound.Dequeue()
			e.log.WithFields(logrus.Fields{"msg": msg.ID, "at": m.Addr}).
				Warn("dropped: machine has no attached router")
			return true, nil
		}
		msg.Hop(router.Addr)
		m.Outbound.Dequeue()
		router.Inbound.Enqueue(msg)
		e.log.WithFields(logrus.Fields{"msg": msg.ID, "from": m.Addr, "to": router.Addr}).Debug("originated")
		e.yield()
		return true, nil

	case msg.Dst == m.Addr:
		m.Outbound.Dequeue()
		e.log.WithFields(logrus.Fields{
			"msg":     msg.ID,
			"trace":   msg.TraceString(),
			"payload": msg.Payload,
		}).Info("delivered")
		if e.paths != nil {
			if err := e.paths.Append(msg.PathLogLine()); err != nil {
				return false, fmt.Errorf("append path log: %w", err)
			}
		}
		return true, nil

	default:
		// A message transiting a machine it neither originated nor is
		// destined for should not arise under well-formed routing
		// (spec.md §4.6); leave it queued rather than drop it.
		return false, nil
	}
}

// stepRouter performs one router step: pop the highest-priority inbound
// message, consult the routing table, and forward it to the next hop
// (spec.md §4.6).
func (e *Engine) stepRouter(r *topology.Router) (bool, error) {
	if msg, ok := r.Inbound.Dequeue(); ok {
		r.Outbound.Enqueue(msg)
	}

	msg, ok := r.Outbound.Front()
	if !ok {
		return false, nil
	}

	next, ok := r.Table.Lookup(msg.Dst)
	if !ok {
		r.Outbound.Dequeue()
		e.log.WithFields(logrus.Fields{"msg": msg.ID, "at": r.Addr, "dst": msg.Dst}).
			Warn("dropped: no route to destination")
		return true, nil
	}

	nextDev, _, ok := e.topo.DeviceAt(next)
	if !ok {
		r.Outbound.Dequeue()
		e.log.WithFields(logrus.Fields{"msg": msg.ID, "at": r.Addr, "next": next}).
			Warn("dropped: routing table names unknown device")
		return true, nil
	}

	msg.Hop(next)
	r.Outbound.Dequeue()
	switch nd := nextDev.(type) {
	case *topology.Router:
		nd.Inbound.Enqueue(msg)
	case *topology.Machine:
		nd.Inbound.Enqueue(msg)
	}
	e.log.WithFields(logrus.Fields{"msg": msg.ID, "at": r.Addr, "to": next}).Debug("forwarded")
	e.yield()
	return true, nil
}

// yield releases the control plane's lock for one simulated tick, giving a
// paused or mutating operator a window to run, then reacquires it (spec.md
// §4.6, §5).
func (e *Engine) yield() {
	e.plane.Yield(func() { time.Sleep(TickInterval) })
}
