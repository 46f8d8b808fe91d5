// Package control implements the mutex/flag coordination between the
// forwarding engine's background worker and the operator's foreground
// command loop (spec.md §4.8, §5). The teacher's own simulator is
// single-threaded and event-scheduled (no goroutines), so this package's
// goroutine+sync.Mutex idiom is grounded instead on the wider retrieval
// pack's background-worker style (e.g. dep2p-go-dep2p's node.go).
package control

import (
	"sync"
	"sync/atomic"
)

// Plane is the single mutex plus the two coordination booleans spec.md
// §4.8 names: runFlag authorizes the worker to continue, lockFlag records
// whether the worker currently holds mu (so the operator's pause command
// can simply acquire mu itself to freeze progress). runFlag and lockFlag
// are atomics rather than mu-guarded fields precisely so that Stop (the
// operator's `q`) never needs to acquire mu itself — the operator may
// already hold mu via Pause (`p`) when `q` is issued, and mu is not
// reentrant.
type Plane struct {
	mu      sync.Mutex
	running bool // true while a worker goroutine is alive

	runFlag  atomic.Bool
	lockFlag atomic.Bool
}

// New constructs an idle Plane with no worker running.
func New() *Plane {
	return &Plane{}
}

// TryStartWorker reports whether the caller may become the plane's single
// background worker, setting runFlag if so. There is exactly one
// background worker at any time (spec.md §4.8).
func (p *Plane) TryStartWorker() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return false
	}
	p.running = true
	p.runFlag.Store(true)
	return true
}

// FinishWorker marks the plane as having no active worker, called by the
// worker goroutine as it exits.
func (p *Plane) FinishWorker() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	p.runFlag.Store(false)
	p.lockFlag.Store(false)
}

// Running reports whether a worker is currently active.
func (p *Plane) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// ShouldContinue reports whether the worker is still authorized to run,
// checked between cycles (spec.md §5).
func (p *Plane) ShouldContinue() bool {
	return p.runFlag.Load()
}

// ShouldContinueLocked is ShouldContinue for a caller that already holds mu
// (the forwarding engine's worker loop, which holds the lock across every
// step except while inside Yield). Kept as a distinct name at call sites for
// clarity about holding the lock; runFlag itself no longer needs mu to read.
func (p *Plane) ShouldContinueLocked() bool {
	return p.runFlag.Load()
}

// Stop clears runFlag; the worker exits at its next check (operator
// command `q`, spec.md §5). Stop deliberately never touches mu: `q` is
// valid operator input at any time, including while the operator's own
// `p` (pause) has mu held on this same goroutine, and mu is not
// reentrant — Stop must be able to take effect without waiting on (or
// deadlocking against) that lock.
func (p *Plane) Stop() {
	p.runFlag.Store(false)
}

// Yield is the worker's per-hop suspension point: it releases mu, allowing
// a paused operator (or any command holding mu) to proceed, then
// reacquires it before continuing (spec.md §4.6, §5). sleep is called
// while mu is released, standing in for the ~1s wall-clock tick spec.md
// §4.6 calls for.
func (p *Plane) Yield(sleep func()) {
	p.mu.Unlock()
	if sleep != nil {
		sleep()
	}
	p.mu.Lock()
}

// Lock acquires the plane's mutex. The worker holds it for the duration of
// each hop step; the operator's `p` (pause) command acquires it between
// hops to freeze progress, and mutation commands acquire it to serialize
// against the engine (spec.md §5).
func (p *Plane) Lock() {
	p.mu.Lock()
}

// Unlock releases the plane's mutex.
func (p *Plane) Unlock() {
	p.mu.Unlock()
}

// SetLockFlag records whether the worker currently holds mu, bookkeeping
// the operator side of pause/resume needs to decide whether acquiring mu
// will actually block (spec.md §4.8).
func (p *Plane) SetLockFlag(held bool) {
	p.lockFlag.Store(held)
}

// LockFlag reports the last value SetLockFlag recorded.
func (p *Plane) LockFlag() bool {
	return p.lockFlag.Load()
}
