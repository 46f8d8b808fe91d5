package netsim

import (
	"strings"
	"testing"
	"time"

	"github.com/iti/netsim/internal/forwarding"
	"github.com/iti/netsim/internal/topology"
)

const starMatrix = `,M1,M2,R1
M1,?,?,1
M2,?,?,1
R1,1,1,?
`

func TestSimulationEndToEndSendAndQuery(t *testing.T) {
	forwarding.TickInterval = time.Millisecond
	sim, err := New(strings.NewReader(starMatrix), topology.ListTableKind, t.TempDir()+"/paths.log", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	queued, warning, err := sim.SendMsg(strings.NewReader("1:0:M1:M2:hi\n"))
	if err != nil {
		t.Fatalf("SendMsg: %v", err)
	}
	if queued != 1 || warning != "" {
		t.Fatalf("queued=%d warning=%q", queued, warning)
	}

	deadline := time.Now().Add(2 * time.Second)
	for sim.Running() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if sim.Running() {
		t.Fatal("expected simulation to finish")
	}

	lines, err := sim.PrintPath("M1", "M2")
	if err != nil {
		t.Fatalf("PrintPath: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 delivered line, got %v", lines)
	}
}

func TestSimulationChangeEdgeRejectsUnknownLink(t *testing.T) {
	sim, err := New(strings.NewReader(starMatrix), topology.ListTableKind, t.TempDir()+"/paths.log", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := sim.ChangeEdge("M1", "M2", 3); err == nil {
		t.Fatal("expected error for nonexistent M1-M2 edge")
	}
}

func TestSimulationStopWhilePausedDoesNotDeadlock(t *testing.T) {
	forwarding.TickInterval = 20 * time.Millisecond
	sim, err := New(strings.NewReader(starMatrix), topology.ListTableKind, t.TempDir()+"/paths.log", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// A message that takes several hops, so the worker is reliably still
	// mid-flight (parked in a yield) when we pause it below.
	_, _, err = sim.SendMsg(strings.NewReader("1:0:M1:M2:hi\n"))
	if err != nil {
		t.Fatalf("SendMsg: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if !sim.Pause() {
		t.Fatal("expected Pause() to report paused=true")
	}

	// This is the operator's "p" then "q" sequence from spec.md §5: q is
	// valid at any time, including while paused. Stop must return without
	// blocking even though this same goroutine is holding the control
	// plane's lock via Pause.
	done := make(chan struct{})
	go func() {
		sim.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() deadlocked while the simulation was paused")
	}

	sim.Pause() // resume, letting the worker observe the cleared run flag

	deadline := time.Now().Add(2 * time.Second)
	for sim.Running() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if sim.Running() {
		t.Fatal("expected the worker to exit after stop + resume")
	}
}

func TestSimulationPauseTogglesLockFlag(t *testing.T) {
	sim, err := New(strings.NewReader(starMatrix), topology.ListTableKind, t.TempDir()+"/paths.log", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if paused := sim.Pause(); !paused {
		t.Fatal("expected first Pause() to report paused=true")
	}
	if paused := sim.Pause(); paused {
		t.Fatal("expected second Pause() to report paused=false (resumed)")
	}
}
