package control

import (
	"sync"
	"testing"
	"time"
)

func TestOnlyOneWorkerAtATime(t *testing.T) {
	p := New()
	if !p.TryStartWorker() {
		t.Fatal("first TryStartWorker should succeed")
	}
	if p.TryStartWorker() {
		t.Fatal("second TryStartWorker should fail while one is running")
	}
	p.FinishWorker()
	if !p.TryStartWorker() {
		t.Fatal("TryStartWorker should succeed again after FinishWorker")
	}
}

func TestStopClearsRunFlag(t *testing.T) {
	p := New()
	p.TryStartWorker()
	if !p.ShouldContinue() {
		t.Fatal("expected ShouldContinue true right after start")
	}
	p.Stop()
	if p.ShouldContinue() {
		t.Fatal("expected ShouldContinue false after Stop")
	}
}

func TestShouldContinueLockedReflectsStop(t *testing.T) {
	p := New()
	p.TryStartWorker()

	p.Lock()
	if !p.ShouldContinueLocked() {
		t.Fatal("expected ShouldContinueLocked true right after start")
	}
	p.Unlock()

	p.Stop()

	p.Lock()
	if p.ShouldContinueLocked() {
		t.Fatal("expected ShouldContinueLocked false after Stop")
	}
	p.Unlock()
}

func TestStopAfterPauseOnSameGoroutineDoesNotDeadlock(t *testing.T) {
	p := New()
	p.TryStartWorker()

	// Reproduces the operator sequence "p" (pause, acquires mu) then "q"
	// (stop), both issued by the same caller without an intervening
	// Unlock: Stop must not itself try to acquire mu, or this never
	// returns (mu is not reentrant).
	done := make(chan struct{})
	go func() {
		p.Lock()
		p.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() deadlocked against a lock held by its own caller")
	}

	if p.ShouldContinue() {
		t.Fatal("expected ShouldContinue false after Stop")
	}
}

func TestPauseBlocksWorkerBetweenYields(t *testing.T) {
	p := New()
	p.TryStartWorker()

	var mu sync.Mutex
	var hops int

	p.Lock() // worker holds the lock for the first hop
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 3; i++ {
			mu.Lock()
			hops++
			mu.Unlock()
			p.Yield(func() { time.Sleep(time.Millisecond) })
		}
		p.Unlock()
	}()

	// let the worker get going, then pause by acquiring the lock
	time.Sleep(20 * time.Millisecond)
	p.Lock()
	mu.Lock()
	hopsAtPause := hops
	mu.Unlock()

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	hopsAfterPauseWait := hops
	mu.Unlock()
	if hopsAfterPauseWait != hopsAtPause {
		t.Fatalf("worker progressed while plane was paused: %d -> %d", hopsAtPause, hopsAfterPauseWait)
	}

	p.Unlock() // resume
	<-done

	mu.Lock()
	finalHops := hops
	mu.Unlock()
	if finalHops != 3 {
		t.Fatalf("expected all 3 hops to complete after resume, got %d", finalHops)
	}
}
