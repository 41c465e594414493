package ksyscall_test

import (
	"testing"
	"time"

	"github.com/xv7go/xv7core/internal/kernel/proc"
)

const testTimeout = 2 * time.Second

// runOnce puts p in RUNNING and resumes its goroutine exactly once,
// returning once p has either called Sched (parking again) or finished.
// Grounded on internal/kernel/wait/sleep_test.go's identically-named
// helper: the minimal one-shot "scheduler" needed to drive the
// context-switch protocol deterministically without a live sched.Scheduler
// loop (see proc.context's doc comment).
func runOnce(t *testing.T, p *proc.Process) {
	t.Helper()
	p.Lock()
	p.State = proc.Running
	p.Unlock()

	done := make(chan struct{})
	go func() {
		p.Resume()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(testTimeout):
		t.Fatal("Resume never returned")
	}
}
