package sched

import (
	"context"
	"runtime"

	"github.com/xv7go/xv7core/internal/kernel/clock"
	"github.com/xv7go/xv7core/internal/kernel/proc"
)

// CPU is the simulated stand-in for struct cpu, minus the
// interrupt-enable/preempt-depth bookkeeping this goroutine-based
// simulation has no use for (see proc.context's doc comment for why).
type CPU struct {
	ID      int
	Current *proc.Process
}

// Yield implements yield() (spec §4.2, component F): acquire the calling
// process's own lock, set it RUNNABLE, let the active policy do its
// bookkeeping (LBS: return tickets to the pool; MLFQ: demote on quantum
// expiry, reset residency), release the lock, and hand the CPU back to the
// scheduler via sched.
//
// The lock is released before Sched, not after: Sched blocks this goroutine
// until some CPU's Scheduler loop Picks this process again, and Pick needs
// the same lock to do it (see scheduler.go's Unlock-before-Resume comment
// for the matching half of this discipline).
func Yield(p *proc.Process, policy Policy, now clock.Tick) {
	p.Lock()
	p.State = proc.Runnable
	policy.OnYield(p, now)
	p.Unlock()
	p.Sched()
}

// Scheduler is the endless per-CPU loop (spec §4.5): pick a candidate under
// the active policy, transition it to RUNNING, switch it in, and on its
// return clear the CPU's current-process pointer. It returns when ctx is
// cancelled.
//
// Policy.Pick returns its candidate locked, the same way allocproc/wakeup
// hand off a locked slot in the original. That lock is released here
// *before* Resume, not after: unlike the original, where scheduler() and
// the process share one physical thread (so holding p->lock "across" swtch
// is really just holding it across a function-local pause), this
// simulation runs the process on its own goroutine, and only the channel
// handoff in proc.context — not a shared mutex — is what makes §5's "only
// one of {scheduler, process} runs at a time" invariant hold. Keeping the
// lock held into Resume would deadlock the first time the woken goroutine
// tried to re-lock p itself (e.g. from Yield).
//
// Unlike the original there is no top-of-loop "enable interrupts" step:
// this simulation has no interrupt-enable bit, and device interrupts are
// just function calls made by the trap harness on whichever goroutine is
// running at the time.
func Scheduler(ctx context.Context, cpu *CPU, t *proc.Table, policy Policy) {
	clk := t.Clock()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		p, ok := policy.Pick(t)
		if !ok {
			runtime.Gosched()
			continue
		}

		policy.OnBecomeRunning(p, clk.Now())
		p.State = proc.Running
		cpu.Current = p
		p.Unlock()

		p.Resume()

		cpu.Current = nil
	}
}
