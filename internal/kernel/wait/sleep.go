// Package wait implements channel-based blocking (spec §4.3, component D):
// sleep/wakeup with atomic lock handoff, so that a wakeup racing a sleeper
// can never be lost.
package wait

import (
	"sync"

	"github.com/xv7go/xv7core/internal/kernel/clock"
	"github.com/xv7go/xv7core/internal/kernel/proc"
)

// Locker is anything sleep can release and reacquire around the blocking
// call — typically a *sync.Mutex standing in for the external lock named
// in spec §4.3 (e.g. the wait lock, for wait()/waitx()).
type Locker interface {
	Lock()
	Unlock()
}

var _ Locker = (*sync.Mutex)(nil)

// Sleep atomically releases external and blocks p until something calls
// Wakeup(ch) (or Kill wakes it directly). Spec §4.3: acquire slot lock,
// release external, set chan + SLEEPING, call sched; on wake, clear chan,
// release slot lock, reacquire external.
//
// The slot lock is released again right before Sched, not held across it:
// Sched's blocking handoff parks this goroutine until some scheduler
// Resumes it, and the only thing that can make that happen is Wakeup (or
// Kill) flipping this process back to RUNNABLE — which itself needs the
// slot lock. Holding it across the handoff would deadlock Wakeup against
// its own p.Lock(). What still rules out a lost wakeup is the order within
// the held section: chan and SLEEPING are both set *before* the unlock, and
// Wakeup takes the same lock before ever testing p.Chan, so a Wakeup that
// lands in the gap between this unlock and the Sched call simply flips the
// state a little early — Sched sees p already RUNNABLE and returns the
// first time some scheduler resumes it, rather than sleeping at all.
func Sleep(p *proc.Process, ch any, external Locker) {
	p.Lock()
	external.Unlock()

	setChan(p, ch)
	p.State = proc.Sleeping
	p.Unlock()

	p.Sched()

	p.Lock()
	setChan(p, nil)
	p.Unlock()

	external.Lock()
}

// setChan stores ch as the process's sleep channel. Sleep clears it with an
// untyped nil once the process resumes, so Chan reads as nil again when it
// is no longer sleeping; spec invariant 2 is state==SLEEPING iff chan!=0.
// A typed nil passed as ch is stored as a non-nil interface value.
func setChan(p *proc.Process, ch any) {
	p.Chan = ch
}

// Wakeup makes every process sleeping on ch RUNNABLE. Must not be called
// while the caller holds any slot lock (spec §4.3); the caller passed in is
// excluded from the scan the same way the original skips p == myproc().
func Wakeup(t *proc.Table, caller *proc.Process, hooks proc.PolicyHooks, now clock.Tick, ch any) {
	for _, p := range t.Slots() {
		if p == caller {
			continue
		}
		p.Lock()
		if p.State == proc.Sleeping && p.Chan == ch {
			// p clears its own Chan once it resumes inside Sleep, matching
			// the original: wakeup only flips the state, never touches
			// chan, so a racing second wakeup on a different channel
			// before the sleeper resumes still can't double-wake it (the
			// state test above stops matching once it's RUNNABLE).
			p.State = proc.Runnable
			if hooks != nil {
				hooks.OnBecomeRunnable(p, now)
			}
		}
		p.Unlock()
	}
}
