package trap

import (
	"github.com/xv7go/xv7core/internal/kernel/clock"
	"github.com/xv7go/xv7core/internal/kernel/proc"
	"github.com/xv7go/xv7core/internal/kernel/sched"
)

// KernelTrap implements kerneltrap() (spec §4.8): a trap taken while the
// kernel itself was running, the only interesting case being a timer
// interrupt arriving while p is RUNNING, which applies the active policy's
// preemption rule. The original also panics if the trap wasn't taken from
// supervisor mode or if interrupts were enabled on entry; this simulation
// has no sstatus register for either condition to be read off of, so there
// is nothing here to check — every caller of KernelTrap already is kernel
// code, by construction.
func KernelTrap(ev Event, p *proc.Process, tbl *proc.Table, policy sched.Policy, now clock.Tick) {
	if ev.Kind != KindTimer || p == nil {
		return
	}
	p.Lock()
	running := p.State == proc.Running
	p.Unlock()
	if !running {
		return
	}
	if shouldPreempt(tbl, p, policy, now) {
		sched.Yield(p, policy, now)
	}
}
