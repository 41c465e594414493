// Package trap implements the trap-dispatch core (spec §4.8): routing a
// trapped event to syscall dispatch, copy-on-write page-fault resolution,
// timer-driven preemption, and alarm delivery. There is no real RISC-V
// trapframe trampoline behind any of this — a harness (cmd/xv7sim, or a
// test) decides what kind of trap fired and hands it to UserTrap/KernelTrap
// as an Event, the same way a real trampoline would have decoded
// scause/stval for it.
package trap

import (
	"github.com/xv7go/xv7core/internal/kernel/clock"
	"github.com/xv7go/xv7core/internal/kernel/mm"
	"github.com/xv7go/xv7core/internal/kernel/proc"
	"github.com/xv7go/xv7core/internal/kernel/sched"
)

// Kind is this simulation's stand-in for a decoded scause (spec §4.8).
type Kind int

const (
	// KindSyscall corresponds to scause == 8.
	KindSyscall Kind = iota
	// KindPageFault corresponds to scause == 13 or scause == 15.
	KindPageFault
	// KindTimer corresponds to devintr() returning 2.
	KindTimer
	// KindDevice corresponds to devintr() returning 1: a recognised,
	// non-timer device interrupt. This core does not model any real device
	// (UART, virtio), so there is nothing further to dispatch.
	KindDevice
	// KindUnrecognized corresponds to devintr() returning 0.
	KindUnrecognized
)

// Event is what a real trap trampoline would have decoded scause/stval
// into.
type Event struct {
	Kind Kind
	// Fault is the faulting address; meaningful only when Kind is
	// KindPageFault.
	Fault uintptr
}

// Syscall dispatches a trapped syscall for p. The syscall-number table
// itself is out of this core's scope (SPEC_FULL §2); this is the hand-off
// point the original calls from usertrap()'s scause==8 branch.
type Syscall interface {
	Dispatch(p *proc.Process)
}

// Exiter reaches component G's exit(-1) without internal/kernel/trap
// importing the kernel package that implements it — the same non-cyclic
// callback shape proc.Table.Reparent uses for its wake function.
type Exiter func(p *proc.Process, status int)

// UserTrap implements usertrap() (spec §4.8). p must not be locked by the
// caller; UserTrap takes p's lock only for the instants the operations it
// dispatches to require it.
func UserTrap(ev Event, p *proc.Process, tbl *proc.Table, mem mm.Memory, sc Syscall, policy sched.Policy, exit Exiter, now clock.Tick) {
	switch ev.Kind {
	case KindSyscall:
		p.Lock()
		if p.Killed {
			p.Unlock()
			exit(p, -1)
			return
		}
		p.Trapframe.Epc += 4
		p.Unlock()
		if sc != nil {
			sc.Dispatch(p)
		}

	case KindPageFault:
		handlePageFault(ev, p, mem)

	case KindUnrecognized:
		p.Lock()
		p.Killed = true
		p.Unlock()

	case KindDevice, KindTimer:
		// ok: nothing further to dispatch for a recognised device
		// interrupt; timer handling (alarm + preemption) happens below,
		// same as the original's post-switch "which_dev == 2" check.
	}

	p.Lock()
	killed := p.Killed
	p.Unlock()
	if killed {
		exit(p, -1)
		return
	}

	if ev.Kind == KindTimer {
		applyAlarm(p, now)
		if shouldPreempt(tbl, p, policy, now) {
			sched.Yield(p, policy, now)
		}
	}
}

func handlePageFault(ev Event, p *proc.Process, mem mm.Memory) {
	p.Lock()
	sp := p.Trapframe.Sp
	pt := p.PageTable
	p.Unlock()

	if isFatalFault(ev.Fault, sp) {
		p.Lock()
		p.Killed = true
		p.Unlock()
		return
	}

	if err := resolveCOW(mem, pt, ev.Fault); err != nil {
		p.Lock()
		p.Killed = true
		p.Unlock()
	}
}

func shouldPreempt(tbl *proc.Table, p *proc.Process, policy sched.Policy, now clock.Tick) bool {
	p.Lock()
	defer p.Unlock()
	return policy.OnTick(tbl, p, now)
}
