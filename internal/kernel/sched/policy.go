// Package sched implements the five selectable scheduling policies and the
// per-CPU scheduler loop (spec §4.5, component E), plus yield (component F).
//
// Each policy is a strategy (spec §9 "Scheduler strategy"): it owns the
// PolicyFields a process carries for its algorithm, and the scheduler loop
// itself never branches on which policy is active. This replaces the
// original's repeated #ifdef RR/FCFS/LBS/PBS/MLFQ blocks scattered across
// scheduler(), yield(), wakeup(), kill() and the trap handlers with one
// implementation of Policy selected once at kernel construction time.
package sched

import (
	"github.com/xv7go/xv7core/internal/kernel/clock"
	"github.com/xv7go/xv7core/internal/kernel/proc"
)

// Policy is implemented by each of RR, FCFS, LBS, PBS and MLFQ.
type Policy interface {
	proc.PolicyHooks

	// Name identifies the policy, e.g. for logging and cmd/xv7sim's -policy
	// flag.
	Name() string

	// Pick scans t for a process to run next and returns it locked (state
	// still RUNNABLE, not yet transitioned), or false if none is RUNNABLE.
	Pick(t *proc.Table) (*proc.Process, bool)

	// OnYield performs policy-specific bookkeeping for a RUNNING process
	// giving up the CPU voluntarily. Called with p locked and p.State
	// already set to Runnable, immediately before Sched.
	OnYield(p *proc.Process, now clock.Tick)

	// OnTick is called once per timer tick for the currently RUNNING
	// process, with p locked, and reports whether p should yield
	// immediately (spec §4.8's policy preemption rule).
	OnTick(t *proc.Table, p *proc.Process, now clock.Tick) bool

	// Ageing runs once per tick, from the clock's tick handler, over every
	// RUNNABLE slot in t (spec §4.5's MLFQ ageing pass). A no-op for every
	// policy but MLFQ.
	Ageing(t *proc.Table, now clock.Tick)
}
