package sched

import (
	"github.com/xv7go/xv7core/internal/kernel/clock"
	"github.com/xv7go/xv7core/internal/kernel/proc"
)

// RR is the Round-Robin policy (spec §4.5): linear sweep, first RUNNABLE
// slot wins, preempted by every timer tick.
type RR struct{}

func (RR) Name() string { return "rr" }

func (RR) OnAllocProc(p *proc.Process)                      {}
func (RR) OnBecomeRunnable(p *proc.Process, now clock.Tick) {}
func (RR) OnBecomeRunning(p *proc.Process, now clock.Tick)  {}
func (RR) OnYield(p *proc.Process, now clock.Tick)          {}
func (RR) Ageing(t *proc.Table, now clock.Tick)             {}

func (RR) Pick(t *proc.Table) (*proc.Process, bool) {
	for _, p := range t.Slots() {
		p.Lock()
		if p.State == proc.Runnable {
			return p, true
		}
		p.Unlock()
	}
	return nil, false
}

// OnTick always preempts: every timer tick yields under RR.
func (RR) OnTick(t *proc.Table, p *proc.Process, now clock.Tick) bool { return true }
