package ksyscall

import (
	"github.com/xv7go/xv7core/internal/kernel/clock"
	"github.com/xv7go/xv7core/internal/kernel/proc"
)

// Kill implements kill(pid) (spec §4.3): set the target's sticky killed
// flag; if it is SLEEPING, also make it RUNNABLE so it observes the flag
// the next time it would otherwise block, rather than sleeping forever.
// Termination itself happens lazily, at the victim's next trap return
// (spec §7 "Kill semantics").
func Kill(d Deps, pid int, now clock.Tick) error {
	for _, p := range d.Table.Slots() {
		p.Lock()
		if p.PID != pid {
			p.Unlock()
			continue
		}
		p.Killed = true
		if p.State == proc.Sleeping {
			p.State = proc.Runnable
			if d.Policy != nil {
				d.Policy.OnBecomeRunnable(p, now)
			}
		}
		p.Unlock()
		return nil
	}
	return ErrNoSuchProcess
}
