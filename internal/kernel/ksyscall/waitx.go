package ksyscall

import (
	"github.com/xv7go/xv7core/internal/kernel/proc"
	"github.com/xv7go/xv7core/internal/kernel/wait"
)

// Waitx implements waitx(addr, rtime_out, wtime_out) (spec §4.4): identical
// to Wait, plus it reports the reaped child's run_time and wait time
// (wtime = end_tick - in_tick - run_time, per spec §8 property 6) through
// report before the slot is freed.
func Waitx(d Deps, caller *proc.Process, addr uintptr, copyOut func(addr uintptr, xstate int) error, report func(rtime, wtime uint64)) (int, error) {
	d.Table.LockWait()
	for {
		havekids := false
		for _, child := range d.Table.Slots() {
			if child.Parent != caller {
				continue
			}
			child.Lock()
			havekids = true
			if child.State == proc.Zombie {
				pid := child.PID
				xstate := child.Xstate
				rtime := child.RunTime
				wtime := uint64(child.EndTick-child.InTick) - rtime
				d.Table.FreeProc(child)
				child.Unlock()
				d.Table.UnlockWait()
				if report != nil {
					report(rtime, wtime)
				}
				if copyOut != nil {
					if err := copyOut(addr, xstate); err != nil {
						return -1, err
					}
				}
				return pid, nil
			}
			child.Unlock()
		}

		caller.Lock()
		killed := caller.Killed
		caller.Unlock()

		if !havekids || killed {
			d.Table.UnlockWait()
			return -1, ErrNoChildren
		}

		wait.Sleep(caller, caller, waitLocker{d.Table})
	}
}
