package ksyscall

import (
	"github.com/xv7go/xv7core/internal/kernel/proc"
	"github.com/xv7go/xv7core/internal/kernel/wait"
)

// Wait implements wait(addr) (spec §4.4): under the wait lock, scan for a
// ZOMBIE child; free it and return its PID, optionally copying its exit
// status through copyOut. If the caller has no children, or is killed,
// return -1 without sleeping. Otherwise sleep on the caller's own slot as
// the channel, and retry once woken (by a child's Exit, or Kill).
//
// copyOut stands in for copyout(p->pagetable, addr, ...) (spec §6): addr is
// opaque to this core, and a real syscall layer decides what it means.
func Wait(d Deps, caller *proc.Process, addr uintptr, copyOut func(addr uintptr, xstate int) error) (int, error) {
	d.Table.LockWait()
	for {
		// Invariant at the top of every iteration, including the first:
		// the wait lock is held. wait.Sleep below both releases and
		// reacquires it around the blocking call, so the lock is never
		// taken twice in a row here.
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
				d.Table.FreeProc(child)
				child.Unlock()
				d.Table.UnlockWait()
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
