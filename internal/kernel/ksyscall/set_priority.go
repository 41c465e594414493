package ksyscall

import (
	"errors"

	"github.com/xv7go/xv7core/internal/kernel/clock"
	"github.com/xv7go/xv7core/internal/kernel/proc"
	"github.com/xv7go/xv7core/internal/kernel/sched"
)

// ErrNotPBS is returned by SetPriority when the active policy isn't PBS.
var ErrNotPBS = errors.New("ksyscall: set_priority: active policy is not pbs")

// SetPriority implements set_priority(new, pid) (spec §4.5, §6): delegates
// to PBS.SetPriority, which rejects out-of-range values, swaps the target's priority,
// and yields the caller (not the target) if the priority dropped — see
// spec §9's resolution of the original's locking bug.
func SetPriority(d Deps, caller *proc.Process, newPriority, pid int, now clock.Tick) (int, error) {
	pbs, ok := d.Policy.(sched.PBS)
	if !ok {
		return -1, ErrNotPBS
	}
	return pbs.SetPriority(d.Table, caller, pid, newPriority, now)
}
