package ksyscall

import (
	"errors"

	"github.com/xv7go/xv7core/internal/kernel/proc"
	"github.com/xv7go/xv7core/internal/kernel/sched"
)

// ErrNotLBS is returned by SetTickets when the active policy isn't LBS;
// the syscall only has meaning when the build-time policy choice (spec
// §6) selected Lottery.
var ErrNotLBS = errors.New("ksyscall: settickets: active policy is not lbs")

// SetTickets implements settickets(n) (spec §4.5, §6): sets the calling
// process's own ticket count and returns the previous value.
func SetTickets(d Deps, p *proc.Process, n int) (int, error) {
	lbs, ok := d.Policy.(*sched.LBS)
	if !ok {
		return -1, ErrNotLBS
	}
	p.Lock()
	defer p.Unlock()
	return lbs.SetTickets(p, n), nil
}
