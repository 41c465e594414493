package ksyscall

import (
	"github.com/xv7go/xv7core/internal/kernel/clock"
	"github.com/xv7go/xv7core/internal/kernel/proc"
	"github.com/xv7go/xv7core/internal/kernel/sched"
)

// Yield implements the yield() syscall (spec §6): a thin pass-through to
// component F's sched.Yield, kept here so every syscall entry point named
// in spec §6 has a home in this package even though the mechanism itself
// lives in sched.
func Yield(d Deps, p *proc.Process, now clock.Tick) {
	sched.Yield(p, d.Policy, now)
}
