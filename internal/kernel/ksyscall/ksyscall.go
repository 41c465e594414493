// Package ksyscall implements the syscall entry points spec §6 names as
// "provided to user space": fork, exit, wait, waitx, kill, yield,
// settickets, set_priority, sigalarm, sigreturn, trace. There is no real
// syscall-number table or user/kernel register ABI in this simulation (both
// are out of this core's scope); each function here takes the calling
// *proc.Process directly, the same way trap.Syscall hands off a trapped
// syscall to whatever dispatches it.
package ksyscall

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/xv7go/xv7core/internal/kernel/fs"
	"github.com/xv7go/xv7core/internal/kernel/mm"
	"github.com/xv7go/xv7core/internal/kernel/proc"
	"github.com/xv7go/xv7core/internal/kernel/sched"
)

// ErrNoChildren is returned by Wait/Waitx when the caller has no children
// left to reap, or is itself killed (spec §4.4).
var ErrNoChildren = errors.New("ksyscall: no children to wait for")

// ErrNoSuchProcess is returned by Kill when no slot carries the given PID.
var ErrNoSuchProcess = errors.New("ksyscall: no such process")

// Deps collects every collaborator a syscall entry point needs. It is not
// itself the Kernel type (internal/kernel/kernel.go) — root wiring lives
// there, grounded in the teacher's own "small struct of interfaces, built
// once in a constructor" shape — and Kernel.Deps builds one from the
// kernel's own table and configuration.
type Deps struct {
	Table  *proc.Table
	Mem    mm.Memory
	FS     fs.FileSystem
	Policy sched.Policy
	Log    zerolog.Logger
}

// waitLocker adapts Table's named wait-lock methods to wait.Locker, which
// only knows about Lock/Unlock (it's generic over whatever external lock a
// sleeper is parked under — here, spec's wait lock).
type waitLocker struct{ t *proc.Table }

func (w waitLocker) Lock()   { w.t.LockWait() }
func (w waitLocker) Unlock() { w.t.UnlockWait() }
