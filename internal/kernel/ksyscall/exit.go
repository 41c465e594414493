package ksyscall

import (
	"github.com/xv7go/xv7core/internal/kernel/fs"
	"github.com/xv7go/xv7core/internal/kernel/proc"
	"github.com/xv7go/xv7core/internal/kernel/wait"
)

// Exit implements exit(status) (spec §4.4): close every open file, release
// cwd, reparent children to initproc and wake it, record xstate and the
// ZOMBIE transition, wake the parent waiting in Wait/Waitx, and call sched
// — which never returns for a ZOMBIE process.
func Exit(d Deps, p *proc.Process, status int) {
	p.Lock()
	for i, f := range p.Files {
		if f == nil {
			continue
		}
		f.(fs.File).Close()
		p.Files[i] = nil
	}
	cwd := p.Cwd
	p.Cwd = nil
	p.Unlock()

	if cwd != nil {
		d.FS.BeginOp()
		d.FS.Iput(cwd.(fs.Inode))
		d.FS.EndOp()
	}

	now := d.Table.Clock().Now()
	d.Table.LockWait()
	d.Table.Reparent(p, func(ch any) {
		wait.Wakeup(d.Table, p, d.Policy, now, ch)
	})

	p.Lock()
	p.Xstate = status
	p.State = proc.Zombie
	p.EndTick = now
	parent := p.Parent
	p.Unlock()
	d.Table.UnlockWait()

	if parent != nil {
		wait.Wakeup(d.Table, p, d.Policy, now, parent)
	}

	p.Sched()
}
