package ksyscall

import (
	"fmt"

	"github.com/xv7go/xv7core/internal/kernel/fs"
	"github.com/xv7go/xv7core/internal/kernel/proc"
)

// Fork implements fork() (spec §4.4): allocate a child slot, copy the
// parent's user memory into its page table, duplicate the trapframe (with
// the child's return-value register forced to zero), duplicate file
// descriptors and cwd, carry over the trace mask, priority, and (for LBS)
// tickets, set the parent pointer under the wait lock, and transition the
// child to RUNNABLE. Returns the child's PID as the parent's own return
// value.
func Fork(d Deps, parent *proc.Process) (int, error) {
	child, err := d.Table.AllocProc()
	if err != nil {
		return -1, fmt.Errorf("ksyscall: fork: %w", err)
	}

	parent.Lock()
	sz := parent.Sz
	parentPT := parent.PageTable
	parentTF := parent.Trapframe
	mask := parent.Policy.Mask
	tickets := parent.Policy.Tickets
	priority := parent.Policy.Priority
	name := parent.Name
	files := parent.Files
	cwd := parent.Cwd
	parent.Unlock()

	if err := d.Mem.Copy(parentPT, child.PageTable, uintptr(sz)); err != nil {
		d.Table.FreeProc(child)
		child.Unlock()
		return -1, fmt.Errorf("ksyscall: fork: copying memory: %w", err)
	}
	child.Sz = sz
	child.Trapframe = parentTF.Clone()
	child.Trapframe.A0 = 0 // the child observes fork() returning 0
	child.Name = name
	child.Policy.Mask = mask
	child.Policy.Tickets = tickets
	child.Policy.Priority = priority
	for i, f := range files {
		if f == nil {
			continue
		}
		child.Files[i] = f.(fs.File).Dup()
	}
	child.Cwd = cwd

	d.Table.LockWait()
	child.Parent = parent
	d.Table.UnlockWait()

	child.State = proc.Runnable
	if d.Policy != nil {
		d.Policy.OnBecomeRunnable(child, d.Table.Clock().Now())
	}
	pid := child.PID
	child.Unlock()
	return pid, nil
}
