package ksyscall

import "github.com/xv7go/xv7core/internal/kernel/proc"

// Trace implements trace(mask) (spec §6): sets the calling process's
// syscall trace bitmap, inherited by children across Fork the same way
// Fork already carries Policy.Mask over.
func Trace(p *proc.Process, mask uint64) int {
	p.Lock()
	defer p.Unlock()
	p.Policy.Mask = mask
	return 0
}
