package ksyscall

import "github.com/xv7go/xv7core/internal/kernel/proc"

// Sigalarm implements sigalarm(ticks, handler) (spec §4.7, §6): arms the
// calling process's alarm to fire every period ticks, redirecting user
// execution to handler. A period of zero disarms it, matching the
// original's "alarm(0, 0)" convention for cancelling a pending alarm.
func Sigalarm(p *proc.Process, period int, handler uintptr) int {
	p.Lock()
	defer p.Unlock()
	if period == 0 {
		p.Policy.Alarm = false
		p.Policy.AlarmTime = 0
		p.Policy.TickCount = 0
		p.Policy.InterruptFunction = 0
		return 0
	}
	p.Policy.AlarmTime = uint64(period)
	p.Policy.InterruptFunction = handler
	p.Policy.TickCount = 0
	p.Policy.Alarm = true
	return 0
}

// Sigreturn implements sigreturn (spec §4.7): restores the live trapframe
// from the shadow snapshot trap.applyAlarm took before redirecting to the
// handler, then re-arms the alarm so the next period fires again.
func Sigreturn(p *proc.Process) int {
	p.Lock()
	defer p.Unlock()
	*p.Trapframe = *p.SigTrapframe
	p.Policy.Alarm = true
	return int(p.Trapframe.A0)
}
