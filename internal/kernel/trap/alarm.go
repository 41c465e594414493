package trap

import (
	"github.com/xv7go/xv7core/internal/kernel/clock"
	"github.com/xv7go/xv7core/internal/kernel/proc"
)

// applyAlarm implements the sigalarm half of a timer trap (spec §4.7): if an
// alarm is armed, advance the tick counter and, on reaching AlarmTime,
// snapshot the live trapframe into the shadow trapframe, disarm, and
// redirect the saved program counter at InterruptFunction so the next
// return to user mode runs the handler instead of resuming where it left
// off. p must not be locked by the caller.
func applyAlarm(p *proc.Process, now clock.Tick) {
	p.Lock()
	defer p.Unlock()

	if !p.Policy.Alarm {
		return
	}
	p.Policy.TickCount++
	if p.Policy.TickCount != p.Policy.AlarmTime {
		return
	}
	*p.SigTrapframe = *p.Trapframe
	p.Policy.Alarm = false
	p.Policy.TickCount = 0
	p.Trapframe.Epc = uint64(p.Policy.InterruptFunction)
}
