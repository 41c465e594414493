package trap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xv7go/xv7core/internal/kernel/clock"
	"github.com/xv7go/xv7core/internal/kernel/klog"
	"github.com/xv7go/xv7core/internal/kernel/mm"
	"github.com/xv7go/xv7core/internal/kernel/proc"
	"github.com/xv7go/xv7core/internal/kernel/sched"
)

func TestKernelTrapIgnoresNonTimerEvents(t *testing.T) {
	policy := sched.RR{}
	tbl := proc.NewTable(1, policy, clock.New(), mm.NewFakeMemory(), klog.Nop())
	p, err := tbl.AllocProc()
	require.NoError(t, err)
	p.State = proc.Running
	p.Unlock()

	// No concurrent scheduler is running; if KernelTrap tried to preempt
	// here it would deadlock inside Yield's Sched call, so this also
	// documents that a non-timer event never reaches that path.
	KernelTrap(Event{Kind: KindDevice}, p, tbl, policy, 0)

	p.Lock()
	require.Equal(t, proc.Running, p.State)
	p.Unlock()
}

func TestKernelTrapIgnoresTimerWhenProcessNotRunning(t *testing.T) {
	policy := sched.RR{}
	tbl := proc.NewTable(1, policy, clock.New(), mm.NewFakeMemory(), klog.Nop())
	p, err := tbl.AllocProc()
	require.NoError(t, err)
	p.State = proc.Runnable
	p.Unlock()

	KernelTrap(Event{Kind: KindTimer}, p, tbl, policy, 0)

	p.Lock()
	require.Equal(t, proc.Runnable, p.State)
	p.Unlock()
}

func TestKernelTrapPreemptsRunningProcessOnTimer(t *testing.T) {
	policy := sched.RR{}
	tbl := proc.NewTable(1, policy, clock.New(), mm.NewFakeMemory(), klog.Nop())

	p, err := tbl.AllocProc()
	require.NoError(t, err)
	p.State = proc.Runnable
	p.Unlock()

	workloadDone := make(chan struct{})
	go func() {
		p.AwaitFirstSchedule()
		KernelTrap(Event{Kind: KindTimer}, p, tbl, policy, 1)
		p.Finish()
		close(workloadDone)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cpu := &sched.CPU{}
	schedulerDone := make(chan struct{})
	go func() {
		sched.Scheduler(ctx, cpu, tbl, policy)
		close(schedulerDone)
	}()

	select {
	case <-workloadDone:
	case <-time.After(2 * time.Second):
		t.Fatal("workload never completed")
	}
	cancel()
	select {
	case <-schedulerDone:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler never returned after cancel")
	}
}
