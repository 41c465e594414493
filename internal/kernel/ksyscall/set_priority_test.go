package ksyscall_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xv7go/xv7core/internal/kernel/clock"
	"github.com/xv7go/xv7core/internal/kernel/klog"
	"github.com/xv7go/xv7core/internal/kernel/ksyscall"
	"github.com/xv7go/xv7core/internal/kernel/mm"
	"github.com/xv7go/xv7core/internal/kernel/proc"
	"github.com/xv7go/xv7core/internal/kernel/sched"
)

// TestSetPriorityRequiresPBSPolicy mirrors settickets's LBS-only guard: the
// syscall only means anything under the Priority-Based build-time choice.
func TestSetPriorityRequiresPBSPolicy(t *testing.T) {
	policy := sched.RR{}
	clk := clock.New()
	tbl := proc.NewTable(1, policy, clk, mm.NewFakeMemory(), klog.Nop())
	deps := ksyscall.Deps{Table: tbl, Policy: policy, Log: klog.Nop()}

	caller, err := tbl.AllocProc()
	require.NoError(t, err)
	caller.Unlock()

	_, err = ksyscall.SetPriority(deps, caller, 10, caller.PID, clk.Now())
	require.ErrorIs(t, err, ksyscall.ErrNotPBS)
}

// TestSetPriorityRejectsOutOfRangeValue covers the [0,100] validation spec
// §4.5 documents, independent of whether the priority would have lowered.
func TestSetPriorityRejectsOutOfRangeValue(t *testing.T) {
	policy := sched.PBS{}
	clk := clock.New()
	tbl := proc.NewTable(1, policy, clk, mm.NewFakeMemory(), klog.Nop())
	deps := ksyscall.Deps{Table: tbl, Policy: policy, Log: klog.Nop()}

	caller, err := tbl.AllocProc()
	require.NoError(t, err)
	caller.Unlock()

	_, err = ksyscall.SetPriority(deps, caller, 101, caller.PID, clk.Now())
	require.Error(t, err)
}

// TestSetPriorityLowersAndYieldsCaller drives a real Yield (spec §9's
// resolution of the original's locking bug: the caller yields, not the
// target, and only after the target's lock is released) through the same
// one-shot context-switch harness wait/sleep_test.go uses, since lowering a
// priority here is expected to park the caller's own goroutine in sched().
func TestSetPriorityLowersAndYieldsCaller(t *testing.T) {
	policy := sched.PBS{}
	clk := clock.New()
	tbl := proc.NewTable(1, policy, clk, mm.NewFakeMemory(), klog.Nop())
	deps := ksyscall.Deps{Table: tbl, Policy: policy, Log: klog.Nop()}

	caller, err := tbl.AllocProc()
	require.NoError(t, err)
	caller.Unlock()

	var old int
	var setErr error
	workloadDone := make(chan struct{})
	go func() {
		caller.AwaitFirstSchedule()
		old, setErr = ksyscall.SetPriority(deps, caller, 10, caller.PID, clk.Now())
		caller.Finish()
		close(workloadDone)
	}()

	runOnce(t, caller)

	caller.Lock()
	require.Equal(t, proc.Runnable, caller.State, "a lowered priority must yield the caller")
	caller.Unlock()

	runOnce(t, caller)

	select {
	case <-workloadDone:
	case <-time.After(testTimeout):
		t.Fatal("caller workload never completed")
	}

	require.NoError(t, setErr)
	require.Equal(t, 60, old, "allocproc defaults every process to priority 60")
}
