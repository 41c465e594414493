package ksyscall_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xv7go/xv7core/internal/kernel/clock"
	"github.com/xv7go/xv7core/internal/kernel/klog"
	"github.com/xv7go/xv7core/internal/kernel/ksyscall"
	"github.com/xv7go/xv7core/internal/kernel/mm"
	"github.com/xv7go/xv7core/internal/kernel/proc"
	"github.com/xv7go/xv7core/internal/kernel/sched"
)

// TestYieldIsAPassThroughToSchedYield confirms ksyscall.Yield just forwards
// to sched.Yield: RUNNING->RUNNABLE, then the caller's goroutine parks in
// sched(), the same one-shot harness wait/sleep_test.go drives.
func TestYieldIsAPassThroughToSchedYield(t *testing.T) {
	policy := sched.RR{}
	clk := clock.New()
	tbl := proc.NewTable(1, policy, clk, mm.NewFakeMemory(), klog.Nop())
	deps := ksyscall.Deps{Table: tbl, Policy: policy, Log: klog.Nop()}

	p, err := tbl.AllocProc()
	require.NoError(t, err)
	p.Unlock()

	done := make(chan struct{})
	go func() {
		p.AwaitFirstSchedule()
		ksyscall.Yield(deps, p, clk.Now())
		p.Finish()
		close(done)
	}()

	runOnce(t, p)

	p.Lock()
	require.Equal(t, proc.Runnable, p.State)
	p.Unlock()

	runOnce(t, p)
	<-done
}
