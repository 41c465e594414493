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

// TestWaitxReportsRuntimeAndWaittime exercises spec §8 property 6: for a
// process that ran R ticks across its life and existed for E ticks, waitx
// reports rtime=R, wtime=E-R. run_time and in_tick are set directly rather
// than driven through a live scheduler, the same white-box style
// sched/pbs_test.go and sched/fcfs_test.go already use for accounting
// fields that are otherwise only ever mutated by the tick clock.
func TestWaitxReportsRuntimeAndWaittime(t *testing.T) {
	policy := sched.RR{}
	clk := clock.New()
	mem := mm.NewFakeMemory()
	tbl := proc.NewTable(2, policy, clk, mem, klog.Nop())
	deps := ksyscall.Deps{Table: tbl, Mem: mem, Policy: policy, Log: klog.Nop()}

	caller, err := tbl.AllocProc()
	require.NoError(t, err)
	caller.Unlock()

	child, err := tbl.AllocProc()
	require.NoError(t, err)
	child.Parent = caller
	child.RunTime = 7
	child.Unlock()

	for i := 0; i < 20; i++ {
		clk.Advance()
	}

	go ksyscall.Exit(deps, child, 5)

	require.Eventually(t, func() bool {
		child.Lock()
		defer child.Unlock()
		return child.State == proc.Zombie
	}, testTimeout, time.Millisecond)

	var gotRtime, gotWtime uint64
	var gotXstate int
	pid, err := ksyscall.Waitx(deps, caller, 0, func(_ uintptr, xstate int) error {
		gotXstate = xstate
		return nil
	}, func(rtime, wtime uint64) {
		gotRtime, gotWtime = rtime, wtime
	})

	require.NoError(t, err)
	require.Equal(t, child.PID, pid)
	require.EqualValues(t, 7, gotRtime)
	require.EqualValues(t, 13, gotWtime)
	require.Equal(t, 5, gotXstate)
}

// TestWaitxPropagatesCopyOutError covers the (rare) failure path where the
// caller's copyOut callback itself fails, e.g. a bad user-space address.
func TestWaitxPropagatesCopyOutError(t *testing.T) {
	policy := sched.RR{}
	clk := clock.New()
	mem := mm.NewFakeMemory()
	tbl := proc.NewTable(2, policy, clk, mem, klog.Nop())
	deps := ksyscall.Deps{Table: tbl, Mem: mem, Policy: policy, Log: klog.Nop()}

	caller, err := tbl.AllocProc()
	require.NoError(t, err)
	caller.Unlock()

	child, err := tbl.AllocProc()
	require.NoError(t, err)
	child.Parent = caller
	child.State = proc.Zombie
	child.Unlock()

	wantErr := require.Error
	_, err = ksyscall.Waitx(deps, caller, 0, func(uintptr, int) error {
		return assertErr
	}, nil)
	wantErr(t, err)
	require.ErrorIs(t, err, assertErr)
}

var assertErr = errorString("ksyscall_test: bad address")

type errorString string

func (e errorString) Error() string { return string(e) }
