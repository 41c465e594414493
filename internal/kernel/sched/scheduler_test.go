package sched_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xv7go/xv7core/internal/kernel/proc"
	"github.com/xv7go/xv7core/internal/kernel/sched"
)

func TestSchedulerRunsAllRunnableProcessesRoundRobin(t *testing.T) {
	policy := sched.RR{}
	tbl := newTestTable(t, 2, policy)
	clk := tbl.Clock()

	var counts [2]int32
	done := make(chan struct{}, 2)

	for i := 0; i < 2; i++ {
		p, err := tbl.AllocProc()
		require.NoError(t, err)
		p.State = proc.Runnable
		p.Unlock()

		idx := i
		workload := p
		go func() {
			workload.AwaitFirstSchedule()
			for n := 0; n < 5; n++ {
				atomic.AddInt32(&counts[idx], 1)
				sched.Yield(workload, policy, clk.Now())
			}
			workload.Finish()
			done <- struct{}{}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- sched.RunCPUs(ctx, 1, tbl, policy) }()

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("workload never completed")
		}
	}
	cancel()

	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("RunCPUs never returned after cancel")
	}

	require.EqualValues(t, 5, counts[0])
	require.EqualValues(t, 5, counts[1])
}
