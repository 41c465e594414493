package sched_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xv7go/xv7core/internal/kernel/proc"
	"github.com/xv7go/xv7core/internal/kernel/sched"
)

func TestMLFQPicksLowestQueueThenOldestInTick(t *testing.T) {
	policy := sched.MLFQ{}
	tbl := newTestTable(t, 2, policy)

	a, err := tbl.AllocProc()
	require.NoError(t, err)
	a.State = proc.Runnable
	a.Policy.Queue = 2
	a.Unlock()

	b, err := tbl.AllocProc()
	require.NoError(t, err)
	b.State = proc.Runnable
	b.Policy.Queue = 0
	b.Unlock()

	p, ok := policy.Pick(tbl)
	require.True(t, ok)
	require.Same(t, b, p)
	p.Unlock()
}

func TestMLFQOnTickDemotesAtQuantumExpiry(t *testing.T) {
	policy := sched.MLFQ{}
	tbl := newTestTable(t, 1, policy)

	a, err := tbl.AllocProc()
	require.NoError(t, err)
	a.State = proc.Running
	a.Policy.Queue = 0
	a.Policy.NumTicks = 0
	a.Unlock()

	a.Lock()
	// Queue 0's quantum is 2^0 = 1 tick.
	yield := policy.OnTick(tbl, a, 1)
	a.Unlock()
	require.True(t, yield)

	a.Lock()
	policy.OnYield(a, 1)
	a.Unlock()

	a.Lock()
	require.Equal(t, 1, a.Policy.Queue)
	require.Equal(t, 0, a.Policy.NumTicks)
	a.Unlock()
}

func TestMLFQOnTickPreemptsForHigherPriorityRunnable(t *testing.T) {
	policy := sched.MLFQ{}
	tbl := newTestTable(t, 2, policy)

	running, err := tbl.AllocProc()
	require.NoError(t, err)
	running.State = proc.Running
	running.Policy.Queue = 3
	running.Policy.NumTicks = 0
	running.Unlock()

	other, err := tbl.AllocProc()
	require.NoError(t, err)
	other.State = proc.Runnable
	other.Policy.Queue = 0
	other.Unlock()

	running.Lock()
	yield := policy.OnTick(tbl, running, 1)
	running.Unlock()
	require.True(t, yield)
}

func TestMLFQAgeingPromotesStaleResidents(t *testing.T) {
	policy := sched.MLFQ{}
	tbl := newTestTable(t, 1, policy)

	a, err := tbl.AllocProc()
	require.NoError(t, err)
	a.State = proc.Runnable
	a.Policy.Queue = 2
	a.InTick = 38  // now-InTick=2 < quantum(2)=4: the in_tick condition does not fire
	a.Policy.LastTick = 10 // now-LastTick=30: the residency condition fires
	a.Unlock()

	policy.Ageing(tbl, 40)

	a.Lock()
	require.Equal(t, 1, a.Policy.Queue, "30 ticks of residency without promotion should promote one level")
	a.Unlock()
}
