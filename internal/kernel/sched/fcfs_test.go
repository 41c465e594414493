package sched_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xv7go/xv7core/internal/kernel/proc"
	"github.com/xv7go/xv7core/internal/kernel/sched"
)

func TestFCFSPicksSmallestInTick(t *testing.T) {
	policy := sched.FCFS{}
	tbl := newTestTable(t, 3, policy)

	a, err := tbl.AllocProc()
	require.NoError(t, err)
	a.State = proc.Runnable
	a.InTick = 10
	a.Unlock()

	b, err := tbl.AllocProc()
	require.NoError(t, err)
	b.State = proc.Runnable
	b.InTick = 3
	b.Unlock()

	c, err := tbl.AllocProc()
	require.NoError(t, err)
	c.State = proc.Runnable
	c.InTick = 7
	c.Unlock()

	p, ok := policy.Pick(tbl)
	require.True(t, ok)
	require.Same(t, b, p)
	p.Unlock()
}

func TestFCFSNeverPreempts(t *testing.T) {
	policy := sched.FCFS{}
	tbl := newTestTable(t, 1, policy)
	require.False(t, policy.OnTick(tbl, nil, 0))
}
