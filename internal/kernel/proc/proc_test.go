package proc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xv7go/xv7core/internal/kernel/clock"
	"github.com/xv7go/xv7core/internal/kernel/klog"
	"github.com/xv7go/xv7core/internal/kernel/mm"
)

type nopHooks struct{ allocCalls, runnableCalls, runningCalls int }

func (h *nopHooks) OnAllocProc(p *Process)                        { h.allocCalls++; p.Policy.Tickets = 1 }
func (h *nopHooks) OnBecomeRunnable(p *Process, now clock.Tick)    { h.runnableCalls++ }
func (h *nopHooks) OnBecomeRunning(p *Process, now clock.Tick)     { h.runningCalls++ }

func newTestTable(n int) (*Table, *nopHooks) {
	hooks := &nopHooks{}
	tbl := NewTable(n, hooks, clock.New(), mm.NewFakeMemory(), klog.Nop())
	return tbl, hooks
}

func TestAllocProcAssignsDistinctPIDs(t *testing.T) {
	tbl, hooks := newTestTable(4)

	a, err := tbl.AllocProc()
	require.NoError(t, err)
	a.Unlock()

	b, err := tbl.AllocProc()
	require.NoError(t, err)
	b.Unlock()

	require.NotEqual(t, a.PID, b.PID)
	require.Equal(t, Used, a.State)
	require.Equal(t, Used, b.State)
	require.Equal(t, 2, hooks.allocCalls)
	require.Equal(t, 1, a.Policy.Tickets)
}

func TestAllocProcExhaustion(t *testing.T) {
	tbl, _ := newTestTable(1)

	a, err := tbl.AllocProc()
	require.NoError(t, err)
	a.Unlock()

	_, err = tbl.AllocProc()
	require.ErrorIs(t, err, ErrNoFreeProc)
}

func TestFreeProcResetsToUnused(t *testing.T) {
	tbl, _ := newTestTable(1)

	p, err := tbl.AllocProc()
	require.NoError(t, err)
	p.Name = "child"
	p.Policy.Tickets = 7
	tbl.FreeProc(p)
	p.Unlock()

	require.Equal(t, Unused, p.State)
	require.Equal(t, 0, p.PID)
	require.Equal(t, "", p.Name)
	require.Equal(t, 0, p.Policy.Tickets)
	require.Nil(t, p.Trapframe)

	// The slot is reusable.
	q, err := tbl.AllocProc()
	require.NoError(t, err)
	require.Same(t, p, q)
	q.Unlock()
}

func TestReparentRetargetsChildrenToInitProc(t *testing.T) {
	tbl, _ := newTestTable(3)

	parent, err := tbl.AllocProc()
	require.NoError(t, err)
	parent.Unlock()

	initProc, err := tbl.AllocProc()
	require.NoError(t, err)
	initProc.Unlock()
	tbl.InitProc = initProc

	child, err := tbl.AllocProc()
	require.NoError(t, err)
	child.Parent = parent
	child.Unlock()

	var woken []any
	tbl.LockWait()
	tbl.Reparent(parent, func(ch any) { woken = append(woken, ch) })
	tbl.UnlockWait()

	require.Same(t, initProc, child.Parent)
	require.Len(t, woken, 1)
	require.Same(t, initProc, woken[0])
}

func TestDumpListsNonUnusedSlots(t *testing.T) {
	tbl, _ := newTestTable(2)
	p, err := tbl.AllocProc()
	require.NoError(t, err)
	p.Name = "sh"
	p.State = Runnable
	p.Unlock()

	var buf strings.Builder
	tbl.Dump(&buf)
	require.Contains(t, buf.String(), "sh")
}
