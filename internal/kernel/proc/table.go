package proc

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/xv7go/xv7core/internal/kernel/clock"
	"github.com/xv7go/xv7core/internal/kernel/mm"
)

// Table is the fixed-size process table (spec §3 "Fixed capacity NPROC")
// plus the PID lock and wait lock (spec component C). Per spec §5's global
// lock ordering (wait lock → slot lock → PID lock / tick lock), PID
// allocation happens while a slot lock is already held (mirroring the
// original's allocproc), and the wait lock is always acquired before any
// slot lock it nests under.
type Table struct {
	clk    *clock.Clock
	mem    mm.Memory
	policy PolicyHooks
	log    zerolog.Logger

	slots []*Process

	pidMu   sync.Mutex
	nextPID int

	waitMu sync.Mutex

	// InitProc is set once, by the caller, after the first process
	// (userinit's result) is created. reparent retargets orphans to it.
	InitProc *Process
}

// NewTable allocates n UNUSED slots (spec's proc_mapstacks + procinit,
// collapsed into one constructor since this core has no kernel stack pages
// to pre-map).
func NewTable(n int, policy PolicyHooks, clk *clock.Clock, mem mm.Memory, log zerolog.Logger) *Table {
	t := &Table{clk: clk, mem: mem, policy: policy, log: log, slots: make([]*Process, n)}
	for i := range t.slots {
		t.slots[i] = &Process{index: i, State: Unused}
	}
	return t
}

// Slots returns the fixed slot array. Callers must respect each slot's own
// lock before touching mutable fields; this exists for the scheduler and
// wait/wakeup, which must scan every slot.
func (t *Table) Slots() []*Process { return t.slots }

// Clock returns the tick clock backing this table, for callers (the
// scheduler loop, the trap handlers) that need "now" without reaching past
// Table into kernel construction arguments again.
func (t *Table) Clock() *clock.Clock { return t.clk }

// Memory returns the memory collaborator backing this table (spec §6), for
// fork's uvmcopy-equivalent and exit's page-table teardown.
func (t *Table) Memory() mm.Memory { return t.mem }

// LockWait/UnlockWait guard parent/child reparenting and reaping. Acquired
// before any slot lock (spec invariant 4); never acquired while holding a
// slot lock.
func (t *Table) LockWait()   { t.waitMu.Lock() }
func (t *Table) UnlockWait() { t.waitMu.Unlock() }

func (t *Table) allocPID() int {
	t.pidMu.Lock()
	defer t.pidMu.Unlock()
	t.nextPID++
	return t.nextPID
}

// AllocProc scans for an UNUSED slot, acquiring each slot lock in turn
// (spec §4.1), and on success returns it USED with a fresh PID, trapframes,
// an empty page table, and a fresh context — locked, for the caller to
// finish initializing (userinit/fork) and transition to RUNNABLE.
func (t *Table) AllocProc() (*Process, error) {
	for _, p := range t.slots {
		p.mu.Lock()
		if p.State != Unused {
			p.mu.Unlock()
			continue
		}

		p.PID = t.allocPID()
		p.State = Used
		p.InTick = t.clk.Now()
		p.RunTime = 0
		p.Trapframe = &Trapframe{}
		p.SigTrapframe = &Trapframe{}

		pt, err := t.mem.Create()
		if err != nil {
			t.FreeProc(p)
			p.mu.Unlock()
			return nil, fmt.Errorf("proc: allocating page table: %w", err)
		}
		p.PageTable = pt
		p.ctx = newContext()
		p.firstSched = true

		if t.policy != nil {
			t.policy.OnAllocProc(p)
		}
		return p, nil
	}
	return nil, ErrNoFreeProc
}

// FreeProc frees a ZOMBIE (or partially-initialized USED) slot's owned
// resources and clears every field, leaving it UNUSED (spec §4.1). Must be
// called with p's lock held.
func (t *Table) FreeProc(p *Process) {
	if p.PageTable != nil {
		p.PageTable.Free(uintptr(p.Sz))
	}
	p.PageTable = nil
	p.Sz = 0
	p.PID = 0
	p.Parent = nil
	p.Name = ""
	p.Chan = nil
	p.Killed = false
	p.Xstate = 0
	p.Trapframe = nil
	p.SigTrapframe = nil
	p.ctx = nil
	p.firstSched = false
	for i := range p.Files {
		p.Files[i] = nil
	}
	p.Cwd = nil
	p.InTick = 0
	p.RunTime = 0
	p.EndTick = 0
	p.Policy = PolicyFields{}
	p.State = Unused
}

// Reparent retargets every child of p to t.InitProc (spec invariant 7).
// Caller must hold the wait lock. wake is invoked once per retargeted
// child with t.InitProc as the channel to wake, since Table cannot import
// the wait package (which itself depends on proc) without an import
// cycle.
func (t *Table) Reparent(p *Process, wake func(ch any)) {
	for _, pp := range t.slots {
		if pp.Parent == p {
			pp.Parent = t.InitProc
			if wake != nil {
				wake(t.InitProc)
			}
		}
	}
}

// Lookup finds the slot currently carrying pid, returning it unlocked. It
// exists for callers outside the syscall layer (cmd/xv7sim's demo driver,
// mainly) that only have a PID in hand — e.g. right after Fork returns one
// — and need the *Process to Spawn its workload goroutine against.
func (t *Table) Lookup(pid int) (*Process, bool) {
	for _, p := range t.slots {
		p.mu.Lock()
		if p.PID == pid && p.State != Unused {
			p.mu.Unlock()
			return p, true
		}
		p.mu.Unlock()
	}
	return nil, false
}

// Dump prints "pid state name" for every non-UNUSED slot without locking,
// matching procdump's "No lock to avoid wedging a stuck machine further."
func (t *Table) Dump(w io.Writer) {
	fmt.Fprintln(w)
	for _, p := range t.slots {
		if p.State == Unused {
			continue
		}
		fmt.Fprintf(w, "%d %s %s\n", p.PID, p.State, p.Name)
	}
}
