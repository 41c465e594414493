package proc

import (
	"sync"

	"github.com/xv7go/xv7core/internal/kernel/clock"
	"github.com/xv7go/xv7core/internal/kernel/mm"
)

// NOFILE bounds the fixed-size open-file table (spec §3 "Files: fixed-size
// open-file table").
const NOFILE = 16

// PolicyFields holds every per-process field any scheduling policy might
// touch. Spec §3 says "only those for the active policy carry meaning" —
// rather than the source's #ifdef LBS/#ifdef PBS/#ifdef MLFQ sprawl, this
// is the single tagged struct the design notes (§9 "Tagged state over
// pointer games") call for; the active Policy (internal/kernel/sched) is
// the only code that reads or writes the fields it owns.
type PolicyFields struct {
	// LBS (Lottery)
	Tickets int

	// PBS (Priority-Based with ageing-by-behaviour)
	Priority      int // default 60
	NumSched      int
	RunningTicks  int // since last schedule
	SleepingTicks int // since last schedule

	// MLFQ
	Queue     int // [0,4]
	NumTicks  int // ticks consumed in current quantum
	LastTick  clock.Tick

	// Alarm / signal return (shared by all policies)
	Alarm             bool
	AlarmTime         uint64
	TickCount         uint64
	InterruptFunction uintptr

	// Trace mask (bitmap of syscall numbers to trace)
	Mask uint64
}

// Process is one process-table slot (spec §3).
type Process struct {
	mu sync.Mutex // the slot lock: serialises this process's state machine

	index int // slot index in the owning Table; also the kstack slot id

	// Identity
	PID    int
	Name   string
	Parent *Process // non-owning back-reference; read/written only under the wait lock (Table.LockWait)

	// Lifecycle
	State  State
	Killed bool
	Xstate int
	Chan   any // opaque sleep channel identifier; non-nil iff Sleeping

	// Memory
	PageTable mm.PageTable
	Sz        uint64

	// Context
	Trapframe    *Trapframe
	SigTrapframe *Trapframe
	ctx          *context
	firstSched   bool // true until this slot's first scheduling (forkret path)

	// Files
	Files [NOFILE]any // opaque *file_t equivalents; nil means closed
	Cwd   any          // opaque inode reference

	// Accounting
	InTick  clock.Tick // tick when became RUNNABLE or was created
	RunTime uint64     // ticks spent RUNNING
	EndTick clock.Tick // tick of exit

	Policy PolicyFields
}

// Lock and Unlock acquire and release the slot lock, which guards every
// mutable field of the process.
func (p *Process) Lock()   { p.mu.Lock() }
func (p *Process) Unlock() { p.mu.Unlock() }

// Index returns the slot index, used as the kernel-stack slot id and by
// Table.Dump for stable ordering.
func (p *Process) Index() int { return p.index }

// Sched is the process-side half of a context switch: the calling
// goroutine (which must be this process's own workload goroutine) blocks
// until the scheduler resumes it. Precondition, matching spec §4.2's sched()
// contract: state != Running. Unlike the original this must be called with
// p's lock *not* held: the caller (Yield, wait.Sleep) releases it
// immediately beforehand, since whatever flips this process back to
// RUNNABLE and wakes it — Wakeup, a future Scheduler.Pick — needs to take
// that same lock while this goroutine is parked here.
func (p *Process) Sched() {
	if p.State == Running {
		panic("sched: state is Running")
	}
	p.ctx.giveUpCPU()
}

// Resume is the scheduler-side half: hand the CPU to p and block until it
// calls Sched (or runs to its final exit). Precondition: p.State ==
// Running. Unlike Sched, this does not require p's lock: the caller (the
// scheduler loop) must have already released it, since the goroutine this
// wakes may need to re-lock p itself (e.g. via Yield) before Resume
// returns.
func (p *Process) Resume() {
	if p.State != Running {
		panic("resume: state is not Running")
	}
	p.ctx.runOnCPU()
}

// AwaitFirstSchedule blocks the calling goroutine (the process's own) until
// the scheduler first resumes it; it is the forkret rendezvous point.
func (p *Process) AwaitFirstSchedule() { p.ctx.start() }

// Finish is called once by the process's own goroutine after it has
// recorded its final exit, to release whichever scheduler loop is parked
// in Resume one last time.
func (p *Process) Finish() { p.ctx.finish() }

// PolicyHooks is implemented by the active scheduling policy
// (internal/kernel/sched) and invoked by anything that transitions a
// process into or out of RUNNABLE/RUNNING: Table.AllocProc/Fork (becomes
// runnable), wait.Wakeup, wait.Sleep's waker side, yield, and the
// scheduler's own pick step. Defined here, rather than in the sched
// package, so that internal/kernel/wait can invoke the relevant hook
// without importing sched (which would create an import cycle, since sched
// also depends on proc).
type PolicyHooks interface {
	// OnAllocProc sets this policy's defaults on a freshly allocated slot
	// (LBS tickets=1, PBS priority=60, MLFQ queue=0).
	OnAllocProc(p *Process)
	// OnBecomeRunnable fires on every transition into RUNNABLE, however it
	// was reached (fork, wakeup, yield, kill-induced wake).
	OnBecomeRunnable(p *Process, now clock.Tick)
	// OnBecomeRunning fires on the RUNNABLE→RUNNING transition made by the
	// scheduler's pick step.
	OnBecomeRunning(p *Process, now clock.Tick)
}
