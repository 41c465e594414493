// Package kernel wires every component in spec §2 (ticks, the process
// table, sleep/wakeup, the scheduler, fork/exit/wait, trap dispatch, and
// alarm delivery) into one constructible unit, the way gVisor's
// pkg/sentry/kernel.Kernel is the single struct that owns a task table, a
// platform, and memory usage tracking. Everything here is orchestration:
// the actual algorithms live in internal/kernel/{proc,sched,trap,wait,ksyscall}.
package kernel

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/xv7go/xv7core/internal/kernel/clock"
	"github.com/xv7go/xv7core/internal/kernel/fs"
	"github.com/xv7go/xv7core/internal/kernel/ksyscall"
	"github.com/xv7go/xv7core/internal/kernel/mm"
	"github.com/xv7go/xv7core/internal/kernel/proc"
	"github.com/xv7go/xv7core/internal/kernel/sched"
)

// Config mirrors param.h's build-time constants plus the one build-time
// choice spec §6 calls out: exactly one scheduling Policy. NCPU is how many
// per-CPU scheduler loops RunCPUs launches.
type Config struct {
	NPROC   int
	NCPU    int
	Policy  sched.Policy
	Mem     mm.Memory
	FS      fs.FileSystem
	RootDev int
	Log     zerolog.Logger
}

// Kernel owns the process table and every collaborator named in spec §6,
// built once by New and shared by every CPU's scheduler loop.
type Kernel struct {
	cfg Config
	tbl *proc.Table
	clk *clock.Clock
	log zerolog.Logger

	fsInitOnce sync.Once
}

// New constructs a Kernel against cfg. Mirrors procinit + binit's ordering
// collapsed into one call: this simulation has no kernel-stack pages to
// pre-map, so there is nothing else procinit would still need to do here.
func New(cfg Config) *Kernel {
	clk := clock.New()
	tbl := proc.NewTable(cfg.NPROC, cfg.Policy, clk, cfg.Mem, cfg.Log)
	return &Kernel{cfg: cfg, tbl: tbl, clk: clk, log: cfg.Log}
}

// Table returns the underlying process table, for callers (ksyscall.Deps,
// trap dispatch, cmd/xv7sim) that need direct access.
func (k *Kernel) Table() *proc.Table { return k.tbl }

// Clock returns the kernel's tick clock.
func (k *Kernel) Clock() *clock.Clock { return k.clk }

// Policy returns the kernel's active scheduling policy.
func (k *Kernel) Policy() sched.Policy { return k.cfg.Policy }

// Deps builds a ksyscall.Deps bound to this kernel, for syscall entry
// points (Fork, Exit, Wait, Waitx, Kill, ...) that need the full
// collaborator set.
func (k *Kernel) Deps() ksyscall.Deps {
	return ksyscall.Deps{
		Table:  k.tbl,
		Mem:    k.cfg.Mem,
		FS:     k.cfg.FS,
		Policy: k.cfg.Policy,
		Log:    k.log,
	}
}

// Exit adapts ksyscall.Exit to trap.Exiter's signature, so UserTrap/
// KernelTrap callers can pass k.Exit directly without importing ksyscall
// themselves.
func (k *Kernel) Exit(p *proc.Process, status int) {
	ksyscall.Exit(k.Deps(), p, status)
}

// UserInit implements userinit() (spec §3 "Lifecycle"): allocates the
// first process, maps initData as its entire address space via
// mm.Memory.First, resolves "/" as its working directory, and transitions
// it USED→RUNNABLE. Sets Table.InitProc so exit/reparent has a target.
// Must be called exactly once, before the first Spawn.
func (k *Kernel) UserInit(name string, initData []byte) (*proc.Process, error) {
	p, err := k.tbl.AllocProc()
	if err != nil {
		return nil, fmt.Errorf("kernel: userinit: %w", err)
	}

	if err := k.cfg.Mem.First(p.PageTable, initData); err != nil {
		k.tbl.FreeProc(p)
		p.Unlock()
		return nil, fmt.Errorf("kernel: userinit: mapping initial data: %w", err)
	}
	p.Sz = uint64(len(initData))
	p.Name = name

	if k.cfg.FS != nil {
		cwd, err := k.cfg.FS.Namei("/")
		if err != nil {
			k.tbl.FreeProc(p)
			p.Unlock()
			return nil, fmt.Errorf("kernel: userinit: resolving /: %w", err)
		}
		p.Cwd = cwd
	}

	p.State = proc.Runnable
	if k.cfg.Policy != nil {
		k.cfg.Policy.OnBecomeRunnable(p, k.clk.Now())
	}
	k.tbl.InitProc = p
	p.Unlock()
	return p, nil
}

// Spawn launches the goroutine that embodies p's kernel thread: it blocks
// until the scheduler first runs it (the forkret rendezvous, spec §4.2),
// performs the one-time filesystem initialization forkret is responsible
// for, then runs workload. workload is expected to call ksyscall.Exit (or
// Process.Finish, for a workload that simply stops scheduling itself
// without ever reaching ZOMBIE — see sched.Scheduler's tests) before
// returning.
func (k *Kernel) Spawn(p *proc.Process, workload func(p *proc.Process)) {
	go func() {
		p.AwaitFirstSchedule()
		k.forkRet()
		if workload != nil {
			workload(p)
		}
	}()
}

// forkRet implements forkret() (spec §4.2): besides the scheduler-lock
// release this simulation's Scheduler already performs before Resume (see
// proc.Process.Resume's doc comment), its only remaining duty is calling
// fsinit exactly once across the whole system. Subsequent calls, from
// every process after the first, are no-ops.
func (k *Kernel) forkRet() {
	k.fsInitOnce.Do(func() {
		if k.cfg.FS == nil {
			return
		}
		if err := k.cfg.FS.Init(k.cfg.RootDev); err != nil {
			panic(fmt.Sprintf("kernel: forkret: fsinit: %v", err))
		}
	})
}

// ClockIntr implements clockintr() (spec §4.6, component A): called on CPU
// 0 only. It advances the tick counter, runs the active policy's ageing
// pass (a no-op for every policy but MLFQ), updates every process's
// run/sleep accounting, and wakes anything sleeping on the tick channel
// (&ticks in the original; here, the package-level tickChan stands in as
// the channel identity).
func (k *Kernel) ClockIntr() clock.Tick {
	now := k.clk.Advance()
	if k.cfg.Policy != nil {
		k.cfg.Policy.Ageing(k.tbl, now)
	}
	k.updateTime()
	wakeupTickChannel(k.tbl, k.cfg.Policy, now)
	return now
}

// updateTime implements update_time() (spec §4.6): for each slot, under
// its own lock, bump run_time (and PBS's running-ticks counter) if RUNNING,
// or PBS's sleeping-ticks counter if SLEEPING.
func (k *Kernel) updateTime() {
	_, isPBS := k.cfg.Policy.(sched.PBS)
	for _, p := range k.tbl.Slots() {
		p.Lock()
		switch p.State {
		case proc.Running:
			p.RunTime++
			if isPBS {
				p.Policy.RunningTicks++
			}
		case proc.Sleeping:
			if isPBS {
				p.Policy.SleepingTicks++
			}
		}
		p.Unlock()
	}
}

// wakeupTickChannel releases everything sleeping on the tick channel
// (wakeup(&ticks) in the original): every slot SLEEPING on tickChan becomes
// RUNNABLE.
func wakeupTickChannel(t *proc.Table, policy sched.Policy, now clock.Tick) {
	for _, p := range t.Slots() {
		p.Lock()
		if p.State == proc.Sleeping && p.Chan == tickChan {
			p.State = proc.Runnable
			if policy != nil {
				policy.OnBecomeRunnable(p, now)
			}
		}
		p.Unlock()
	}
}

// tickChan is the fixed channel identity standing in for &ticks: any
// process sleeping on it (there is no syscall in spec §6 that does this
// directly, but trap/accounting code in a fuller build might) wakes once
// per tick.
var tickChan = new(struct{})

// RunCPUs launches cfg.NCPU per-CPU scheduler loops and blocks until ctx is
// cancelled or one panics (sched.RunCPUs's errgroup-backed contract).
func (k *Kernel) RunCPUs(ctx context.Context) error {
	return sched.RunCPUs(ctx, k.cfg.NCPU, k.tbl, k.cfg.Policy)
}

// Dump implements the ^P debug dump (spec §6): "pid state name" for every
// non-UNUSED slot, without locking.
func (k *Kernel) Dump(w io.Writer) {
	k.tbl.Dump(w)
}

// Lookup finds the process currently holding pid, for callers (cmd/xv7sim)
// that need to Spawn a workload goroutine against a child Fork just
// returned a PID for.
func (k *Kernel) Lookup(pid int) (*proc.Process, bool) {
	return k.tbl.Lookup(pid)
}
