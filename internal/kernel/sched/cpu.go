package sched

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/xv7go/xv7core/internal/kernel/idpool"
	"github.com/xv7go/xv7core/internal/kernel/proc"
)

// RunCPUs launches n per-CPU scheduler loops against t under policy, each
// identified by an id drawn from an idpool.Pool — the same bounded-range
// allocator pattern the teacher uses for its sysmsg stack slots, repurposed
// here for CPU identity instead of a stack page index. It blocks until ctx
// is cancelled or every loop has returned; a loop that panics (an invariant
// violation per spec §7) is recovered and surfaced as an error through
// errgroup rather than taking the whole process down, so callers such as
// cmd/xv7sim can report which CPU wedged.
func RunCPUs(ctx context.Context, n int, t *proc.Table, policy Policy) error {
	ids := idpool.New(0, n)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < n; i++ {
		id, ok := ids.Get()
		if !ok {
			break
		}
		cpu := &CPU{ID: id}
		g.Go(func() error {
			defer ids.Put(id)
			return runLoop(gctx, cpu, t, policy)
		})
	}

	return g.Wait()
}

func runLoop(ctx context.Context, cpu *CPU, t *proc.Table, policy Policy) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sched: cpu %d: %v", cpu.ID, r)
		}
	}()
	Scheduler(ctx, cpu, t, policy)
	return nil
}
