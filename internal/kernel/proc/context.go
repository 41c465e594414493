package proc

// context is the goroutine-level stand-in for swtch's callee-saved
// register save/restore (spec component F). Rather than hand-assembled
// context switch code, each process's workload runs on its own goroutine,
// parked on resume until the scheduler hands it the CPU, and parking again
// on yielded the instant it calls back into sched(). Exactly one of the
// scheduler goroutine and the process goroutine is ever unblocked at a
// time for a given context, which is what gives §5's "RUNNING implies
// exactly one CPU has c.proc = this" invariant teeth without a real mutual
// exclusion mechanism beyond the channel handoff itself.
type context struct {
	resume  chan struct{}
	yielded chan struct{}
}

func newContext() *context {
	return &context{
		resume:  make(chan struct{}),
		yielded: make(chan struct{}),
	}
}

// runOnCPU is the scheduler side of swtch: hand the CPU to the process and
// block until it gives it back via sched(). Precondition: the process's
// slot lock is not held by the caller (see Process.Resume), since the
// resumed goroutine may need to take it before handing the CPU back.
func (c *context) runOnCPU() {
	c.resume <- struct{}{}
	<-c.yielded
}

// giveUpCPU is the process side of swtch, invoked from inside sched(): park
// the calling goroutine until the scheduler resumes it.
func (c *context) giveUpCPU() {
	c.yielded <- struct{}{}
	<-c.resume
}

// start is called once, by the process's own goroutine, to wait for its
// first scheduling (the forkret rendezvous point) before running the
// workload body.
func (c *context) start() {
	<-c.resume
}

// finish is called once by the process's own goroutine after its workload
// returns control for the last time (i.e. after exit()), to hand the final
// yielded signal to whichever scheduler loop last called runOnCPU.
func (c *context) finish() {
	c.yielded <- struct{}{}
}
