package proc

import "errors"

var (
	// ErrNoFreeProc is returned by AllocProc when every slot is USED or
	// later (spec §4.1: "on no match returns null").
	ErrNoFreeProc = errors.New("proc: no free process slots")
	// ErrNoKStackSlot should not occur in practice (one kstack slot per
	// NPROC process slot), and indicates a bookkeeping bug if it does.
	ErrNoKStackSlot = errors.New("proc: no free kernel stack slot")
)
