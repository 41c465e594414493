package trap

import "errors"

var (
	// ErrBadFault is returned when a page fault's address has no mapping at
	// all — the original's "Unavailable Address Referenced" diagnostic
	// before killing the process.
	ErrBadFault = errors.New("trap: no mapping for faulting address")
	// ErrNotCOW is returned when a page fault lands on a mapping that is
	// valid but not marked copy-on-write — not a fault this scheme knows how
	// to resolve.
	ErrNotCOW = errors.New("trap: page fault on non-copy-on-write mapping")
)
