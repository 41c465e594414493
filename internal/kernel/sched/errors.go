package sched

import "errors"

var (
	// ErrInvalidPriority is returned by PBS.SetPriority for an out-of-range
	// priority (spec §4.5's set_priority), matching the original's
	// "Priority must be in range [0 - 100]" rejection.
	ErrInvalidPriority = errors.New("sched: priority out of range [0,100]")
	// ErrNoSuchProcess is returned by PBS.SetPriority when no slot carries
	// the given PID.
	ErrNoSuchProcess = errors.New("sched: no such process")
)
