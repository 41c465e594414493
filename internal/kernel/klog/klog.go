// Package klog is the kernel's structured logging wrapper around zerolog.
//
// The teacher (gVisor) calls a small internal log package from every
// subsystem — log.Debugf, log.Warningf, log.DebugfAtDepth — at the sites
// where something worth a human's attention happens but doesn't warrant a
// process-visible error. This package gives every kernel subsystem the same
// habit using github.com/rs/zerolog, the way github.com/joeycumines/izerolog
// wires zerolog directly for application logging.
package klog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New returns a logger writing to w (os.Stderr if w is nil) at the given
// component name, attached as a field so multiple subsystems interleave
// legibly.
func New(w io.Writer, component string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(w).With().Timestamp().Str("component", component).Logger()
}

// Nop returns a logger that discards everything, for tests that don't want
// log noise but still need a non-nil *zerolog.Logger dependency.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
