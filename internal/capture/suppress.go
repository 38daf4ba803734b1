// Package capture watches the system clipboard and records external changes
// into the history store, ignoring the daemon's own writes.
package capture

import "sync/atomic"

// Suppressor is the single-shot internal-write flag shared between every
// programmatic clipboard writer and the poller. A writer calls Mark
// immediately before its write and only for that one write; the next poll
// cycle consumes the flag. It is a one-shot marker, not a mode.
type Suppressor struct {
	flag atomic.Bool
}

// Mark flags the next clipboard change as internal.
func (s *Suppressor) Mark() { s.flag.Store(true) }

// Consume atomically reads and clears the flag.
func (s *Suppressor) Consume() bool { return s.flag.Swap(false) }
