// Package keyhook installs the system-wide key-event hook feeding the
// expansion pipeline. The hook observes keystrokes; it never suppresses or
// modifies them.
package keyhook

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Event is one raw key-down event as delivered by a Tap.
type Event struct {
	Code  uint16
	Shift bool
}

// Tap is the platform hook primitive. Install registers fn to be invoked
// on every system key-down; fn runs on the platform's event-delivery
// thread and must return near-instantly. Events are delivered observe-only:
// installing a tap never changes what the focused application receives.
type Tap interface {
	Install(fn func(Event)) error
	Remove()
}

// Decoder is the heavier higher-level decode used once per event when the
// fast table misses (alternate-modifier combinations, locale-specific keys).
type Decoder interface {
	Decode(Event) (rune, bool)
}

// ErrUnavailable is returned by Start when the hook cannot be created,
// typically because the input-monitoring permission is missing. The
// interceptor stays inactive; callers surface this once and do not retry
// in a loop.
var ErrUnavailable = errors.New("key hook unavailable")

// Interceptor owns the tap lifecycle and the per-event fast path. The
// callback does only an atomic active check, a table lookup, and an
// asynchronous hand-off; it never blocks on I/O.
type Interceptor struct {
	tap     Tap
	decoder Decoder
	handoff func(rune)

	active    atomic.Bool
	mu        sync.Mutex
	installed bool
}

// New returns an interceptor handing decoded characters to handoff.
// handoff must be non-blocking. decoder may be nil.
func New(tap Tap, decoder Decoder, handoff func(rune)) *Interceptor {
	return &Interceptor{tap: tap, decoder: decoder, handoff: handoff}
}

// Start installs the hook. Calling Start while already started is a no-op
// that logs a warning. A failed install leaves the interceptor inactive
// and returns a recoverable error wrapping ErrUnavailable.
func (in *Interceptor) Start() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.installed {
		slog.Warn("key hook already installed, ignoring start")
		return nil
	}
	if err := in.tap.Install(in.onKeyDown); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	in.installed = true
	in.active.Store(true)
	slog.Info("key hook installed")
	return nil
}

// Stop removes the hook. Stop while not started is a no-op.
func (in *Interceptor) Stop() {
	in.mu.Lock()
	defer in.mu.Unlock()
	if !in.installed {
		return
	}
	in.active.Store(false)
	in.tap.Remove()
	in.installed = false
	slog.Info("key hook removed")
}

// Active reports whether events are currently being processed.
func (in *Interceptor) Active() bool { return in.active.Load() }

// SetActive pauses or resumes event processing without touching the hook.
// The injection controller pauses the interceptor for the duration of an
// expansion sequence so its own synthetic keystrokes are not re-matched.
func (in *Interceptor) SetActive(v bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.installed {
		in.active.Store(v)
	}
}

// onKeyDown is the hook callback. Fast path only; the expensive fallback
// decode runs solely when the table misses.
func (in *Interceptor) onKeyDown(ev Event) {
	if !in.active.Load() {
		return
	}
	r, ok := lookup(ev.Code, ev.Shift)
	if !ok && in.decoder != nil {
		r, ok = in.decoder.Decode(ev)
	}
	if ok {
		in.handoff(r)
	}
}
