package engine

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid triggers into one invocation of fn per pause:
// each Trigger cancels any pending not-yet-run invocation and schedules a
// new one. An invocation already executing when Trigger is called runs to
// completion against whatever snapshot it took.
type Debouncer struct {
	d  time.Duration
	fn func()

	mu sync.Mutex
	t  *time.Timer
}

// NewDebouncer returns a debouncer invoking fn after d of quiet.
func NewDebouncer(d time.Duration, fn func()) *Debouncer {
	return &Debouncer{d: d, fn: fn}
}

// Trigger (re)schedules fn. Safe to call from the hook callback: it takes
// a short mutex and never runs fn inline.
func (db *Debouncer) Trigger() {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.t != nil {
		db.t.Stop()
	}
	db.t = time.AfterFunc(db.d, db.fn)
}

// Stop discards any pending invocation.
func (db *Debouncer) Stop() {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.t != nil {
		db.t.Stop()
		db.t = nil
	}
}
