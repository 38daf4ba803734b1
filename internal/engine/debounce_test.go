package engine

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebounceCoalesces(t *testing.T) {
	var runs atomic.Int32
	db := NewDebouncer(30*time.Millisecond, func() { runs.Add(1) })

	// A burst of rapid triggers produces exactly one pass.
	for i := 0; i < 20; i++ {
		db.Trigger()
		time.Sleep(time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)
	if got := runs.Load(); got != 1 {
		t.Errorf("pass ran %d times for one burst, want 1", got)
	}

	// A second burst after a pause produces a second pass.
	db.Trigger()
	time.Sleep(100 * time.Millisecond)
	if got := runs.Load(); got != 2 {
		t.Errorf("pass ran %d times after two bursts, want 2", got)
	}
}

func TestDebounceStopDiscardsPending(t *testing.T) {
	var runs atomic.Int32
	db := NewDebouncer(20*time.Millisecond, func() { runs.Add(1) })

	db.Trigger()
	db.Stop()
	time.Sleep(60 * time.Millisecond)
	if got := runs.Load(); got != 0 {
		t.Errorf("pass ran %d times after Stop, want 0", got)
	}
}
