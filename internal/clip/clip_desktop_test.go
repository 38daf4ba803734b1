//go:build linux || darwin || windows

package clip

import "testing"

// The change token must advance at write time, not when the background
// compare loop next runs. A poller sampling the token between a
// programmatic write and the compare loop's pass would otherwise see no
// change, clear the suppression mark as stale, and record the daemon's own
// write on the following tick.
func TestWriteAdvancesTokenSynchronously(t *testing.T) {
	b := &desktopBackend{done: make(chan struct{})}

	before := b.ChangeCount()
	b.noteWrite([]byte("programmatic"))
	if got := b.ChangeCount(); got != before+1 {
		t.Fatalf("ChangeCount() after write = %d, want %d", got, before+1)
	}

	// Rewriting identical content is not a change.
	b.noteWrite([]byte("programmatic"))
	if got := b.ChangeCount(); got != before+1 {
		t.Errorf("ChangeCount() after identical rewrite = %d, want %d", got, before+1)
	}

	b.noteWrite([]byte("different"))
	if got := b.ChangeCount(); got != before+2 {
		t.Errorf("ChangeCount() after new content = %d, want %d", got, before+2)
	}
}

// The compare loop must not double-count a write it already accounted for:
// after WriteText the stored last-seen content matches what the next poll
// reads back.
func TestWriteUpdatesComparisonBaseline(t *testing.T) {
	b := &desktopBackend{done: make(chan struct{})}
	b.noteWrite([]byte("expansion text"))

	b.mu.Lock()
	last := string(b.lastText)
	b.mu.Unlock()
	if last != "expansion text" {
		t.Errorf("lastText = %q, want the written content", last)
	}
}
