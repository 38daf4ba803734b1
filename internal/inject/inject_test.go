package inject

import (
	"errors"
	"testing"
	"time"

	"go.klb.dev/snipd/internal/capture"
	"go.klb.dev/snipd/internal/clip"
)

// fakeSim records the gesture sequence and models a text field the way
// common widgets behave: a backspace with a live selection removes the
// whole selection as one block.
type fakeSim struct {
	ops   []string
	field []rune

	selectionLen    int
	failSelect      bool
	failSelectAfter int // fail once the selection reaches this length (0: never)
	failDelete      bool
	failPaste       bool

	pasteFrom func() string
}

func (f *fakeSim) Backspace() error {
	f.ops = append(f.ops, "backspace")
	if f.selectionLen > 0 {
		f.field = f.field[:len(f.field)-min(f.selectionLen, len(f.field))]
		f.selectionLen = 0
	} else if len(f.field) > 0 {
		f.field = f.field[:len(f.field)-1]
	}
	return nil
}

func (f *fakeSim) SelectBackward() error {
	if f.failSelect {
		return errors.New("select failed")
	}
	if f.failSelectAfter > 0 && f.selectionLen == f.failSelectAfter {
		return errors.New("select failed")
	}
	f.ops = append(f.ops, "select")
	f.selectionLen++
	return nil
}

func (f *fakeSim) DeleteSelection() error {
	if f.failDelete || f.selectionLen == 0 {
		return errors.New("no deletable selection")
	}
	f.ops = append(f.ops, "delete-selection")
	f.field = f.field[:len(f.field)-min(f.selectionLen, len(f.field))]
	f.selectionLen = 0
	return nil
}

func (f *fakeSim) Paste() error {
	if f.failPaste {
		return errors.New("paste failed")
	}
	f.ops = append(f.ops, "paste")
	if f.pasteFrom != nil {
		f.field = append(f.field, []rune(f.pasteFrom())...)
	}
	return nil
}

func (f *fakeSim) MoveLeft() error {
	f.ops = append(f.ops, "left")
	return nil
}

func (f *fakeSim) countOf(op string) int {
	n := 0
	for _, o := range f.ops {
		if o == op {
			n++
		}
	}
	return n
}

func newTestController(sim Simulator) (*Controller, *clip.Memory, *capture.Suppressor) {
	backend := clip.NewMemory()
	sup := &capture.Suppressor{}
	c := NewController(sim, backend, sup)
	c.sleep = func(time.Duration) {}
	return c, backend, sup
}

func TestShortTriggerUsesBackspaces(t *testing.T) {
	sim := &fakeSim{}
	c, backend, sup := newTestController(sim)

	if err := c.Expand("!m", "match", -1); err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if got := sim.countOf("backspace"); got != 2 {
		t.Errorf("backspaces = %d, want 2", got)
	}
	if sim.countOf("select") != 0 {
		t.Error("short trigger used the selection strategy")
	}
	if string(backend.ReadText()) != "match" {
		t.Errorf("clipboard = %q, want %q", backend.ReadText(), "match")
	}
	if !sup.Consume() {
		t.Error("programmatic write was not marked on the suppressor")
	}
}

func TestLongTriggerUsesSelection(t *testing.T) {
	sim := &fakeSim{}
	c, _, _ := newTestController(sim)

	if err := c.Expand("!mail", "m@example.com", -1); err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if got := sim.countOf("select"); got != 5 {
		t.Errorf("selection extensions = %d, want 5", got)
	}
	if got := sim.countOf("delete-selection"); got != 1 {
		t.Errorf("selection deletes = %d, want 1", got)
	}
	if sim.countOf("backspace") != 0 {
		t.Error("selection path also issued backspaces")
	}
}

func TestSelectFailureFallsBackToBackspace(t *testing.T) {
	// Selection never starts: nothing is highlighted, so the fallback is
	// one backspace per trigger character.
	sim := &fakeSim{failSelect: true}
	c, _, _ := newTestController(sim)

	if err := c.Expand("!mail", "x", -1); err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if got := sim.countOf("backspace"); got != 5 {
		t.Errorf("fallback backspaces = %d, want 5", got)
	}
	if sim.countOf("paste") != 1 {
		t.Error("expansion did not proceed after fallback")
	}
}

func TestDeleteFailureCollapsesSelectionWithOneBackspace(t *testing.T) {
	// The whole trigger is selected when DeleteSelection fails; one
	// backspace removes the selected block, so issuing one per character
	// would eat text before the trigger.
	sim := &fakeSim{failDelete: true, field: []rune("dear bob !long")}
	c, backend, _ := newTestController(sim)
	sim.pasteFrom = func() string { return string(backend.ReadText()) }

	if err := c.Expand("!long", "EXPANDED", -1); err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if got := sim.countOf("backspace"); got != 1 {
		t.Errorf("fallback backspaces = %d, want 1", got)
	}
	if got := string(sim.field); got != "dear bob EXPANDED" {
		t.Errorf("field = %q, want %q", got, "dear bob EXPANDED")
	}
}

func TestPartialSelectionFallbackDeletesExactlyTrigger(t *testing.T) {
	// Selection dies after 3 of 5 characters: the first backspace removes
	// the 3 highlighted, the remaining 2 get individual presses.
	sim := &fakeSim{failSelectAfter: 3, field: []rune("dear bob !long")}
	c, backend, _ := newTestController(sim)
	sim.pasteFrom = func() string { return string(backend.ReadText()) }

	if err := c.Expand("!long", "EXPANDED", -1); err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if got := sim.countOf("backspace"); got != 3 {
		t.Errorf("fallback backspaces = %d, want 3", got)
	}
	if got := string(sim.field); got != "dear bob EXPANDED" {
		t.Errorf("field = %q, want %q", got, "dear bob EXPANDED")
	}
}

func TestCaretRepositioning(t *testing.T) {
	sim := &fakeSim{}
	c, _, _ := newTestController(sim)

	// "Hi Gal!" with the caret one rune before the end.
	if err := c.Expand("!sig", "Hi Gal!", 1); err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if got := sim.countOf("left"); got != 1 {
		t.Errorf("caret moves = %d, want 1", got)
	}
}

func TestPasteFailureAborts(t *testing.T) {
	sim := &fakeSim{failPaste: true}
	c, _, _ := newTestController(sim)

	if err := c.Expand("!sig", "text", 2); err == nil {
		t.Fatal("Expand() = nil error, want paste failure")
	}
	if sim.countOf("left") != 0 {
		t.Error("caret repositioning ran after a failed paste")
	}
	if c.State() != StateIdle {
		t.Errorf("State() = %v after abort, want StateIdle", c.State())
	}
}

func TestStepDelayClamps(t *testing.T) {
	// Short triggers get the load-scaled base delay.
	if d := stepDelay(2); d != time.Duration(float64(baseStepDelay)*loadFactor) {
		t.Errorf("stepDelay(2) = %s, want load-scaled base", d)
	}
	// Mid-length triggers get squeezed by the total budget.
	if d := stepDelay(50); d != maxTotalDelay/50 {
		t.Errorf("stepDelay(50) = %s, want %s", d, maxTotalDelay/50)
	}
	// The per-step floor always holds, even for very long triggers.
	if d := stepDelay(200); d != minStepDelay {
		t.Errorf("stepDelay(200) = %s, want floor %s", d, minStepDelay)
	}
}
