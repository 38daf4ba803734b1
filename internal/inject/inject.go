// Package inject performs the delete-trigger / paste-replacement /
// caret-reposition sequence against the focused application.
package inject

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.klb.dev/snipd/internal/capture"
	"go.klb.dev/snipd/internal/clip"
)

// Simulator is the OS-level input primitive the controller drives. Each
// call is assumed to cost a fixed small latency; the adaptive delay formula
// budgets around that.
type Simulator interface {
	// Backspace deletes one character backward.
	Backspace() error
	// SelectBackward extends the current selection backward by one character.
	SelectBackward() error
	// DeleteSelection deletes the current selection. Returns an error when
	// no deletable selection exists.
	DeleteSelection() error
	// Paste issues the platform's standard paste gesture.
	Paste() error
	// MoveLeft moves the caret one position left.
	MoveLeft() error
}

// Deletion timing. Short triggers are cheaper to remove with plain
// backspaces; longer ones use selection-extend-then-single-delete, which
// holds up better under system load than many rapid individual deletions.
const (
	shortTriggerMax = 3

	baseStepDelay = 12 * time.Millisecond
	loadFactor    = 1.5
	minStepDelay  = 8 * time.Millisecond
	maxTotalDelay = 600 * time.Millisecond
)

// State is the controller's position in the expansion sequence.
type State int32

const (
	StateIdle State = iota
	StateDeleting
	StatePasting
	StateRepositioning
)

// Controller executes expansion sequences. One sequence runs at a time;
// the sequence is inherently serial.
type Controller struct {
	sim     Simulator
	backend clip.Backend
	sup     *capture.Suppressor

	state atomic.Int32
	sleep func(time.Duration)
}

// NewController returns a controller writing programmatic clipboard content
// through backend, marking each write on sup.
func NewController(sim Simulator, backend clip.Backend, sup *capture.Suppressor) *Controller {
	return &Controller{sim: sim, backend: backend, sup: sup, sleep: time.Sleep}
}

// State returns the controller's current sequence state.
func (c *Controller) State() State { return State(c.state.Load()) }

// Expand replaces the just-typed trigger with text in the focused
// application. caretOffset, when >= 0, is the final caret position in runes
// from the end of text. On any simulator error the attempt is aborted; the
// caller keeps its buffer so the user's typed trigger is left in place.
func (c *Controller) Expand(trigger, text string, caretOffset int) error {
	defer c.state.Store(int32(StateIdle))

	n := len([]rune(trigger))
	step := stepDelay(n)

	c.state.Store(int32(StateDeleting))
	if err := c.deleteTrigger(n, step); err != nil {
		return fmt.Errorf("delete trigger: %w", err)
	}

	c.state.Store(int32(StatePasting))
	c.sup.Mark()
	if err := c.backend.WriteText([]byte(text)); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	if err := c.sim.Paste(); err != nil {
		return fmt.Errorf("paste: %w", err)
	}

	if caretOffset > 0 {
		c.state.Store(int32(StateRepositioning))
		for i := 0; i < caretOffset; i++ {
			if err := c.sim.MoveLeft(); err != nil {
				return fmt.Errorf("reposition caret: %w", err)
			}
			c.sleep(minStepDelay)
		}
	}
	return nil
}

// deleteTrigger removes n characters using the strategy appropriate for
// the trigger length, falling back from selection to backspace when the
// selection path cannot produce a deletable selection.
func (c *Controller) deleteTrigger(n int, step time.Duration) error {
	if n <= shortTriggerMax {
		return c.backspaceDelete(n, step)
	}

	selected := 0
	for i := 0; i < n; i++ {
		if err := c.sim.SelectBackward(); err != nil {
			slog.Debug("selection extend failed, using backspace", "err", err)
			return c.collapseAndBackspace(selected, n, step)
		}
		selected++
		c.sleep(step)
	}
	if err := c.sim.DeleteSelection(); err != nil {
		slog.Debug("selection delete failed, using backspace", "err", err)
		return c.collapseAndBackspace(selected, n, step)
	}
	return nil
}

// collapseAndBackspace finishes a deletion after the selection path failed
// with selected characters still highlighted. A backspace with a live
// selection removes the whole selection as one block, so the first press
// accounts for all selected characters and only the remainder gets
// individual backspaces. Counting every press separately here would eat
// the user's text before the trigger.
func (c *Controller) collapseAndBackspace(selected, n int, step time.Duration) error {
	if selected > 0 {
		if err := c.sim.Backspace(); err != nil {
			return err
		}
		c.sleep(step)
		n -= selected
	}
	return c.backspaceDelete(n, step)
}

func (c *Controller) backspaceDelete(n int, step time.Duration) error {
	for i := 0; i < n; i++ {
		if err := c.sim.Backspace(); err != nil {
			return err
		}
		c.sleep(step)
	}
	return nil
}

// stepDelay computes the adaptive per-step delay for an n-character
// trigger: the base delay scaled by a conservative load factor, clamped so
// a single deletion pass never exceeds the total budget.
func stepDelay(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	d := time.Duration(float64(baseStepDelay) * loadFactor)
	if max := maxTotalDelay / time.Duration(n); d > max {
		d = max
	}
	if d < minStepDelay {
		d = minStepDelay
	}
	return d
}
