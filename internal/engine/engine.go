// Package engine composes the expansion pipeline: keystrokes flow from the
// interceptor into the rolling buffer, a debounced pass matches the buffer
// tail against the trigger index, and matches are expanded and injected.
package engine

import (
	"context"
	"log/slog"
	"time"

	"go.klb.dev/snipd/internal/buffer"
	"go.klb.dev/snipd/internal/inject"
	"go.klb.dev/snipd/internal/keyhook"
	"go.klb.dev/snipd/internal/snippet"
	"go.klb.dev/snipd/internal/template"
	"go.klb.dev/snipd/internal/trigger"
)

// Engine owns the expansion half of the daemon. Construct with New, feed
// it snippet-set updates via SetSnippets, and drive its lifecycle with
// Start/Stop from the composition root.
type Engine struct {
	buf         *buffer.Buffer
	index       *trigger.Index
	proc        *template.Processor
	ctrl        *inject.Controller
	interceptor *keyhook.Interceptor
	deb         *Debouncer
}

// Options bundles the engine's construction parameters.
type Options struct {
	Tap              keyhook.Tap
	Decoder          keyhook.Decoder
	Controller       *inject.Controller
	Processor        *template.Processor
	BufferCapacity   int
	DebounceInterval time.Duration
}

// New wires the pipeline. The interceptor hand-off appends to the buffer
// and (re)schedules the debounced matching pass; both are non-blocking.
func New(opts Options) *Engine {
	e := &Engine{
		buf:   buffer.New(opts.BufferCapacity),
		index: trigger.NewIndex(),
		proc:  opts.Processor,
		ctrl:  opts.Controller,
	}
	e.deb = NewDebouncer(opts.DebounceInterval, e.matchPass)
	e.interceptor = keyhook.New(opts.Tap, opts.Decoder, e.handleRune)
	return e
}

// SetSnippets rebuilds the trigger index. Wire this to the snippet store's
// change listener.
func (e *Engine) SetSnippets(snippets []snippet.Snippet) {
	e.index.Rebuild(snippets)
	slog.Debug("trigger index rebuilt", "triggers", e.index.Len())
}

// Start installs the key hook. A permission failure is returned to the
// caller as a recoverable error; the engine stays stopped.
func (e *Engine) Start() error { return e.interceptor.Start() }

// Stop removes the hook, discards any pending debounced pass, and clears
// the buffer.
func (e *Engine) Stop() {
	e.interceptor.Stop()
	e.deb.Stop()
	e.buf.Clear()
}

// Active reports whether the interceptor is processing keystrokes.
func (e *Engine) Active() bool { return e.interceptor.Active() }

func (e *Engine) handleRune(r rune) {
	e.buf.Append(r)
	e.deb.Trigger()
}

// matchPass runs on the debounce goroutine after a typing pause. It
// matches a snapshot of the buffer, expands the template, re-validates the
// match against the live buffer tail, and dispatches the injection
// sequence. The buffer is cleared only after the whole sequence is
// dispatched; on any failure it is left intact along with the user's
// typed trigger.
func (e *Engine) matchPass() {
	snap := e.buf.Snapshot()
	m := e.index.MatchSuffix(snap)
	if m == nil {
		return
	}

	// Pause the interceptor so the synthetic keystrokes of the injection
	// sequence cannot re-enter the buffer and re-match mid-sequence.
	e.interceptor.SetActive(false)
	defer e.interceptor.SetActive(true)

	res, err := e.proc.Process(context.Background(), m.Snippet.Content)
	if err != nil {
		slog.Warn("template expansion failed",
			"trigger", m.Snippet.Trigger, "err", err)
		return
	}

	// The user may have kept typing while the template was processed;
	// never expand a trigger that is no longer the buffer tail.
	if !e.buf.HasSuffix(m.Snippet.Trigger) {
		slog.Debug("match superseded by newer keystrokes", "trigger", m.Snippet.Trigger)
		return
	}

	if err := e.ctrl.Expand(m.Snippet.Trigger, res.Text, res.CaretOffset); err != nil {
		slog.Warn("injection aborted", "trigger", m.Snippet.Trigger, "err", err)
		return
	}
	e.buf.Clear()
	slog.Debug("expanded trigger", "trigger", m.Snippet.Trigger, "chars", len(res.Text))
}
