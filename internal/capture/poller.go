package capture

import (
	"log/slog"
	"time"

	"go.klb.dev/snipd/internal/clip"
)

// Poller samples the clipboard change token at a fixed interval and
// forwards genuine external changes to the capture engine. At most one
// capture is in flight at a time: the next tick is only evaluated after
// the previous capture returns.
type Poller struct {
	backend  clip.Backend
	engine   *Engine
	sup      *Suppressor
	interval time.Duration

	lastToken uint64
	done      chan struct{}
}

// NewPoller returns a poller; call Run in a goroutine. The change-token
// baseline is taken here, so clipboard changes between construction and Run
// are picked up by the first tick rather than folded into the baseline.
func NewPoller(backend clip.Backend, engine *Engine, sup *Suppressor, interval time.Duration) *Poller {
	return &Poller{
		backend:   backend,
		engine:    engine,
		sup:       sup,
		interval:  interval,
		lastToken: backend.ChangeCount(),
		done:      make(chan struct{}),
	}
}

// Run polls until Stop is called. An in-flight capture is left to finish;
// capture is a short local operation.
func (p *Poller) Run() {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-p.done:
			return
		case <-t.C:
			p.tick()
		}
	}
}

// Stop cancels the poll timer.
func (p *Poller) Stop() { close(p.done) }

func (p *Poller) tick() {
	token := p.backend.ChangeCount()
	if token == p.lastToken {
		// A write of identical content never advances the token; clear a
		// stale suppression mark so it cannot swallow a later genuine change.
		p.sup.Consume()
		return
	}
	p.lastToken = token

	if p.sup.Consume() {
		slog.Debug("ignoring internal clipboard write", "token", token)
		return
	}
	if err := p.engine.Capture(); err != nil {
		slog.Warn("clipboard capture failed", "err", err)
	}
}
