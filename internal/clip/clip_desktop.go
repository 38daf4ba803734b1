//go:build linux || darwin || windows

package clip

import (
	"bytes"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.design/x/clipboard"
)

const pollInterval = 150 * time.Millisecond

type desktopBackend struct {
	changes atomic.Uint64
	done    chan struct{}

	mu       sync.Mutex
	lastText []byte
	lastImg  []byte
}

// New returns the system clipboard backend, or a no-op backend if the
// display environment is unavailable (e.g. a headless server without X11 or
// Wayland). clipboard.Init is called here rather than in init() so that CLI
// sub-commands (status, history, snippet) don't trigger the warning.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return &headlessBackend{}
	}
	b := &desktopBackend{done: make(chan struct{})}
	go b.poll()
	return b
}

func (b *desktopBackend) Name() string { return "system clipboard (poll)" }

func (b *desktopBackend) poll() {
	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-t.C:
			text := clipboard.Read(clipboard.FmtText)
			img := clipboard.Read(clipboard.FmtImage)
			b.mu.Lock()
			changed := !bytes.Equal(text, b.lastText) || !bytes.Equal(img, b.lastImg)
			if changed {
				b.lastText = text
				b.lastImg = img
			}
			b.mu.Unlock()
			if changed {
				b.changes.Add(1)
			}
		}
	}
}

func (b *desktopBackend) ReadText() []byte {
	return clipboard.Read(clipboard.FmtText)
}

func (b *desktopBackend) ReadRich() []Rich {
	var reps []Rich
	if img := clipboard.Read(clipboard.FmtImage); img != nil {
		reps = append(reps, Rich{MIME: "image/png", Data: img})
	}
	return reps
}

// WriteText advances the change token synchronously, the way an OS change
// count would. The next poll then compares against the written content, so
// a suppression mark set for this write is consumed by its own token change
// rather than lingering until the compare loop catches up.
func (b *desktopBackend) WriteText(text []byte) error {
	clipboard.Write(clipboard.FmtText, text)
	b.noteWrite(text)
	return nil
}

func (b *desktopBackend) noteWrite(text []byte) {
	b.mu.Lock()
	changed := !bytes.Equal(text, b.lastText)
	if changed {
		b.lastText = append([]byte(nil), text...)
	}
	b.mu.Unlock()
	if changed {
		b.changes.Add(1)
	}
}

func (b *desktopBackend) ChangeCount() uint64 { return b.changes.Load() }
func (b *desktopBackend) Close()              { close(b.done) }
