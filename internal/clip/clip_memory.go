package clip

import (
	"bytes"
	"sync"
)

// Memory is an in-process Backend used by tests and by components that need
// a clipboard double. Writes advance the change count exactly once each.
type Memory struct {
	mu      sync.Mutex
	text    []byte
	rich    []Rich
	changes uint64
}

// NewMemory returns an empty in-memory clipboard.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Name() string { return "memory" }

func (m *Memory) ReadText() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.text == nil {
		return nil
	}
	return bytes.Clone(m.text)
}

func (m *Memory) ReadRich() []Rich {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Rich, len(m.rich))
	copy(out, m.rich)
	return out
}

func (m *Memory) WriteText(text []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if bytes.Equal(text, m.text) {
		// Identical content: the system clipboard would not advance its
		// change token either.
		return nil
	}
	m.text = bytes.Clone(text)
	m.rich = nil
	m.changes++
	return nil
}

// SetContents simulates an external copy with optional rich representations.
func (m *Memory) SetContents(text string, rich ...Rich) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = []byte(text)
	m.rich = rich
	m.changes++
}

func (m *Memory) ChangeCount() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.changes
}

func (m *Memory) Close() {}
