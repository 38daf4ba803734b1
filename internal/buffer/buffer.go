// Package buffer implements the bounded rolling keystroke buffer shared
// between the key-event callback and the matching pipeline.
package buffer

import (
	"strings"
	"sync"
)

// Buffer is a bounded rune window. Appends evict from the front once the
// capacity is reached, so the buffer always holds the trailing window of
// typed characters. Appends take the write lock only briefly; snapshots
// take the read lock, so the hook callback never waits on a matching pass.
type Buffer struct {
	mu    sync.RWMutex
	runes []rune
	cap   int
}

// New returns a buffer holding at most capacity runes. Capacities below 1
// are treated as 1.
func New(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{cap: capacity}
}

// Append adds r to the end, evicting the oldest rune if the buffer is full.
func (b *Buffer) Append(r rune) {
	b.mu.Lock()
	b.runes = append(b.runes, r)
	if over := len(b.runes) - b.cap; over > 0 {
		b.runes = append(b.runes[:0], b.runes[over:]...)
	}
	b.mu.Unlock()
}

// AppendString adds every rune of s, applying the same eviction rule.
func (b *Buffer) AppendString(s string) {
	if s == "" {
		return
	}
	b.mu.Lock()
	b.runes = append(b.runes, []rune(s)...)
	if over := len(b.runes) - b.cap; over > 0 {
		b.runes = append(b.runes[:0], b.runes[over:]...)
	}
	b.mu.Unlock()
}

// Snapshot returns the current contents as a string.
func (b *Buffer) Snapshot() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.runes)
}

// Len returns the current number of buffered runes.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.runes)
}

// HasSuffix reports whether the live buffer currently ends with s. Used to
// re-validate a match taken from an earlier snapshot before injecting.
func (b *Buffer) HasSuffix(s string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.HasSuffix(string(b.runes), s)
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.runes = b.runes[:0]
	b.mu.Unlock()
}
