// Package trigger maintains the in-memory trigger index and the
// word-boundary matcher that decides when a typed trigger has completed.
package trigger

import (
	"sort"
	"strings"
	"sync"

	"go.klb.dev/snipd/internal/snippet"
)

// delimiters are the characters that may legitimately precede a trigger.
// A trigger preceded by anything else is a same-word false positive
// ("mail" must not fire inside "gmail").
const delimiters = " \t\n\r.,;:!?()[]{}<>\"'"

// Match is a successful trigger occurrence at the end of a buffer snapshot.
type Match struct {
	Snippet snippet.Snippet
}

// Index maps registered triggers to their snippets, sorted longest-first so
// a short trigger can never mask a longer one sharing its suffix. Rebuilt
// wholesale on every snippet-set change.
type Index struct {
	mu      sync.RWMutex
	entries []snippet.Snippet // sorted by trigger length descending
}

// NewIndex returns an empty index.
func NewIndex() *Index { return &Index{} }

// Rebuild replaces the index contents with the given snippet set.
func (ix *Index) Rebuild(snippets []snippet.Snippet) {
	entries := append([]snippet.Snippet(nil), snippets...)
	sort.SliceStable(entries, func(i, j int) bool {
		return len([]rune(entries[i].Trigger)) > len([]rune(entries[j].Trigger))
	})
	ix.mu.Lock()
	ix.entries = entries
	ix.mu.Unlock()
}

// Len returns the number of indexed triggers.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// MatchSuffix evaluates the buffer snapshot against every registered
// trigger, longest first, and returns the first trigger that ends the
// buffer at a word boundary. Returns nil when nothing matches.
func (ix *Index) MatchSuffix(buf string) *Match {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	runes := []rune(buf)
	for _, sn := range ix.entries {
		if boundaryMatch(runes, sn.Trigger) {
			return &Match{Snippet: sn}
		}
	}
	return nil
}

// boundaryMatch reports whether buf ends with trig and the character
// immediately before trig (if any) is a delimiter. A trigger occupying the
// whole buffer is automatically a valid boundary.
func boundaryMatch(buf []rune, trig string) bool {
	t := []rune(trig)
	if len(t) == 0 || len(buf) < len(t) {
		return false
	}
	start := len(buf) - len(t)
	for i, r := range t {
		if buf[start+i] != r {
			return false
		}
	}
	if start == 0 {
		return true
	}
	return strings.ContainsRune(delimiters, buf[start-1])
}
