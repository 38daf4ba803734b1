// Package snippet defines snippet records and the file-backed store the
// expansion engine reads them from.
package snippet

import (
	"fmt"
	"strings"
	"unicode"
)

// CaretMarker is the character a snippet template may contain once to mark
// where the caret should land after expansion.
const CaretMarker = '|'

const (
	minTriggerLen = 2
	maxTriggerLen = 20
	maxContentLen = 10000
)

// Snippet maps a typed trigger to a template.
type Snippet struct {
	ID      string `json:"id"`
	Trigger string `json:"trigger"`
	Content string `json:"content"`
}

// Validate checks the trigger and content bounds. existing is the current
// snippet set; the trigger must be unique among them case-insensitively
// (the snippet's own ID is skipped, so edits validate cleanly).
func (s Snippet) Validate(existing []Snippet) error {
	runes := []rune(s.Trigger)
	if len(runes) < minTriggerLen || len(runes) > maxTriggerLen {
		return fmt.Errorf("trigger must be %d-%d characters, got %d", minTriggerLen, maxTriggerLen, len(runes))
	}
	onlyMarker := true
	for _, r := range runes {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return fmt.Errorf("trigger contains non-printable or whitespace character %q", r)
		}
		if r != CaretMarker {
			onlyMarker = false
		}
	}
	if onlyMarker {
		return fmt.Errorf("trigger cannot consist solely of the caret marker %q", CaretMarker)
	}
	if n := len([]rune(s.Content)); n < 1 || n > maxContentLen {
		return fmt.Errorf("content must be 1-%d characters, got %d", maxContentLen, n)
	}
	lower := strings.ToLower(s.Trigger)
	for _, other := range existing {
		if other.ID == s.ID {
			continue
		}
		if strings.ToLower(other.Trigger) == lower {
			return fmt.Errorf("trigger %q already in use", s.Trigger)
		}
	}
	return nil
}
