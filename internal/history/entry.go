// Package history implements the durable clipboard history store: entry
// records in SQLite and rich-format payloads as files in the data directory.
package history

import (
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	// PreviewLimit is the preview length bound in code points.
	PreviewLimit = 200

	// FullTextCeiling is the largest content size, in code points, kept as
	// recoverable full text. Above it only the preview (plus any rich
	// payload files) is retained.
	FullTextCeiling = 1_000_000
)

// Entry is one captured clipboard item. Mutated only through pin-toggle.
type Entry struct {
	ID string

	// Preview is the bounded display text, always present.
	Preview string

	// FullText is the complete text, populated only when the content is
	// longer than the preview bound and below the ceiling. Nil for small
	// content (the preview is definitive) and for oversized content.
	FullText *string

	// PayloadPaths reference on-disk rich-format blobs. The bytes are
	// never embedded in the record.
	PayloadPaths []string

	Timestamp time.Time
	Pinned    bool
	Sensitive bool
}

// NewEntry builds an entry from plain text, applying the preview/full-text
// truncation rule. The caller has already rejected empty text.
func NewEntry(text string, payloadPaths []string) Entry {
	e := Entry{
		ID:           ulid.Make().String(),
		PayloadPaths: payloadPaths,
		Timestamp:    time.Now(),
	}
	runes := []rune(text)
	if len(runes) <= PreviewLimit {
		e.Preview = text
		return e
	}
	e.Preview = string(runes[:PreviewLimit])
	if len(runes) < FullTextCeiling {
		full := text
		e.FullText = &full
	}
	return e
}

// ComparisonText is the text dedup compares on: full text when present,
// otherwise the preview.
func (e Entry) ComparisonText() string {
	if e.FullText != nil {
		return *e.FullText
	}
	return e.Preview
}
