package capture

import (
	"fmt"
	"log/slog"
	"strings"

	"go.klb.dev/snipd/internal/clip"
	"go.klb.dev/snipd/internal/history"
)

// Engine builds history entries from the current clipboard payload,
// deduplicates them against the existing collection, and enforces the
// retention cap.
type Engine struct {
	backend    clip.Backend
	store      *history.Store
	payloadDir string
	cap        int
}

// NewEngine returns a capture engine writing to store with the given
// unpinned retention cap.
func NewEngine(backend clip.Backend, store *history.Store, payloadDir string, cap int) *Engine {
	return &Engine{backend: backend, store: store, payloadDir: payloadDir, cap: cap}
}

// Capture records the current clipboard contents as a history entry.
// Missing or empty plain text means "no capturable content", not an error.
// A capture whose comparison text equals an existing entry is discarded;
// the existing entry keeps its position and pin status.
func (e *Engine) Capture() error {
	text := string(e.backend.ReadText())
	if strings.TrimSpace(text) == "" {
		return nil
	}

	comparison := comparisonText(text)
	if existing, err := e.store.FindByComparison(comparison); err == nil {
		slog.Debug("duplicate capture discarded",
			"existing", existing.ID, "pinned", existing.Pinned)
		return nil
	} else if err != history.ErrNotFound {
		return fmt.Errorf("dedup lookup: %w", err)
	}

	// Rich formats are a bonus: each may fail independently, leaving plain
	// text as the durable minimum.
	var paths []string
	for _, rep := range e.backend.ReadRich() {
		path, err := history.WritePayload(e.payloadDir, rep.MIME, rep.Data)
		if err != nil {
			slog.Warn("rich payload not persisted", "mime", rep.MIME, "err", err)
			continue
		}
		paths = append(paths, path)
	}

	entry := history.NewEntry(text, paths)
	if err := e.store.Insert(entry); err != nil {
		history.RemovePayloads(paths)
		return fmt.Errorf("insert capture: %w", err)
	}
	slog.Debug("captured clipboard change", "id", entry.ID, "chars", len([]rune(text)))

	evicted, err := e.store.Prune(e.cap)
	if err != nil {
		return fmt.Errorf("apply retention cap: %w", err)
	}
	if len(evicted) > 0 {
		slog.Debug("evicted history entries", "count", len(evicted))
	}
	return nil
}

// comparisonText reproduces the store's dedup key for candidate content:
// the full text when it would be retained, otherwise the preview.
func comparisonText(text string) string {
	runes := []rune(text)
	if len(runes) <= history.PreviewLimit || len(runes) < history.FullTextCeiling {
		return text
	}
	return string(runes[:history.PreviewLimit])
}
