package history

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// payloadExt maps rich-representation MIME types to file extensions.
var payloadExt = map[string]string{
	"image/png":       ".png",
	"text/html":       ".html",
	"text/rtf":        ".rtf",
	"application/rtf": ".rtf",
}

// WritePayload persists one rich-format blob to a UUID-named file in dir
// and returns its path.
func WritePayload(dir, mime string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create payload directory: %w", err)
	}
	ext := payloadExt[mime]
	if ext == "" {
		ext = ".bin"
	}
	path := filepath.Join(dir, uuid.NewString()+ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write payload: %w", err)
	}
	return path, nil
}

// RemovePayloads deletes payload files best-effort; failures are logged,
// never fatal.
func RemovePayloads(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			slog.Warn("could not delete payload file", "path", p, "err", err)
		}
	}
}
