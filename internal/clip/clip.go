// Package clip provides a unified interface to the system clipboard across
// platforms. Build constraints select the appropriate implementation:
//
//	clip_desktop.go  — Linux / macOS / Windows via golang.design/x/clipboard,
//	                   change detection by polling content comparison
//	clip_other.go    — headless / container stub
//
// The polling interval here is internal to the backend; consumers observe
// changes through ChangeCount, a monotonically increasing token.
package clip

// Rich is a non-plain-text clipboard representation.
type Rich struct {
	MIME string
	Data []byte
}

// Backend is the interface that all platform clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// ReadText returns the current plain-text contents, or nil when the
	// clipboard holds no text.
	ReadText() []byte

	// ReadRich returns richer representations of the current contents,
	// most complete first. May be empty.
	ReadRich() []Rich

	// WriteText replaces the clipboard contents with text. The write
	// advances ChangeCount before returning (unless the content is
	// unchanged); a caller that marks the write as internal can rely on
	// the very next token change being its own.
	WriteText(text []byte) error

	// ChangeCount returns a token that increases whenever the clipboard
	// contents change. Callers compare successive samples; the absolute
	// value carries no meaning.
	ChangeCount() uint64

	// Close releases any resources held by the backend.
	Close()
}
