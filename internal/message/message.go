// Package message defines the snipd IPC protocol.
//
// All messages are newline-delimited JSON exchanged over the local IPC
// socket between the CLI sub-commands and a running daemon. Each message is
// exactly one line: <json>\n
package message

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type identifies the kind of message.
type Type string

const (
	TypeStatus         Type = "STATUS"
	TypeStatusResponse Type = "STATUS_RESPONSE"
	TypeHistoryList    Type = "HISTORY_LIST"
	TypeHistoryEntries Type = "HISTORY_ENTRIES"
	TypeHistoryPin     Type = "HISTORY_PIN"
	TypeHistoryDelete  Type = "HISTORY_DELETE"
	TypeSnippetList    Type = "SNIPPET_LIST"
	TypeSnippets       Type = "SNIPPETS"
	TypeSnippetAdd     Type = "SNIPPET_ADD"
	TypeSnippetDelete  Type = "SNIPPET_DELETE"
	TypeOK             Type = "OK"
	TypeError          Type = "ERROR"
)

// Entry is the wire form of a history entry. Full text and payload bytes
// never travel over IPC; the daemon returns previews and ids only.
type Entry struct {
	ID        string    `json:"id"`
	Preview   string    `json:"preview"`
	Pinned    bool      `json:"pinned"`
	Sensitive bool      `json:"sensitive,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Snippet is the wire form of a snippet definition.
type Snippet struct {
	ID      string `json:"id"`
	Trigger string `json:"trigger"`
	Content string `json:"content"`
}

// Status carries daemon counters for the status sub-command.
type Status struct {
	Version          string `json:"version"`
	Uptime           string `json:"uptime"`
	HistoryCount     int    `json:"history_count"`
	PinnedCount      int    `json:"pinned_count"`
	SnippetCount     int    `json:"snippet_count"`
	RetentionCap     int    `json:"retention_cap"`
	ExpansionActive  bool   `json:"expansion_active"`
	HistoryActive    bool   `json:"history_active"`
	ClipboardBackend string `json:"clipboard_backend"`
}

// Message is the top-level wire envelope.
type Message struct {
	Type Type `json:"type"`

	// Request fields
	ID      string `json:"id,omitempty"`      // HISTORY_PIN / HISTORY_DELETE / SNIPPET_DELETE
	Limit   int    `json:"limit,omitempty"`   // HISTORY_LIST
	Trigger string `json:"trigger,omitempty"` // SNIPPET_ADD
	Content string `json:"content,omitempty"` // SNIPPET_ADD

	// Response fields
	Entries  []Entry   `json:"entries,omitempty"`
	Snippets []Snippet `json:"snippets,omitempty"`
	Status   *Status   `json:"status,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Encode serialises the message to JSON (no trailing newline).
func (m *Message) Encode() ([]byte, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", m.Type, err)
	}
	return raw, nil
}

// Decode deserialises one message from raw JSON.
func Decode(raw []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal message: %w", err)
	}
	if m.Type == "" {
		return nil, fmt.Errorf("message missing type")
	}
	return &m, nil
}

// Errorf builds an ERROR response.
func Errorf(format string, args ...any) *Message {
	return &Message{Type: TypeError, Error: fmt.Sprintf(format, args...)}
}
