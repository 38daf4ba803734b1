package main

import (
	"path/filepath"
	"testing"
	"time"

	"go.klb.dev/snipd/internal/clip"
	"go.klb.dev/snipd/internal/config"
	"go.klb.dev/snipd/internal/history"
	"go.klb.dev/snipd/internal/message"
	"go.klb.dev/snipd/internal/snippet"
)

func testDaemon(t *testing.T) *daemon {
	t.Helper()
	dir := t.TempDir()
	store, err := history.Open(dir)
	if err != nil {
		t.Fatalf("history.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	snippets, err := snippet.Open(filepath.Join(dir, "snippets.json"))
	if err != nil {
		t.Fatalf("snippet.Open() error = %v", err)
	}

	cfg := config.Defaults()
	cfg.DataDir = dir
	return &daemon{
		cfg:           cfg,
		store:         store,
		snippets:      snippets,
		backend:       clip.NewMemory(),
		started:       time.Now(),
		historyActive: true,
	}
}

func TestDispatchStatus(t *testing.T) {
	d := testDaemon(t)
	resp := d.dispatch(&message.Message{Type: message.TypeStatus})
	if resp.Type != message.TypeStatusResponse || resp.Status == nil {
		t.Fatalf("dispatch(STATUS) = %+v", resp)
	}
	if !resp.Status.HistoryActive || resp.Status.ExpansionActive {
		t.Errorf("status flags = %+v, want history on / expansion off", resp.Status)
	}
	if resp.Status.RetentionCap != config.Defaults().RetentionCap {
		t.Errorf("RetentionCap = %d, want %d", resp.Status.RetentionCap, config.Defaults().RetentionCap)
	}
}

func TestDispatchSnippetLifecycle(t *testing.T) {
	d := testDaemon(t)

	add := d.dispatch(&message.Message{
		Type: message.TypeSnippetAdd, Trigger: "!sig", Content: "Best,\nG",
	})
	if add.Type != message.TypeOK || add.ID == "" {
		t.Fatalf("SNIPPET_ADD = %+v", add)
	}

	// Invalid trigger rejected at the CRUD boundary, never coerced.
	bad := d.dispatch(&message.Message{Type: message.TypeSnippetAdd, Trigger: "x", Content: "y"})
	if bad.Type != message.TypeError {
		t.Errorf("SNIPPET_ADD with short trigger = %+v, want ERROR", bad)
	}

	list := d.dispatch(&message.Message{Type: message.TypeSnippetList})
	if len(list.Snippets) != 1 || list.Snippets[0].Trigger != "!sig" {
		t.Fatalf("SNIPPET_LIST = %+v", list.Snippets)
	}

	del := d.dispatch(&message.Message{Type: message.TypeSnippetDelete, ID: add.ID})
	if del.Type != message.TypeOK {
		t.Fatalf("SNIPPET_DELETE = %+v", del)
	}
}

func TestDispatchHistory(t *testing.T) {
	d := testDaemon(t)
	e := history.NewEntry("copied text", nil)
	if err := d.store.Insert(e); err != nil {
		t.Fatal(err)
	}
	sens := history.NewEntry("hunter2", nil)
	sens.Sensitive = true
	if err := d.store.Insert(sens); err != nil {
		t.Fatal(err)
	}

	list := d.dispatch(&message.Message{Type: message.TypeHistoryList})
	if len(list.Entries) != 2 {
		t.Fatalf("HISTORY_LIST returned %d entries, want 2", len(list.Entries))
	}
	for _, me := range list.Entries {
		if me.Sensitive && me.Preview == "hunter2" {
			t.Error("sensitive entry preview was not masked")
		}
	}

	pin := d.dispatch(&message.Message{Type: message.TypeHistoryPin, ID: e.ID})
	if pin.Type != message.TypeOK {
		t.Fatalf("HISTORY_PIN = %+v", pin)
	}
	list = d.dispatch(&message.Message{Type: message.TypeHistoryList})
	if list.Entries[0].ID != e.ID || !list.Entries[0].Pinned {
		t.Error("pinned entry not first in listing")
	}

	del := d.dispatch(&message.Message{Type: message.TypeHistoryDelete, ID: sens.ID})
	if del.Type != message.TypeOK {
		t.Fatalf("HISTORY_DELETE = %+v", del)
	}
	if resp := d.dispatch(&message.Message{Type: message.TypeHistoryDelete, ID: sens.ID}); resp.Type != message.TypeError {
		t.Errorf("double delete = %+v, want ERROR", resp)
	}
}

func TestDispatchUnknownType(t *testing.T) {
	d := testDaemon(t)
	if resp := d.dispatch(&message.Message{Type: "BOGUS"}); resp.Type != message.TypeError {
		t.Errorf("dispatch(BOGUS) = %+v, want ERROR", resp)
	}
}
