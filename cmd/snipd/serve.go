package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/snipd/internal/capture"
	"go.klb.dev/snipd/internal/clip"
	"go.klb.dev/snipd/internal/config"
	"go.klb.dev/snipd/internal/engine"
	"go.klb.dev/snipd/internal/history"
	"go.klb.dev/snipd/internal/inject"
	"go.klb.dev/snipd/internal/ipc"
	"go.klb.dev/snipd/internal/keyhook"
	"go.klb.dev/snipd/internal/message"
	"go.klb.dev/snipd/internal/snippet"
	"go.klb.dev/snipd/internal/template"
	"go.klb.dev/snipd/internal/wire"
)

func newServeCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the clipboard history + expansion daemon",
		Long: `Starts the snipd daemon: records clipboard changes into the local
history database and expands snippet triggers typed anywhere.

Config file search order:
  /etc/snipd/snipd.toml
  $HOME/.config/snipd/snipd.toml
  path supplied via --config

Precedence (lowest → highest): defaults → config file → SNIPD_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runServe(v) },
	}

	f := cmd.Flags()
	f.String("data-dir", "", "data directory (default: ~/.snipd)")
	f.Int("retention-cap", 0, "max unpinned history entries (default: 200)")
	f.Duration("poll-interval", 0, "clipboard poll interval (default: 400ms)")
	f.Duration("debounce", 0, "keystroke debounce interval (default: 80ms)")
	f.Int("buffer-capacity", 0, "keystroke buffer capacity in runes (default: 500)")
	f.Duration("prompt-timeout", 0, "user-variable prompt timeout (default: 30s)")
	f.Bool("no-expansion", false, "disable the text-expansion engine")
	f.Bool("no-history", false, "disable clipboard history capture")
	f.String("key-device", "", "input event device for the key tap (default: auto-detect)")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

// daemon bundles the running services the IPC handlers talk to.
type daemon struct {
	cfg      config.Config
	store    *history.Store
	snippets *snippet.Store
	backend  clip.Backend
	eng      *engine.Engine
	started  time.Time

	expansionActive bool
	historyActive   bool
}

func runServe(v *viper.Viper) error {
	setupLogging(v)

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}

	slog.Info("snipd starting",
		"version", Version,
		"data_dir", cfg.DataDir,
		"expansion", cfg.ExpansionEnabled,
		"history", cfg.HistoryEnabled,
	)

	store, err := history.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("history store: %w", err)
	}
	defer store.Close()

	snippets, err := snippet.Open(cfg.SnippetPath())
	if err != nil {
		return fmt.Errorf("snippet store: %w", err)
	}
	if err := snippets.Watch(); err != nil {
		slog.Warn("snippet file watch unavailable, edits require restart", "err", err)
	}
	defer snippets.Close()

	backend := clip.New()
	defer backend.Close()

	d := &daemon{
		cfg:      cfg,
		store:    store,
		snippets: snippets,
		backend:  backend,
		started:  time.Now(),
	}

	var sup capture.Suppressor

	if cfg.HistoryEnabled {
		eng := capture.NewEngine(backend, store, cfg.PayloadDir(), cfg.RetentionCap)
		poller := capture.NewPoller(backend, eng, &sup, cfg.PollInterval)
		go poller.Run()
		defer poller.Stop()
		d.historyActive = true
	}

	if cfg.ExpansionEnabled {
		d.eng, d.expansionActive = startExpansion(cfg, backend, &sup, snippets)
		if d.eng != nil {
			defer d.eng.Stop()
		}
	}

	ln, err := ipc.Listen()
	if err != nil {
		return fmt.Errorf("IPC socket: %w", err)
	}
	slog.Info("IPC socket listening", "path", ipc.SocketPath())

	for {
		conn, err := ln.Accept()
		if err != nil {
			slog.Error("accept failed", "err", err)
			continue
		}
		go d.handleConn(conn)
	}
}

// startExpansion builds and starts the expansion engine. Permission
// failures (key tap or uinput unavailable) are surfaced once as a warning
// and leave the daemon running with expansion off; they are never retried
// in a loop.
func startExpansion(cfg config.Config, backend clip.Backend, sup *capture.Suppressor, snippets *snippet.Store) (*engine.Engine, bool) {
	sim, err := inject.NewSimulator()
	if err != nil {
		slog.Warn("expansion not started: input simulation unavailable", "err", err)
		return nil, false
	}

	proc := template.NewProcessor(
		template.WithClipboard(func() string { return string(backend.ReadText()) }),
		template.WithPrompter(nil, cfg.PromptTimeout),
	)

	eng := engine.New(engine.Options{
		Tap:              keyhook.NewTap(cfg.KeyDevice),
		Controller:       inject.NewController(sim, backend, sup),
		Processor:        proc,
		BufferCapacity:   cfg.BufferCapacity,
		DebounceInterval: cfg.DebounceInterval,
	})
	snippets.OnChange(eng.SetSnippets)

	if err := eng.Start(); err != nil {
		if errors.Is(err, keyhook.ErrUnavailable) {
			slog.Warn("expansion not started: key hook permission missing "+
				"(add your user to the input group or run as root)", "err", err)
		} else {
			slog.Warn("expansion not started", "err", err)
		}
		return eng, false
	}
	return eng, true
}

func (d *daemon) handleConn(conn net.Conn) {
	defer conn.Close()
	wc := wire.New(conn)

	msg, err := wc.ReadMsg()
	if err != nil {
		return
	}

	resp := d.dispatch(msg)
	if err := wc.WriteMsg(resp); err != nil {
		slog.Debug("IPC write failed", "err", err)
	}
}

func (d *daemon) dispatch(msg *message.Message) *message.Message {
	switch msg.Type {
	case message.TypeStatus:
		return d.status()

	case message.TypeHistoryList:
		return d.historyList(msg.Limit)

	case message.TypeHistoryPin:
		return d.historyPin(msg.ID)

	case message.TypeHistoryDelete:
		if err := d.store.Delete(msg.ID); err != nil {
			return message.Errorf("delete %s: %v", msg.ID, err)
		}
		return &message.Message{Type: message.TypeOK}

	case message.TypeSnippetList:
		out := make([]message.Snippet, 0, d.snippets.Count())
		for _, sn := range d.snippets.All() {
			out = append(out, message.Snippet{ID: sn.ID, Trigger: sn.Trigger, Content: sn.Content})
		}
		return &message.Message{Type: message.TypeSnippets, Snippets: out}

	case message.TypeSnippetAdd:
		sn, err := d.snippets.Add(msg.Trigger, msg.Content)
		if err != nil {
			return message.Errorf("add snippet: %v", err)
		}
		return &message.Message{Type: message.TypeOK, ID: sn.ID}

	case message.TypeSnippetDelete:
		if err := d.snippets.Remove(msg.ID); err != nil {
			return message.Errorf("remove snippet %s: %v", msg.ID, err)
		}
		return &message.Message{Type: message.TypeOK}

	default:
		return message.Errorf("unknown message type %q", msg.Type)
	}
}

func (d *daemon) status() *message.Message {
	total, pinned, err := d.store.Counts()
	if err != nil {
		return message.Errorf("count history: %v", err)
	}
	return &message.Message{
		Type: message.TypeStatusResponse,
		Status: &message.Status{
			Version:          Version,
			Uptime:           time.Since(d.started).Round(time.Second).String(),
			HistoryCount:     total,
			PinnedCount:      pinned,
			SnippetCount:     d.snippets.Count(),
			RetentionCap:     d.cfg.RetentionCap,
			ExpansionActive:  d.expansionActive && d.eng != nil && d.eng.Active(),
			HistoryActive:    d.historyActive,
			ClipboardBackend: d.backend.Name(),
		},
	}
}

func (d *daemon) historyList(limit int) *message.Message {
	entries, err := d.store.List()
	if err != nil {
		return message.Errorf("list history: %v", err)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]message.Entry, 0, len(entries))
	for _, e := range entries {
		me := message.Entry{
			ID:        e.ID,
			Preview:   e.Preview,
			Pinned:    e.Pinned,
			Sensitive: e.Sensitive,
			Timestamp: e.Timestamp,
		}
		if e.Sensitive {
			me.Preview = "••••••••"
		}
		out = append(out, me)
	}
	return &message.Message{Type: message.TypeHistoryEntries, Entries: out}
}

func (d *daemon) historyPin(id string) *message.Message {
	entries, err := d.store.List()
	if err != nil {
		return message.Errorf("list history: %v", err)
	}
	for _, e := range entries {
		if e.ID == id {
			if err := d.store.SetPinned(id, !e.Pinned); err != nil {
				return message.Errorf("pin %s: %v", id, err)
			}
			return &message.Message{Type: message.TypeOK}
		}
	}
	return message.Errorf("no entry %s", id)
}
