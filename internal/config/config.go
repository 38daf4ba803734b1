// Package config defines the typed runtime configuration for snipd.
//
// Values flow from viper (defaults → config file → SNIPD_* env vars → flags)
// into a plain struct so that the rest of the code never touches viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable the daemon reads at startup. External settings
// providers (the CLI, a settings UI) own persistence; the core consumes
// plain values.
type Config struct {
	// DataDir is the root directory for the history database, rich-payload
	// files, and the snippet file.
	DataDir string

	// RetentionCap is the maximum number of unpinned history entries kept.
	// Inserting beyond the cap evicts the oldest unpinned entries.
	RetentionCap int

	// PollInterval is the clipboard change-token sampling interval.
	PollInterval time.Duration

	// DebounceInterval is the pause after the last keystroke before a
	// trigger-matching pass runs.
	DebounceInterval time.Duration

	// BufferCapacity is the rolling keystroke buffer size in runes.
	BufferCapacity int

	// PromptTimeout bounds how long an expansion waits for a user-variable
	// value before aborting.
	PromptTimeout time.Duration

	// ExpansionEnabled and HistoryEnabled are the master toggles for the
	// two subsystems.
	ExpansionEnabled bool
	HistoryEnabled   bool

	// KeyDevice is the input event device for the keystroke tap on Linux.
	// Empty means auto-detect the first keyboard-capable device.
	KeyDevice string
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		DataDir:          defaultDataDir(),
		RetentionCap:     200,
		PollInterval:     400 * time.Millisecond,
		DebounceInterval: 80 * time.Millisecond,
		BufferCapacity:   500,
		PromptTimeout:    30 * time.Second,
		ExpansionEnabled: true,
		HistoryEnabled:   true,
	}
}

// FromViper builds a Config from a bound viper instance, applying defaults
// for unset values and validating the result.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Defaults()

	if s := v.GetString("data-dir"); s != "" {
		cfg.DataDir = s
	}
	if n := v.GetInt("retention-cap"); n > 0 {
		cfg.RetentionCap = n
	}
	if d := v.GetDuration("poll-interval"); d > 0 {
		cfg.PollInterval = d
	}
	if d := v.GetDuration("debounce"); d > 0 {
		cfg.DebounceInterval = d
	}
	if n := v.GetInt("buffer-capacity"); n > 0 {
		cfg.BufferCapacity = n
	}
	if d := v.GetDuration("prompt-timeout"); d > 0 {
		cfg.PromptTimeout = d
	}
	if v.IsSet("no-expansion") {
		cfg.ExpansionEnabled = !v.GetBool("no-expansion")
	}
	if v.IsSet("no-history") {
		cfg.HistoryEnabled = !v.GetBool("no-history")
	}
	cfg.KeyDevice = v.GetString("key-device")

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.RetentionCap < 1 {
		return fmt.Errorf("retention-cap must be >= 1, got %d", c.RetentionCap)
	}
	if c.BufferCapacity < 32 {
		return fmt.Errorf("buffer-capacity must be >= 32, got %d", c.BufferCapacity)
	}
	if c.PollInterval < 50*time.Millisecond || c.PollInterval > time.Second {
		return fmt.Errorf("poll-interval must be within [50ms, 1s], got %s", c.PollInterval)
	}
	return nil
}

// PayloadDir returns the directory holding rich-format payload files.
func (c Config) PayloadDir() string { return filepath.Join(c.DataDir, "payloads") }

// SnippetPath returns the path of the snippet JSON file.
func (c Config) SnippetPath() string { return filepath.Join(c.DataDir, "snippets.json") }

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".snipd")
	}
	return ".snipd"
}
