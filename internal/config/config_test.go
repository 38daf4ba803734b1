package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 200, cfg.RetentionCap)
	assert.Equal(t, 400*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 80*time.Millisecond, cfg.DebounceInterval)
	assert.Equal(t, 500, cfg.BufferCapacity)
	assert.True(t, cfg.ExpansionEnabled)
	assert.True(t, cfg.HistoryEnabled)
	assert.NotEmpty(t, cfg.DataDir)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	v.Set("data-dir", "/tmp/snipd-test")
	v.Set("retention-cap", 50)
	v.Set("poll-interval", "250ms")
	v.Set("no-expansion", true)

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/snipd-test", cfg.DataDir)
	assert.Equal(t, 50, cfg.RetentionCap)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.False(t, cfg.ExpansionEnabled)
	assert.True(t, cfg.HistoryEnabled)
}

func TestFromViperValidation(t *testing.T) {
	v := viper.New()
	v.Set("poll-interval", "5s") // outside [50ms, 1s]
	_, err := FromViper(v)
	require.Error(t, err)

	v = viper.New()
	v.Set("buffer-capacity", 4)
	_, err = FromViper(v)
	require.Error(t, err)
}

func TestDerivedPaths(t *testing.T) {
	cfg := Defaults()
	cfg.DataDir = "/data"
	assert.Equal(t, "/data/payloads", cfg.PayloadDir())
	assert.Equal(t, "/data/snippets.json", cfg.SnippetPath())
}
