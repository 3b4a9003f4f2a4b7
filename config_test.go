package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("WORDPLAY_SESSION_TTL", "")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, 2*time.Hour, c.SessionTTL)
	assert.Equal(t, 5*time.Minute, c.JanitorInterval)
	assert.Equal(t, "info", c.LogLevel)
	assert.NoError(t, c.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("WORDPLAY_SESSION_TTL", "15m")
	t.Setenv("WORDPLAY_LOG_LEVEL", "debug")
	t.Setenv("WORDPLAY_STATS_DB", "/tmp/stats.db")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, 15*time.Minute, c.SessionTTL)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "/tmp/stats.db", c.StatsDB)
}

func TestLoadConfigBadDuration(t *testing.T) {
	t.Setenv("WORDPLAY_SESSION_TTL", "soon")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	valid := Config{Port: "8080", SessionTTL: time.Hour, JanitorInterval: time.Minute, LogLevel: "info"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }},
		{"negative interval", func(c *Config) { c.JanitorInterval = -time.Second }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, version, strings.TrimSpace(out.String()))
}

func TestContentCheckCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
question: Pick one
words: [sky, sea]
pairs:
  - {left: Sun, right: Star}
`), 0o644))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("words: []\n"), 0o644))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"content", "check", good})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "2 mots, 1 paires")

	cmd = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"content", "check", bad})
	assert.Error(t, cmd.Execute())
}
