package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lox/pokeragent/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.False(t, cfg.Strategy.AdaptiveLearning)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "agent.hcl", `
server {
  url  = "http://poker.example:9000"
  game = "table-7"
  request_timeout    = "5s"
  reconnect_attempts = 0
}

identity {
  account_id = "alice"
  secret     = "shh"
}

agent {
  poll_interval     = "500ms"
  seed              = 42
  journal           = "hands.db"
  log_level         = "debug"
  adaptive_learning = true
}

strategy {
  raise_threshold = 0.7
  bluff_probability = 0
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://poker.example:9000", cfg.ServerURL)
	assert.Equal(t, "table-7", cfg.GameID)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 0, cfg.ReconnectAttempts)
	assert.Equal(t, "alice", cfg.AccountID)
	assert.Equal(t, "shh", cfg.Secret)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "hands.db", cfg.JournalPath)
	assert.Equal(t, "debug", cfg.LogLevel)

	want := strategy.DefaultConfig()
	want.RaiseThreshold = 0.7
	want.BluffProbability = 0
	want.AdaptiveLearning = true
	assert.Equal(t, want, cfg.Strategy)

	require.NoError(t, cfg.Validate())
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"syntax":   `server {`,
		"unknown":  `server { colour = "red" }`,
		"duration": `agent { poll_interval = "soon" }`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "bad.hcl", content))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		EnvServer:       "ws://other:1/ws",
		EnvGame:         "g2",
		EnvAccount:      "bob",
		EnvSecret:       "x",
		EnvSeed:         "99",
		EnvPollInterval: "1s",
	}))
	require.NoError(t, err)

	assert.Equal(t, "ws://other:1/ws", cfg.ServerURL)
	assert.Equal(t, "g2", cfg.GameID)
	assert.Equal(t, "bob", cfg.AccountID)
	assert.Equal(t, "x", cfg.Secret)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, time.Second, cfg.PollInterval)

	assert.Error(t, cfg.ApplyEnv(envMap(map[string]string{EnvSeed: "lots"})))
}

func TestResolveGeneratesAccount(t *testing.T) {
	cfg, err := Resolve(filepath.Join(t.TempDir(), "none.hcl"), envMap(nil))
	require.NoError(t, err)
	assert.Contains(t, cfg.AccountID, "agent-")
}

func TestResolveEnvBeatsFile(t *testing.T) {
	path := writeFile(t, "agent.hcl", `server { game = "from-file" }`)
	cfg, err := Resolve(path, envMap(map[string]string{EnvGame: "from-env"}))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.GameID)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no server", func(c *Config) { c.ServerURL = "" }},
		{"no game", func(c *Config) { c.GameID = "" }},
		{"zero poll", func(c *Config) { c.PollInterval = 0 }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad strategy", func(c *Config) { c.Strategy.Aggressiveness = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestWarnings(t *testing.T) {
	cfg := Default()
	cfg.Secret = "x"
	assert.Empty(t, cfg.Warnings())

	cfg.Strategy.FoldThreshold = 0.9
	require.NoError(t, cfg.Validate(), "incoherent thresholds are allowed")
	assert.Len(t, cfg.Warnings(), 1)
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, "test.env", "POKERAGENT_GAME=dotenv-game\n")
	t.Setenv(EnvGame, "")
	os.Unsetenv(EnvGame)

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "dotenv-game", os.Getenv(EnvGame))

	assert.Error(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
