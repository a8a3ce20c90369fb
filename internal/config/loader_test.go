package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.Profile)
	assert.Equal(t, 5*time.Second, cfg.Polling.PeersInterval)
	assert.Equal(t, 3*time.Second, cfg.Polling.MessagesInterval)
	assert.Equal(t, 30*time.Second, cfg.Polling.CountsInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.Polling.ReconcileDelay)
	assert.Equal(t, filepath.Join(home, ".config", "inbox", "profiles.toml"), cfg.Storage.ProfilesPath)
}

func TestLoadFileThenEnvPrecedence(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
profile: work
api:
  base_url: https://community.example.com/api
polling:
  peers_interval: 10s
  counts_interval: 1m
logging:
  file: ~/logs/inbox.log
`), 0o600))
	t.Setenv("INBOX_POLLING_PEERS_INTERVAL", "7s")
	t.Setenv("INBOX_LOGGING_LEVEL", "debug")

	loader := NewLoader()
	loader.SetConfigFile(path)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "work", cfg.Profile)
	assert.Equal(t, "https://community.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 7*time.Second, cfg.Polling.PeersInterval)
	assert.Equal(t, time.Minute, cfg.Polling.CountsInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, filepath.Join(home, "logs", "inbox.log"), cfg.Logging.File)
}

func TestLoadExpandsStoragePathsInViper(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("INBOX_STORAGE_PROFILES_PATH", "~/inbox/profiles.toml")
	t.Setenv("INBOX_STORAGE_SECRETS_BACKEND", "file")

	loader := NewLoader()
	cfg, err := loader.Load()
	require.NoError(t, err)

	expected := filepath.Join(home, "inbox", "profiles.toml")
	assert.Equal(t, expected, cfg.Storage.ProfilesPath)
	assert.Equal(t, expected, loader.Viper().GetString("storage.profiles_path"))
	assert.Equal(t, SecretsBackendFile, cfg.Storage.SecretsBackend)
	assert.Empty(t, cfg.Storage.PassDir)
}

func TestLoadPassDirFromEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("INBOX_STORAGE_PASS_DIR", "~/.inbox-store")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".inbox-store"), cfg.Storage.PassDir)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	loader := NewLoader()
	loader.SetConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := loader.Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "peers interval too short", mutate: func(c *Config) { c.Polling.PeersInterval = 100 * time.Millisecond }, errMsg: "polling.peers_interval"},
		{name: "counts interval too short", mutate: func(c *Config) { c.Polling.CountsInterval = time.Second }, errMsg: "polling.counts_interval"},
		{name: "reconcile delay exceeds cadence", mutate: func(c *Config) { c.Polling.ReconcileDelay = 5 * time.Second }, errMsg: "polling.reconcile_delay"},
		{name: "relative base url", mutate: func(c *Config) { c.API.BaseURL = "/api" }, errMsg: "api.base_url"},
		{name: "unknown log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, errMsg: "logging.format"},
		{name: "unknown secrets backend", mutate: func(c *Config) { c.Storage.SecretsBackend = "vault" }, errMsg: "storage.secrets_backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
