package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(prev) })
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "data/dre.db", cfg.Paths.DatabaseFile)
	assert.Equal(t, "users.yaml", cfg.Paths.UsersFile)
	assert.True(t, cfg.Refresh.Enabled)
	assert.Equal(t, "*/5 * * * *", cfg.Refresh.Schedule)
	require.NoError(t, cfg.validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile("config.yaml", []byte(`
server:
  port: 9090
  read_timeout: 5s
paths:
  database_file: /tmp/other.db
refresh:
  enabled: false
`), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "/tmp/other.db", cfg.Paths.DatabaseFile)
	assert.False(t, cfg.Refresh.Enabled)
	// Untouched keys keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DRE_SERVER_PORT", "7070")
	t.Setenv("DRE_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "bad read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr: "read timeout",
		},
		{
			name:    "no origins",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = nil },
			wantErr: "allowed origin",
		},
		{
			name:    "no database file",
			mutate:  func(c *Config) { c.Paths.DatabaseFile = "" },
			wantErr: "database file",
		},
		{
			name:    "no users file",
			mutate:  func(c *Config) { c.Paths.UsersFile = "" },
			wantErr: "users file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestListenAddr(t *testing.T) {
	cfg := Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 3000
	assert.Equal(t, "127.0.0.1:3000", cfg.ListenAddr())
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	cfg := Default()
	require.NoError(t, cfg.EnsureDirectories())
	assert.DirExists(t, "data")
	assert.DirExists(t, "logs")
}
