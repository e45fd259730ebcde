package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, "questline.yaml", `
server:
  port: 9000
transport:
  mode: http
db:
  path: /var/lib/questline.db
scheduler:
  poll_interval: 250ms
  workers: 8
`)
	t.Setenv("QUEST_CONFIG_PATH", path)
	t.Setenv("QUEST_SERVER_PORT", "9100")
	t.Setenv("QUEST_LOG_LEVEL", "debug")
	t.Setenv("QUEST_NATS_RECONNECT_WAIT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, "/var/lib/questline.db", cfg.DB.Path)
	require.Equal(t, 250*time.Millisecond, cfg.Scheduler.PollInterval)
	require.Equal(t, 8, cfg.Scheduler.Workers)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 5*time.Second, cfg.NATS.ReconnectWait)
	require.Equal(t, 3, cfg.Scheduler.MaxAttempts)
}

func TestLoad_EnvFile(t *testing.T) {
	path := writeFile(t, "test.env", "QUEST_REDIS_URL=redis://localhost:6379/2\nQUEST_SCHEDULER_STORE=redis\n")
	t.Setenv("QUEST_ENV_FILE", path)
	t.Cleanup(func() {
		_ = os.Unsetenv("QUEST_REDIS_URL")
		_ = os.Unsetenv("QUEST_SCHEDULER_STORE")
	})

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "redis://localhost:6379/2", cfg.Redis.URL)
	require.Equal(t, "redis", cfg.Scheduler.Store)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("QUEST_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"transport", func(c *Config) { c.Transport.Mode = "grpc" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"store", func(c *Config) { c.Scheduler.Store = "etcd" }},
		{"redis without url", func(c *Config) { c.Scheduler.Store = "redis" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			require.Error(t, cfg.Validate())
		})
	}

	require.NoError(t, Default().Validate())
}
