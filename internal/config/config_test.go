package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.Collector, cfg.Collector)
	assert.Equal(t, 25, cfg.Sentiment.TopN)
	assert.Equal(t, 10, cfg.Sentiment.EmaPeriod)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
data_dir: /tmp/wsb
collector:
  poll_interval: 3s
  max_retries: 4
squeeze:
  workers: 8
notify:
  enabled: true
  email: file@example.com
  carrier: verizon
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	t.Setenv("WSB_EMAIL", "env@example.com")
	t.Setenv("WSB_EMAIL_PASSWORD", "secret")
	t.Setenv("WSB_PHONE_NUMBER", "5551234567")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/wsb", cfg.DataDir)
	assert.Equal(t, 3*time.Second, cfg.Collector.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.Collector.RetryInterval)
	assert.Equal(t, 4, cfg.Collector.MaxRetries)
	assert.Equal(t, 8, cfg.Squeeze.Workers)
	assert.Equal(t, "env@example.com", cfg.Notify.Email)
	assert.Equal(t, "secret", cfg.Notify.Password)
	assert.Equal(t, "5551234567", cfg.Notify.PhoneNumber)
	assert.Equal(t, "verizon", cfg.Notify.Carrier)
	assert.NoError(t, cfg.Validate())
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("collector: [oops"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Source.Mode = "carrier-pigeon" }},
		{"zero retries", func(c *Config) { c.Collector.MaxRetries = 0 }},
		{"zero workers", func(c *Config) { c.Squeeze.Workers = 0 }},
		{"short history", func(c *Config) { c.Squeeze.HistoryDays = 5 }},
		{"zero screen timeout", func(c *Config) { c.Squeeze.Timeout = 0 }},
		{"negative screen timeout", func(c *Config) { c.Squeeze.Timeout = -time.Second }},
		{"bad timezone", func(c *Config) { c.Market.Timezone = "Mars/Olympus" }},
		{"bad open", func(c *Config) { c.Market.Open = "9.30" }},
		{"notify without secrets", func(c *Config) { c.Notify.Enabled = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
