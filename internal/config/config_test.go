package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigFromFile_MissingFileKeepsDefaults(t *testing.T) {
	cfg, err := GetConfigFromFile(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	require.NoError(t, err)

	assert.Equal(t, "message", cfg.Console.DefaultView)
	assert.Equal(t, SessionBackendDatabase, cfg.Session.Backend)
	assert.Equal(t, time.Duration(0), cfg.Gateway.RequestTimeout)
	assert.Equal(t, "default", cfg.Session.Profile)
}

func TestGetConfigFromFile_EnvExpansion(t *testing.T) {
	t.Setenv("SMS_TEST_GATEWAY", "https://sms.example.com/")
	file := filepath.Join(t.TempDir(), "config.yml")
	content := `
gateway:
  base_url: ${SMS_TEST_GATEWAY}
  request_timeout: 5s
console:
  default_view: "#!campaign"
session:
  backend: redis
  profile: ops
  redis:
    address: 127.0.0.1:6380
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	cfg, err := GetConfigFromFile(file)
	require.NoError(t, err)

	assert.Equal(t, "https://sms.example.com", cfg.Gateway.BaseUrl)
	assert.Equal(t, 5*time.Second, cfg.Gateway.RequestTimeout)
	assert.Equal(t, "campaign", cfg.Console.DefaultView)
	assert.Equal(t, SessionBackendRedis, cfg.Session.Backend)
	assert.Equal(t, "ops", cfg.Session.Profile)
	assert.Equal(t, "sms-console:token:", cfg.Session.Redis.KeyPrefix)
}

func TestGetConfigFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad url", "gateway:\n  base_url: ftp://sms\n"},
		{"bad backend", "session:\n  backend: etcd\n"},
		{"bad database", "database:\n  type: oracle\n"},
		{"bad yaml", "gateway: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "config.yml")
			require.NoError(t, os.WriteFile(file, []byte(tt.content), 0o600))

			_, err := GetConfigFromFile(file)
			assert.Error(t, err)
		})
	}
}
