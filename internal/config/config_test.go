package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/starter/internal/errors"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(body), 0o644))
}

func TestNew(t *testing.T) {
	cfg := New()

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultHost, cfg.Server.Host)
	assert.Equal(t, DefaultMountID, cfg.Server.MountID)
	assert.Equal(t, SourceEmbed, cfg.I18n.Source)
	assert.Equal(t, DefaultLocale, cfg.I18n.DefaultLocale)
	assert.Equal(t, []string{"en-US", "fr-FR"}, cfg.I18n.Supported)
	assert.Equal(t, 2*time.Minute, cfg.SessionTTL())
	assert.NoError(t, cfg.Validate())
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Empty(t, cfg.Path())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{
  "name": "Demo",
  "server": {"host": "0.0.0.0", "port": 8080, "mountId": "app"},
  "session": {"ttl": "30s"},
  "i18n": {"source": "dir", "dir": "./locales", "supported": ["en-US"]},
  "query": {"staleTime": "1m", "retry": 2, "retryDelay": "250ms"},
  "log": {"level": "debug", "format": "json"},
  "devtools": {"enabled": true}
}`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "Demo", cfg.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Equal(t, "http://0.0.0.0:8080", cfg.URL())
	assert.Equal(t, "app", cfg.Server.MountID)
	assert.Equal(t, 30*time.Second, cfg.SessionTTL())
	assert.Equal(t, SourceDir, cfg.I18n.Source)
	assert.Equal(t, []string{"en-US"}, cfg.I18n.Supported)
	assert.Equal(t, time.Minute, cfg.QueryStaleTime())
	assert.Equal(t, 250*time.Millisecond, cfg.QueryRetryDelay())
	assert.Equal(t, 2, cfg.Query.Retry)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Devtools.Enabled)
	assert.Equal(t, 256, cfg.Devtools.BufferSize)
	assert.Equal(t, filepath.Join(dir, ConfigFileName), cfg.Path())
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"server": `)

	_, err := Load(dir)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"server": {"port": 8080}, "log": {"level": "info"}}`)

	t.Setenv("STARTER_SERVER_PORT", "9090")
	t.Setenv("STARTER_LOG_LEVEL", "debug")
	t.Setenv("STARTER_I18N_SUPPORTED", "en-US,de-DE")
	t.Setenv("STARTER_I18N_SOURCE", "s3")
	t.Setenv("STARTER_I18N_S3_BUCKET", "catalogs")
	t.Setenv("STARTER_I18N_S3_USE_PATH_STYLE", "true")
	t.Setenv("STARTER_DEVTOOLS_ENABLED", "true")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"en-US", "de-DE"}, cfg.I18n.Supported)
	assert.Equal(t, SourceS3, cfg.I18n.Source)
	assert.Equal(t, "catalogs", cfg.I18n.S3.Bucket)
	assert.True(t, cfg.I18n.S3.UsePathStyle)
	assert.True(t, cfg.Devtools.Enabled)
}

func TestEnvOverrideInvalid(t *testing.T) {
	t.Setenv("STARTER_SERVER_PORT", "not-a-number")

	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"blank mount id", func(c *Config) { c.Server.MountID = " " }},
		{"bad ttl", func(c *Config) { c.Session.TTL = "forever" }},
		{"bad stale time", func(c *Config) { c.Query.StaleTime = "soon" }},
		{"negative retry", func(c *Config) { c.Query.Retry = -1 }},
		{"dir source without dir", func(c *Config) { c.I18n.Source = SourceDir }},
		{"s3 source without bucket", func(c *Config) { c.I18n.Source = SourceS3 }},
		{"unknown source", func(c *Config) { c.I18n.Source = "ftp" }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
		})
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, Exists(dir))
	writeConfig(t, dir, `{}`)
	assert.True(t, Exists(dir))
}
