package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.NotEmpty(t, cfg.Storage.Path)
	assert.Equal(t, 1280, cfg.Browser.Width)
	assert.Equal(t, 30*time.Millisecond, cfg.Fill.SettleDelay)
	assert.Equal(t, 120*time.Second, cfg.Model.Timeout)
	assert.Equal(t, 60000, cfg.Resume.MaxChars)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
debug: true
storage:
  driver: redis
  redis:
    addr: redis:6379
    db: 2
browser:
  headless: true
  profile-dir: /tmp/profile
fill:
  settle-delay: 50ms
`), 0o600))

	t.Setenv("RESUMEFILL_STORAGE_REDIS_PREFIX", "test:")
	t.Setenv("RESUMEFILL_MODEL_TIMEOUT", "30s")

	cfg, err := Load(viper.New(), file)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "/tmp/profile", cfg.Browser.ProfileDir)
	assert.Equal(t, 50*time.Millisecond, cfg.Fill.SettleDelay)
	assert.Equal(t, 30*time.Second, cfg.Model.Timeout)

	opts := cfg.StoreOptions()
	assert.Equal(t, "redis", opts.Driver)
	assert.Equal(t, "redis:6379", opts.RedisAddr)
	assert.Equal(t, 2, opts.RedisDB)
	assert.Equal(t, "test:", opts.RedisPrefix)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
