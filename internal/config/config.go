// Package config loads resumefill settings from an optional YAML file and
// RESUMEFILL_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/v0xg/resumefill/internal/store"
)

const (
	app       = "resumefill"
	envPrefix = "RESUMEFILL"
)

type Config struct {
	Debug   bool          `mapstructure:"debug"`
	JSON    bool          `mapstructure:"json"`
	Storage StorageConfig `mapstructure:"storage"`
	Browser BrowserConfig `mapstructure:"browser"`
	Fill    FillConfig    `mapstructure:"fill"`
	Model   ModelConfig   `mapstructure:"model"`
	Resume  ResumeConfig  `mapstructure:"resume"`
}

type StorageConfig struct {
	Driver string      `mapstructure:"driver"`
	Path   string      `mapstructure:"path"`
	Redis  RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr   string `mapstructure:"addr"`
	DB     int    `mapstructure:"db"`
	Prefix string `mapstructure:"prefix"`
}

type BrowserConfig struct {
	Width      int           `mapstructure:"width"`
	Height     int           `mapstructure:"height"`
	Headless   bool          `mapstructure:"headless"`
	ProfileDir string        `mapstructure:"profile-dir"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type FillConfig struct {
	SettleDelay time.Duration `mapstructure:"settle-delay"`
}

type ModelConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type ResumeConfig struct {
	MaxChars int `mapstructure:"max-chars"`
}

// StoreOptions converts the storage section for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Driver:      c.Storage.Driver,
		Path:        c.Storage.Path,
		RedisAddr:   c.Storage.Redis.Addr,
		RedisDB:     c.Storage.Redis.DB,
		RedisPrefix: c.Storage.Redis.Prefix,
	}
}

// SetDefaults registers every key so environment variables can override
// keys that appear in no file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("json", false)
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", defaultStoragePath())
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", app+":")
	v.SetDefault("browser.width", 1280)
	v.SetDefault("browser.height", 900)
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.profile-dir", "")
	v.SetDefault("browser.timeout", 30*time.Second)
	v.SetDefault("fill.settle-delay", 30*time.Millisecond)
	v.SetDefault("model.timeout", 120*time.Second)
	v.SetDefault("resume.max-chars", 60000)
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return app + ".json"
	}
	return filepath.Join(dir, app, "store.json")
}

// Load reads file, or resumefill.yaml from the working directory when file
// is empty. A missing default file is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(app)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
