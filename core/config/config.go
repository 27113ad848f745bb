// Package config loads pagekit settings from defaults, an optional YAML
// file and PAGEKIT_* environment variables, in increasing precedence.
// Command-line flags are bound on top by the cmd package.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/landinghub/pagekit/core/asset"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. PAGEKIT_LOG_LEVEL.
const EnvPrefix = "PAGEKIT"

// Config holds pagekit settings.
type Config struct {
	LogLevel  string              `mapstructure:"log_level"`
	OutputDir string              `mapstructure:"output_dir"`
	Assets    Assets              `mapstructure:"assets"`
	Storage   asset.StorageConfig `mapstructure:"storage"`
	Library   Library             `mapstructure:"library"`
	Server    Server              `mapstructure:"server"`
}

// Assets configures asset resolution during pack.
type Assets struct {
	Dir         string        `mapstructure:"dir"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	MaxBytes    int64         `mapstructure:"max_bytes"`
	// Prefix is prepended to keys looked up in object storage.
	Prefix string `mapstructure:"prefix"`
}

// Library configures the template library.
type Library struct {
	Path string `mapstructure:"path"`
}

// Server configures the preview service.
type Server struct {
	Addr string `mapstructure:"addr"`
}

// StorageEnabled reports whether object storage is configured.
func (c *Config) StorageEnabled() bool {
	return c.Storage.Endpoint != "" && c.Storage.Bucket != ""
}

// New returns a viper instance carrying pagekit's defaults and environment
// binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("log_level", "info")
	v.SetDefault("output_dir", "")
	v.SetDefault("assets.dir", ".")
	v.SetDefault("assets.http_timeout", 30*time.Second)
	v.SetDefault("assets.max_bytes", int64(10<<20))
	v.SetDefault("assets.prefix", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("library.path", "pagekit-library.db")
	v.SetDefault("server.addr", ":8080")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path, if any, into v and decodes the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}
