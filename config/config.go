// Package config loads server configuration from defaults, a YAML file,
// CALLMESH_-prefixed environment variables and CLI flags (in ascending
// precedence) using koanf.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds all server configuration options.
type Config struct {
	Host      string  `koanf:"host"`
	Port      int     `koanf:"port"`
	PublicURL string  `koanf:"public_url"` // externally reachable base URL (behind proxies)
	Auth      Auth    `koanf:"auth"`
	Logging   Logging `koanf:"logging"`
	Storage   Storage `koanf:"storage"`
	Metrics   Metrics `koanf:"metrics"`
}

// Auth holds HTTP basic auth credentials protecting agent routes.
type Auth struct {
	User     string `koanf:"user"`
	Password string `koanf:"password"`
}

// Logging controls log output.
type Logging struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json or text
}

// Storage controls call state persistence. An empty path selects the
// in-memory store.
type Storage struct {
	Path string `koanf:"path"`
}

// Metrics controls the Prometheus endpoint.
type Metrics struct {
	Enabled bool `koanf:"enabled"`
}

// Default configuration values.
const (
	DefaultHost     = "0.0.0.0"
	DefaultPort     = 3000
	DefaultLogLevel = "info"
	DefaultFormat   = "json"
)

func defaults() map[string]any {
	return map[string]any{
		"host":            DefaultHost,
		"port":            DefaultPort,
		"logging.level":   DefaultLogLevel,
		"logging.format":  DefaultFormat,
		"metrics.enabled": false,
	}
}

// findConfigFile finds the config file to use.
// Priority: explicit path > callmesh.yaml > callmesh.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}
	for _, name := range []string{"callmesh.yaml", "callmesh.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load reads configuration with precedence (lowest to highest):
// defaults < YAML file < environment < flags. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else if cfgFile != "" {
		return nil, fmt.Errorf("config file %s not found", cfgFile)
	}

	// Double underscore separates nesting so single underscores survive in
	// key names: CALLMESH_AUTH__PASSWORD -> auth.password,
	// CALLMESH_PUBLIC_URL -> public_url.
	err := k.Load(env.Provider("CALLMESH_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "CALLMESH_")), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}

	return &cfg, nil
}

// ListenAddr returns the host:port pair the server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
