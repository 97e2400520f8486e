package main

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	koanftoml "github.com/knadh/koanf/parsers/toml/v2"
	koanfenv "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
)

const (
	defaultServerURL = "http://localhost:8000"
	defaultTimeout   = 30 * time.Second
	envPrefix        = "MASCOT_"
)

// Config represents the application configuration structure
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
	UI      UIConfig      `koanf:"ui"`
}

// ServerConfig describes the mascotDB service
type ServerConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `koanf:"level"`
}

// UIConfig holds UI-specific configuration
type UIConfig struct {
	Markdown bool `koanf:"markdown"`
	Color    bool `koanf:"color"`
}

// defaultConfig returns the configuration populated with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:     defaultServerURL,
			Timeout: defaultTimeout,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		UI: UIConfig{
			Markdown: true,
			Color:    true,
		},
	}
}

// userConfigPath is ~/.config/mascot/conf.toml, or "" without a home dir
func userConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Failed to get user home directory: %v", err)
		return ""
	}
	return filepath.Join(homeDir, ".config", "mascot", "conf.toml")
}

// projectConfigPath is the per-directory override
var projectConfigPath = filepath.Join(".mascot", "mascot.toml")

// LoadConfig loads configuration from the user file, the project file and
// the environment, in that order.
func LoadConfig() (*Config, error) {
	return loadConfigFrom(userConfigPath(), projectConfigPath)
}

func loadConfigFrom(userPath, projectPath string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range []string{userPath, projectPath} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			if !os.IsNotExist(err) {
				log.Printf("Unable to stat config at %s: %v", path, err)
			}
			continue
		}
		if err := k.Load(file.Provider(path), koanftoml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	// MASCOT_SERVER_URL becomes "server.url"
	if err := k.Load(koanfenv.Provider(".", koanfenv.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, envPrefix)), "_", ".")
			return key, value
		},
	}), nil); err != nil {
		log.Printf("Failed to load environment variables: %v", err)
	}

	config := defaultConfig()
	if err := k.Unmarshal("", config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.Server.URL = strings.TrimRight(strings.TrimSpace(config.Server.URL), "/")
	return config, nil
}

// ConfigOverrides are command line values that win over every other layer.
// Zero values leave the config untouched.
type ConfigOverrides struct {
	ServerURL string
	Timeout   time.Duration
	Debug     bool
	NoColor   bool
}

// Apply writes the overrides into c
func (o ConfigOverrides) Apply(c *Config) {
	if o.ServerURL != "" {
		c.Server.URL = strings.TrimRight(strings.TrimSpace(o.ServerURL), "/")
	}
	if o.Timeout != 0 {
		c.Server.Timeout = o.Timeout
	}
	if o.Debug {
		c.Logging.Level = "debug"
	}
	if o.NoColor {
		c.UI.Color = false
	}
}

// Validate checks the values that would otherwise fail late
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("invalid server.url %q: %w", c.Server.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server.url %q: scheme must be http or https", c.Server.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid server.url %q: missing host", c.Server.URL)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("invalid server.timeout %s: must be positive", c.Server.Timeout)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q: use debug, info, warn or error", c.Logging.Level)
	}
	return nil
}
