// Package config loads kubelens settings from defaults, an optional YAML
// file and the environment. Command-line flags are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/u2takey/go-utils/filesystem/homedir"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPollInterval   = time.Second
	DefaultRequestTimeout = 5 * time.Second
	DefaultAPIAddress     = ":8080"
	DefaultLogLevel       = "info"
	DefaultChannelSize    = 16
)

var (
	ErrInvalidInterval = errors.New("poll interval must be positive")
	ErrNoNamespaces    = errors.New("at least one namespace is required")
)

type Config struct {
	Kubeconfig     string        `yaml:"kubeconfig"`
	Namespaces     []string      `yaml:"namespaces"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	DatabaseURL    string        `yaml:"database_url"`
	APIAddress     string        `yaml:"api_address"`
	LogLevel       string        `yaml:"log_level"`
	ChannelSize    int           `yaml:"channel_size"`
}

func Default() Config {
	return Config{
		Namespaces:     []string{"default"},
		PollInterval:   DefaultPollInterval,
		RequestTimeout: DefaultRequestTimeout,
		APIAddress:     DefaultAPIAddress,
		LogLevel:       DefaultLogLevel,
		ChannelSize:    DefaultChannelSize,
	}
}

// DefaultPath is $HOME/.config/kubelens/config.yaml, or "" without a home.
func DefaultPath() string {
	home := homedir.HomeDir()
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "kubelens", "config.yaml")
}

// Load builds a Config from defaults, the YAML file at path and the
// environment. An explicit path must exist; a missing default file is ignored.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case explicit || !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("KUBECONFIG"); v != "" {
		c.Kubeconfig = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := getenv("API_ADDRESS"); v != "" {
		c.APIAddress = v
	}
	if v := getenv("KUBELENS_NAMESPACES"); v != "" {
		c.Namespaces = SplitList(v)
	}
}

// SplitList splits a comma-separated list, dropping blank entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) Validate() error {
	if c.PollInterval <= 0 {
		return ErrInvalidInterval
	}
	if len(c.Namespaces) == 0 {
		return ErrNoNamespaces
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative: %s", c.RequestTimeout)
	}
	if c.ChannelSize < 0 {
		return fmt.Errorf("channel size must not be negative: %d", c.ChannelSize)
	}
	return nil
}
