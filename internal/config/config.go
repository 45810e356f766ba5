package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultSourceURL is the catalog page of the arjlover cartoon archive.
const DefaultSourceURL = "https://multiki.arjlover.net/multiki/"

// Fetch timeout bounds. Anything outside is clamped.
const (
	MinTimeout = 30 * time.Second
	MaxTimeout = 60 * time.Second
)

// CacheBackend selects the snapshot storage
type CacheBackend string

const (
	CacheBackendFile   CacheBackend = "file"
	CacheBackendBolt   CacheBackend = "bolt"
	CacheBackendMemory CacheBackend = "memory"
)

// Config holds all application configuration
type Config struct {
	Source  SourceConfig  `mapstructure:"source"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Player  PlayerConfig  `mapstructure:"player"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// SourceConfig describes the remote catalog
type SourceConfig struct {
	URL         string        `mapstructure:"url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	RateLimit   time.Duration `mapstructure:"rate_limit"` // minimum gap between requests, 0 = none
	MaxBodySize int64         `mapstructure:"max_body_size"`
}

// CacheConfig holds snapshot cache configuration
type CacheConfig struct {
	Dir     string        `mapstructure:"dir"`
	Backend CacheBackend  `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// PlayerConfig holds media player configuration
type PlayerConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// MetricsConfig holds metrics export configuration
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"` // Prometheus textfile path, empty disables
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			URL:         DefaultSourceURL,
			Timeout:     MinTimeout,
			UserAgent:   "Multiki/1.0",
			MaxBodySize: 8 << 20,
		},
		Cache: CacheConfig{
			Dir:     defaultCachePath(),
			Backend: CacheBackendFile,
			TTL:     24 * time.Hour,
		},
		Player: PlayerConfig{
			Args: []string{},
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "multiki", "multiki.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "multiki", "multiki.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "multiki")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "multiki")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "multiki", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "multiki", "cache")
	}
}

var envKeyReplacer = strings.NewReplacer(".", "_")

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return load(viper.New(), defaultConfigPath(), ".")
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Environment variable overrides, e.g. MULTIKI_SOURCE_URL
	v.SetEnvPrefix("MULTIKI")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindEnv registers every key so AutomaticEnv overrides reach Unmarshal
// even when the config file omits them.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"source.url", "source.timeout", "source.user_agent", "source.rate_limit", "source.max_body_size",
		"cache.dir", "cache.backend", "cache.ttl",
		"player.command", "player.args",
		"logging.file", "logging.level",
		"metrics.textfile",
	} {
		_ = v.BindEnv(key)
	}
}

// normalize fills zero values and clamps the fetch timeout.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Source.URL == "" {
		c.Source.URL = def.Source.URL
	}
	if c.Source.Timeout < MinTimeout {
		c.Source.Timeout = MinTimeout
	}
	if c.Source.Timeout > MaxTimeout {
		c.Source.Timeout = MaxTimeout
	}
	if c.Source.MaxBodySize <= 0 {
		c.Source.MaxBodySize = def.Source.MaxBodySize
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheBackendFile
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = def.Cache.TTL
	}
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendBolt:
		if c.Cache.Dir == "" {
			return fmt.Errorf("cache.dir is required for the %s backend", c.Cache.Backend)
		}
	case CacheBackendMemory:
	default:
		return fmt.Errorf("unknown cache backend: %s", c.Cache.Backend)
	}
	return nil
}

// SaveConfig writes the configuration to the default config file
func SaveConfig(cfg *Config) error {
	return save(viper.New(), cfg, defaultConfigPath())
}

func save(v *viper.Viper, cfg *Config, configPath string) error {
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to keep snake_case key names
	v.Set("source.url", cfg.Source.URL)
	v.Set("source.timeout", cfg.Source.Timeout.String())
	v.Set("source.user_agent", cfg.Source.UserAgent)
	v.Set("source.rate_limit", cfg.Source.RateLimit.String())
	v.Set("source.max_body_size", cfg.Source.MaxBodySize)

	v.Set("cache.dir", cfg.Cache.Dir)
	v.Set("cache.backend", string(cfg.Cache.Backend))
	v.Set("cache.ttl", cfg.Cache.TTL.String())

	v.Set("player.command", cfg.Player.Command)
	v.Set("player.args", cfg.Player.Args)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	v.Set("metrics.textfile", cfg.Metrics.Textfile)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
