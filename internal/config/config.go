package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/duelscope/internal/battlelog"
	"github.com/ramonehamilton/duelscope/internal/classes"
	"github.com/ramonehamilton/duelscope/internal/stats"
)

// Environment variables that override file settings.
const (
	EnvConfigPath = "DUELSCOPE_CONFIG"
	EnvPort       = "DUELSCOPE_PORT"
	EnvDataDir    = "DUELSCOPE_DATA_DIR"
)

// DefaultPath is used when neither a flag nor DUELSCOPE_CONFIG names a file.
const DefaultPath = "duelscope.toml"

// Config represents the application configuration.
type Config struct {
	// HTTP server configuration
	Server ServerConfig `toml:"server"`

	// Battle log location and format
	Data DataConfig `toml:"data"`

	// Statistics cache configuration
	Cache CacheConfig `toml:"cache"`

	// Application configuration
	App AppConfig `toml:"app"`

	// Game modes, in display order
	Modes []ModeConfig `toml:"modes"`

	// Class name table
	Classes []ClassConfig `toml:"classes"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port           int      `toml:"port"`
	CORSOrigins    []string `toml:"cors_origins"`
	RateLimit      float64  `toml:"rate_limit"`      // requests per second on /api, 0 disables
	RateBurst      int      `toml:"rate_burst"`      // token bucket size
	RequestTimeout string   `toml:"request_timeout"` // e.g. "60s"
}

// DataConfig contains battle log settings.
type DataConfig struct {
	Dir         string `toml:"dir"`          // root holding one directory per mode
	Schema      string `toml:"schema"`       // "strict" or "lenient"
	DefaultMode string `toml:"default_mode"` // empty means the first mode
}

// CacheConfig contains statistics cache settings.
type CacheConfig struct {
	TTL             string `toml:"ttl"`              // e.g. "1h"
	RefreshInterval string `toml:"refresh_interval"` // e.g. "5m", "0" disables
	Watch           bool   `toml:"watch"`            // refresh on file system events
	Period          string `toml:"period"`           // "week" or "month"
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// ModeConfig maps a mode directory to its display label.
type ModeConfig struct {
	Key   string `toml:"key" json:"key"`
	Label string `toml:"label" json:"label"`
}

// ClassConfig is one entry of the class name table.
type ClassConfig struct {
	Level   int    `toml:"level"`
	ClassID int    `toml:"class_id"`
	Name    string `toml:"name"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           5000,
			CORSOrigins:    []string{"*"},
			RateLimit:      20,
			RateBurst:      40,
			RequestTimeout: "60s",
		},
		Data: DataConfig{
			Dir:    "data",
			Schema: string(battlelog.SchemaStrict),
		},
		Cache: CacheConfig{
			TTL:             "1h",
			RefreshInterval: "5m",
			Watch:           true,
			Period:          stats.PeriodWeek,
		},
		App: AppConfig{
			DebugMode: false,
		},
		Modes: []ModeConfig{
			{Key: "ranked", Label: "Ranked"},
			{Key: "casual", Label: "Casual"},
		},
	}
}

// LoadFile loads the configuration from path. A missing file yields the
// defaults. Keys absent from the file keep their default values.
func LoadFile(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Lists are replaced, not merged, when the file sets them.
	defaultModes, defaultOrigins := config.Modes, config.Server.CORSOrigins
	config.Modes, config.Server.CORSOrigins = nil, nil

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if config.Modes == nil {
		config.Modes = defaultModes
	}
	if config.Server.CORSOrigins == nil {
		config.Server.CORSOrigins = defaultOrigins
	}

	return config, nil
}

// Load reads an optional .env file, resolves the config path (the explicit
// path, then DUELSCOPE_CONFIG, then DefaultPath), loads it and applies
// environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultPath
	}

	config, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup(EnvDataDir); ok && v != "" {
		c.Data.Dir = v
	}
	return nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative: %v", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
		return fmt.Errorf("rate burst must be positive when rate limiting: %d", c.Server.RateBurst)
	}
	if _, err := time.ParseDuration(c.Server.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request timeout %q: %w", c.Server.RequestTimeout, err)
	}

	if c.Data.Dir == "" {
		return fmt.Errorf("data directory is required")
	}
	if _, err := battlelog.ParseSchema(c.Data.Schema); err != nil {
		return err
	}

	if ttl, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("invalid cache TTL %q: %w", c.Cache.TTL, err)
	} else if ttl < 0 {
		return fmt.Errorf("cache TTL cannot be negative: %s", c.Cache.TTL)
	}
	if interval, err := time.ParseDuration(c.Cache.RefreshInterval); err != nil {
		return fmt.Errorf("invalid refresh interval %q: %w", c.Cache.RefreshInterval, err)
	} else if interval < 0 {
		return fmt.Errorf("refresh interval cannot be negative: %s", c.Cache.RefreshInterval)
	}
	if _, _, err := stats.PeriodRangeFrom(c.Cache.Period, time.Now()); err != nil {
		return err
	}

	if len(c.Modes) == 0 {
		return fmt.Errorf("at least one mode is required")
	}
	seen := make(map[string]bool, len(c.Modes))
	for _, m := range c.Modes {
		if err := battlelog.ValidateMode(m.Key); err != nil {
			return err
		}
		if seen[m.Key] {
			return fmt.Errorf("duplicate mode %q", m.Key)
		}
		seen[m.Key] = true
	}
	if c.Data.DefaultMode != "" && !seen[c.Data.DefaultMode] {
		return fmt.Errorf("default mode %q is not a configured mode", c.Data.DefaultMode)
	}

	return nil
}

// GetRequestTimeout returns the request timeout as a duration.
func (c *Config) GetRequestTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.RequestTimeout)
}

// GetCacheTTL returns the cache TTL as a duration.
func (c *Config) GetCacheTTL() (time.Duration, error) {
	return time.ParseDuration(c.Cache.TTL)
}

// GetRefreshInterval returns the refresh interval as a duration.
func (c *Config) GetRefreshInterval() (time.Duration, error) {
	return time.ParseDuration(c.Cache.RefreshInterval)
}

// DefaultMode returns data.default_mode or, when unset, the first mode.
func (c *Config) DefaultMode() string {
	if c.Data.DefaultMode != "" {
		return c.Data.DefaultMode
	}
	if len(c.Modes) > 0 {
		return c.Modes[0].Key
	}
	return ""
}

// ModeKeys returns the configured mode keys in order.
func (c *Config) ModeKeys() []string {
	keys := make([]string, len(c.Modes))
	for i, m := range c.Modes {
		keys[i] = m.Key
	}
	return keys
}

// ModeLabel returns the display label of mode, or mode itself if unknown.
func (c *Config) ModeLabel(mode string) string {
	for _, m := range c.Modes {
		if m.Key == mode {
			if m.Label != "" {
				return m.Label
			}
			break
		}
	}
	return mode
}

// ClassEntries converts the class table for the resolver.
func (c *Config) ClassEntries() []classes.Entry {
	entries := make([]classes.Entry, len(c.Classes))
	for i, cl := range c.Classes {
		entries[i] = classes.Entry{Level: cl.Level, ClassID: cl.ClassID, Name: cl.Name}
	}
	return entries
}

// Schema returns the parsed record schema.
func (c *Config) Schema() (battlelog.Schema, error) {
	return battlelog.ParseSchema(c.Data.Schema)
}
