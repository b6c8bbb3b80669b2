// Package config loads service configuration from a YAML file and the
// environment. Environment variables override file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Simulation SimulationConfig `yaml:"simulation"`
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	Port        int             `yaml:"port"`
	CORSOrigins []string        `yaml:"cors_origins"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig bounds simulation requests per client. Requests <= 0
// disables limiting.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// SimulationConfig holds run defaults for requests that omit them.
type SimulationConfig struct {
	// AgentSnapshots controls whether per-agent records are returned by default.
	AgentSnapshots bool `yaml:"agent_snapshots"`
}

// DatabaseConfig locates the run archive. An empty path disables it.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig sets log verbosity: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000"},
			RateLimit: RateLimitConfig{
				Requests: 30,
				Window:   time.Minute,
			},
		},
		Simulation: SimulationConfig{AgentSnapshots: true},
		Log:        LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path or a missing file yields defaults plus environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from IDEOSIM_* variables using lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("IDEOSIM_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("IDEOSIM_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("IDEOSIM_CORS_ORIGINS"); ok {
		c.Server.CORSOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.Server.CORSOrigins = append(c.Server.CORSOrigins, origin)
			}
		}
	}
	if v, ok := lookup("IDEOSIM_RATE_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("IDEOSIM_RATE_LIMIT: %w", err)
		}
		c.Server.RateLimit.Requests = n
	}
	if v, ok := lookup("IDEOSIM_DB_PATH"); ok {
		c.Database.Path = v
	}
	if v, ok := lookup("IDEOSIM_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("IDEOSIM_SNAPSHOTS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("IDEOSIM_SNAPSHOTS: %w", err)
		}
		c.Simulation.AgentSnapshots = b
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.RateLimit.Requests > 0 && c.Server.RateLimit.Window <= 0 {
		return fmt.Errorf("server.rate_limit.window must be positive when requests is set")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q: want debug, info, warn or error", c.Log.Level)
	}
	return nil
}
