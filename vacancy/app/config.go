package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	coreconfig "github.com/m3rciful/vacancybot/core/config"
	coredatabase "github.com/m3rciful/vacancybot/core/database"
)

const (
	// SessionMemory keeps dialogs in process memory.
	SessionMemory = "memory"
	// SessionRedis keeps dialogs in Redis so several instances can share them.
	SessionRedis = "redis"

	defaultIdleTTL   = 30 * time.Minute
	defaultSweepSpec = "@every 5m"
)

// SessionConfig selects where dialogs live and how long idle ones survive.
type SessionConfig struct {
	Backend  string        `yaml:"backend" envconfig:"SESSION_BACKEND"`
	RedisURL string        `yaml:"redis_url" envconfig:"REDIS_URL"`
	IdleTTL  time.Duration `yaml:"idle_ttl" envconfig:"SESSION_IDLE_TTL"`
	// SweepSpec is a cron spec for dropping idle in-memory dialogs.
	SweepSpec string `yaml:"sweep_spec" envconfig:"SESSION_SWEEP_SPEC"`
}

// SearchConfig tunes the vacancy store.
type SearchConfig struct {
	QueryTimeout time.Duration `yaml:"query_timeout" envconfig:"SEARCH_QUERY_TIMEOUT"`
	// CatalogPath overrides the embedded choice catalog.
	CatalogPath string `yaml:"catalog_path" envconfig:"SEARCH_CATALOG_PATH"`
}

// Config is the full bot configuration: the shared core plus vacancy settings.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Session  SessionConfig       `yaml:"session"`
	Search   SearchConfig        `yaml:"search"`
}

// CoreConfig exposes the embedded core section.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// LoadConfig reads path, overlays the environment and normalizes the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if err := c.Database.Normalize(); err != nil {
		return err
	}

	c.Session.Backend = strings.ToLower(strings.TrimSpace(c.Session.Backend))
	switch c.Session.Backend {
	case "", SessionMemory:
		c.Session.Backend = SessionMemory
	case SessionRedis:
		if strings.TrimSpace(c.Session.RedisURL) == "" {
			return fmt.Errorf("session.redis_url is required when session.backend is 'redis'")
		}
	default:
		return fmt.Errorf("invalid session.backend %q; allowed: memory, redis", c.Session.Backend)
	}
	if c.Session.IdleTTL < 0 {
		return fmt.Errorf("session.idle_ttl must be >= 0")
	}
	if c.Session.IdleTTL == 0 {
		c.Session.IdleTTL = defaultIdleTTL
	}
	if strings.TrimSpace(c.Session.SweepSpec) == "" {
		c.Session.SweepSpec = defaultSweepSpec
	}
	if _, err := cron.ParseStandard(c.Session.SweepSpec); err != nil {
		return fmt.Errorf("invalid session.sweep_spec %q: %w", c.Session.SweepSpec, err)
	}

	if c.Search.QueryTimeout < 0 {
		return fmt.Errorf("search.query_timeout must be >= 0")
	}
	return nil
}
