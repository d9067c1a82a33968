package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vacancybot/core/bootstrap"
	coreconfig "github.com/m3rciful/vacancybot/core/config"
	coredatabase "github.com/m3rciful/vacancybot/core/database"
	coretelegram "github.com/m3rciful/vacancybot/core/telegram"
	"github.com/m3rciful/vacancybot/vacancy/catalog"
)

func validConfig() *Config {
	return &Config{
		Config:   coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "123:abc"}},
		Database: coredatabase.Config{Host: "db", Name: "jobs"},
	}
}

func TestConfigNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, SessionMemory, cfg.Session.Backend)
	assert.Equal(t, defaultIdleTTL, cfg.Session.IdleTTL)
	assert.Equal(t, defaultSweepSpec, cfg.Session.SweepSpec)
	assert.Equal(t, coredatabase.DriverPostgres, cfg.Database.Driver)
	assert.Same(t, &cfg.Config, cfg.CoreConfig())
}

func TestConfigNormalizeRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"unknown backend":     func(c *Config) { c.Session.Backend = "memcached" },
		"redis without url":   func(c *Config) { c.Session.Backend = "redis" },
		"negative ttl":        func(c *Config) { c.Session.IdleTTL = -time.Second },
		"bad sweep spec":      func(c *Config) { c.Session.SweepSpec = "every tuesday" },
		"negative timeout":    func(c *Config) { c.Search.QueryTimeout = -time.Second },
		"bad database driver": func(c *Config) { c.Database.Driver = "sqlite" },
		"missing token":       func(c *Config) { c.Telegram.Token = "" },
	}
	for name, mutate := range cases {
		mutate := mutate
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			assert.Error(t, cfg.Normalize())
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "telegram:\n  token: file-token\n  admin_id: 99\n" +
		"database:\n  host: db\n  name: jobs\n  driver: pgx\n" +
		"session:\n  backend: Redis\n  redis_url: redis://localhost:6379/0\n  idle_ttl: 10m\n" +
		"search:\n  query_timeout: 2s\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("SEARCH_CATALOG_PATH", "/etc/vacancybot/catalog.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.Telegram.Token)
	assert.Equal(t, int64(99), cfg.Telegram.AdminID)
	assert.Equal(t, coredatabase.DriverPgx, cfg.Database.Driver)
	assert.Equal(t, SessionRedis, cfg.Session.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Session.IdleTTL)
	assert.Equal(t, 2*time.Second, cfg.Search.QueryTimeout)
	assert.Equal(t, "/etc/vacancybot/catalog.yaml", cfg.Search.CatalogPath)
}

func newInfra(t *testing.T) (*bootstrap.Result, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &bootstrap.Result{DB: sqlx.NewDb(db, "postgres")}, mock
}

func TestBuildWithMemorySessions(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Normalize())
	infra, mock := newInfra(t)

	a, err := build(cfg, infra, catalog.Default())
	require.NoError(t, err)
	assert.NotNil(t, a.memory)
	assert.NotNil(t, a.sweeper)

	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)
	assert.Same(t, &cfg.Config, opts.Config)
	assert.Equal(t, []string{"pick"}, opts.Registry.ListCallbacks())

	endpoints := map[any]bool{}
	for _, r := range opts.Routes {
		endpoints[r.Endpoint] = true
	}
	for _, e := range []any{"/start", "/help", "/get_vaccancy", "/get_top_5", "/cancel", "/stats", tele.OnCallback, tele.OnText} {
		assert.True(t, endpoints[e], "missing route %v", e)
	}

	require.NoError(t, opts.OnStart(context.Background(), coretelegram.Runtime{}))
	mock.ExpectClose()
	require.NoError(t, opts.OnStop(context.Background(), coretelegram.Runtime{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildWithRedisSessions(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})

	cfg := validConfig()
	cfg.Session.Backend = SessionRedis
	cfg.Session.RedisURL = "redis://" + srv.Addr()
	require.NoError(t, cfg.Normalize())

	infra, _ := newInfra(t)
	infra.Redis = client

	a, err := build(cfg, infra, catalog.Default())
	require.NoError(t, err)
	assert.Nil(t, a.memory)
	assert.Nil(t, a.sweeper)
}

type countingSweep struct {
	calls   int
	maxIdle time.Duration
}

func (c *countingSweep) Sweep(_ context.Context, maxIdle time.Duration) int {
	c.calls++
	c.maxIdle = maxIdle
	return 2
}

func TestSweeper(t *testing.T) {
	target := &countingSweep{}
	s, err := NewSweeper("@every 1m", 15*time.Minute, target)
	require.NoError(t, err)

	s.run()
	assert.Equal(t, 1, target.calls)
	assert.Equal(t, 15*time.Minute, target.maxIdle)

	s.Start()
	s.Stop()

	_, err = NewSweeper("not a spec", time.Minute, target)
	assert.Error(t, err)
}
