// Package app assembles the vacancy bot: configuration, infrastructure,
// sessions, the store and the Telegram wiring.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/vacancybot/core/bootstrap"
	coredatabase "github.com/m3rciful/vacancybot/core/database"
	"github.com/m3rciful/vacancybot/core/logger"
	coretelegram "github.com/m3rciful/vacancybot/core/telegram"
	"github.com/m3rciful/vacancybot/core/telegram/router"
	tgsender "github.com/m3rciful/vacancybot/core/telegram/sender"
	"github.com/m3rciful/vacancybot/core/telegram/state"
	"github.com/m3rciful/vacancybot/vacancy/bot"
	"github.com/m3rciful/vacancybot/vacancy/catalog"
	"github.com/m3rciful/vacancybot/vacancy/conversation"
	"github.com/m3rciful/vacancybot/vacancy/search"
)

// App owns every long-lived component of a running bot.
type App struct {
	cfg     *Config
	infra   *bootstrap.Result
	memory  *state.MemoryManager
	store   *search.Store
	ctrl    *bot.Controller
	sweeper *Sweeper
}

// Bootstrap connects the infrastructure described by cfg and builds the app.
func Bootstrap(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	cat, err := catalog.Load(cfg.Search.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	opts := bootstrap.Options{
		Config:   &cfg.Config,
		Database: cfg.Database,
	}
	if cfg.Session.Backend == SessionRedis {
		opts.RedisURL = cfg.Session.RedisURL
	}
	infra, err := bootstrap.Run(opts)
	if err != nil {
		return nil, err
	}

	a, err := build(cfg, infra, cat)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}
	return a, nil
}

func build(cfg *Config, infra *bootstrap.Result, cat *catalog.Catalog) (*App, error) {
	a := &App{cfg: cfg, infra: infra}

	var mgr state.Manager
	var sessionCount func() int
	if infra.Redis != nil {
		mgr = state.NewRedisManager(infra.Redis, state.RedisOptions{TTL: cfg.Session.IdleTTL})
	} else {
		a.memory = state.NewMemoryManager()
		mgr = a.memory
		sessionCount = a.memory.Len

		sw, err := NewSweeper(cfg.Session.SweepSpec, cfg.Session.IdleTTL, a.memory)
		if err != nil {
			return nil, err
		}
		a.sweeper = sw
	}

	a.store = search.NewStore(infra.DB, cat, search.Options{QueryTimeout: cfg.Search.QueryTimeout})

	ctrl, err := bot.NewController(bot.Options{
		Catalog:      cat,
		Sessions:     conversation.NewStore(mgr),
		Finder:       a.store,
		Counter:      a.store,
		SessionCount: sessionCount,
	})
	if err != nil {
		return nil, err
	}
	a.ctrl = ctrl
	return a, nil
}

// TelegramRunOptions wires commands, callbacks and lifecycle hooks.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	if err := bot.Register(reg, a.ctrl); err != nil {
		return coretelegram.RunOptions{}, fmt.Errorf("app: register handlers: %w", err)
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       a.cfg.Telegram.AdminID,
		OnAdminReject: bot.AdminRejectHandler,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(reg, router.TextOptions{})...)

	return coretelegram.RunOptions{
		Config:            &a.cfg.Config,
		Registry:          reg,
		DispatcherOptions: tgsender.Options{MaxRetries: 2},
		Middlewares:       coretelegram.DefaultMiddlewares(&a.cfg.Config, bot.RateLimitedHandler),
		Routes:            routes,
		OnStart: func(ctx context.Context, _ coretelegram.Runtime) error {
			if a.sweeper != nil {
				a.sweeper.Start()
			}
			logger.LogEvent(ctx, logger.SVCSessions, slog.LevelInfo, "sessions.ready",
				slog.String("status", "ok"),
				slog.String("mode", a.cfg.Session.Backend),
			)
			return nil
		},
		OnStop: func(context.Context, coretelegram.Runtime) error {
			return a.Close()
		},
	}, nil
}

// Close stops background work and releases connections.
func (a *App) Close() error {
	if a.sweeper != nil {
		a.sweeper.Stop()
	}
	return a.infra.Close()
}

// Migrate applies pending schema migrations and exits.
func Migrate(cfg *Config) error {
	if err := logger.InitLogger(&cfg.Config); err != nil {
		return err
	}
	defer func() { _ = logger.Shutdown() }()
	return coredatabase.RunMigrations(cfg.Database)
}
