package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/vacancybot/core/config"
	coretelegram "github.com/m3rciful/vacancybot/core/telegram"
)

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type app struct {
	opts coretelegram.RunOptions
	err  error
}

func (a app) TelegramRunOptions() (coretelegram.RunOptions, error) { return a.opts, a.err }

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	_, err := ResolveConfigPath("", "", "")
	assert.Error(t, err)

	p, err := ResolveConfigPath("", "", "configs/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "configs/config.yaml", p)

	t.Setenv("CONFIG_PATH", "/etc/bot.yaml")
	p, _ = ResolveConfigPath("", "", "configs/config.yaml")
	assert.Equal(t, "/etc/bot.yaml", p)

	p, _ = ResolveConfigPath("flag.yaml", "", "configs/config.yaml")
	assert.Equal(t, "flag.yaml", p)
}

func TestRunRequiresHooks(t *testing.T) {
	assert.Error(t, Run(Options{}))
	assert.Error(t, Run(Options{LoadConfig: func(string) (ConfigCarrier, error) { return nil, nil }}))
}

func TestRunWrapsLifecycleHooks(t *testing.T) {
	var loadedFrom string
	var order []string

	err := Run(Options{
		ConfigPath: "test.yaml",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			loadedFrom = path
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(ConfigCarrier) (TelegramApp, error) {
			return app{opts: coretelegram.RunOptions{
				OnStart: func(context.Context, coretelegram.Runtime) error {
					order = append(order, "app.start")
					return nil
				},
				OnStop: func(context.Context, coretelegram.Runtime) error {
					order = append(order, "app.stop")
					return nil
				},
			}}, nil
		},
		ShutdownLogger: func() error {
			order = append(order, "logger.shutdown")
			return nil
		},
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			require.NoError(t, opts.OnStart(ctx, coretelegram.Runtime{}))
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "test.yaml", loadedFrom)
	assert.Equal(t, []string{"app.start", "app.stop", "logger.shutdown"}, order)
}

func TestRunPropagatesBootstrapFailure(t *testing.T) {
	err := Run(Options{
		ConfigPath: "test.yaml",
		LoadConfig: func(string) (ConfigCarrier, error) {
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(ConfigCarrier) (TelegramApp, error) {
			return nil, errors.New("no database")
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bootstrap failed")
}
