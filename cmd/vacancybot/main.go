package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/m3rciful/vacancybot/core/buildinfo"
	corecmd "github.com/m3rciful/vacancybot/core/cmd"
	"github.com/m3rciful/vacancybot/vacancy/app"
)

const (
	name              = "vacancybot"
	defaultConfigPath = "configs/config.yaml"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:          name,
		Short:        "Telegram bot that finds job vacancies by language, salary and region",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default $CONFIG_PATH or "+defaultConfigPath+")")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Start the bot",
			RunE: func(*cobra.Command, []string) error {
				return corecmd.Run(corecmd.Options{
					ConfigPath:        cfgPath,
					DefaultConfigPath: defaultConfigPath,
					LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
						return app.LoadConfig(path)
					},
					Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
						return app.Bootstrap(cfg.(*app.Config))
					},
				})
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(*cobra.Command, []string) error {
				path, err := corecmd.ResolveConfigPath(cfgPath, "", defaultConfigPath)
				if err != nil {
					return err
				}
				cfg, err := app.LoadConfig(path)
				if err != nil {
					return err
				}
				return app.Migrate(cfg)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", name, buildinfo.String())
			},
		},
	)
	return root
}
