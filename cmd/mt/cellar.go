package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/mashtun/internal/cellar"
	discordadapter "github.com/zulandar/mashtun/internal/cellar/discord"
	slackadapter "github.com/zulandar/mashtun/internal/cellar/slack"
	"github.com/zulandar/mashtun/internal/config"
	"github.com/zulandar/mashtun/internal/db"
)

func newCellarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cellar",
		Short: "Manage the cellar fermentation watcher",
		Long:  "The cellar watches active fermentations and reports to a chat platform (Slack, Discord): phase changes, stuck batches, scheduled digests, and on-demand status.",
	}

	cmd.AddCommand(newCellarStartCmd())
	return cmd
}

func newCellarStartCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the cellar daemon",
		Long:  "Connects to the configured chat platform, watches fermentations, and answers commands until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCellarStart(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "mashtun.yaml", "path to Mashtun config file")
	return cmd
}

func runCellarStart(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Cellar.Platform == "" {
		return fmt.Errorf("cellar: no platform configured in %s (add cellar.platform)", configPath)
	}

	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}

	adapter, err := createAdapter(cfg)
	if err != nil {
		return err
	}

	daemon, err := cellar.NewDaemon(cellar.DaemonOpts{
		DB:      gormDB,
		Config:  cfg,
		Adapter: adapter,
		Out:     cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle OS signals for graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return daemon.Run(ctx)
}

// createAdapter builds a platform adapter from the config.
func createAdapter(cfg *config.Config) (cellar.Adapter, error) {
	switch cfg.Cellar.Platform {
	case "slack":
		return slackadapter.New(slackadapter.AdapterOpts{
			AppToken:  cfg.Cellar.Slack.AppToken,
			BotToken:  cfg.Cellar.Slack.BotToken,
			ChannelID: cfg.Cellar.Channel,
		})
	case "discord":
		return discordadapter.New(discordadapter.AdapterOpts{
			BotToken:  cfg.Cellar.Discord.BotToken,
			ChannelID: cfg.Cellar.Channel,
		})
	default:
		return nil, fmt.Errorf("cellar: unsupported platform %q", cfg.Cellar.Platform)
	}
}
