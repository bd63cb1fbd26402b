package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/modoterra/cursorboost/internal/buildinfo"
	"github.com/modoterra/cursorboost/pkg/config"
	"github.com/modoterra/cursorboost/pkg/daemon"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "cursorboostd",
	Short:        "Snapshot daemon for cursorboost",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String("cursorboostd"))
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", config.DefaultConfigPath, "path to cursorboost.yaml")
	rootCmd.AddCommand(versionCmd)
}

func run(ctx context.Context) error {
	cfg, problems := config.Resolve(configPath)

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	for _, p := range problems {
		logger.Warn("config unusable, running on defaults", "path", configPath, "err", p)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loop := daemon.NewLoop(daemon.FromConfig(cfg, logger), cfg.Interval.Std(), logger)
	d := daemon.New(cfg.Socket, loop, buildinfo.Version, logger)
	defer d.Shutdown()

	watcher := daemon.NewListWatcher(cfg.ProjectListPath(), func() { loop.Trigger() }, logger)

	logger.Info("starting cursorboostd",
		"version", buildinfo.Version,
		"config", cfg.FilePath,
		"base_path", cfg.Projects.BasePath,
		"interval", cfg.Interval.Std(),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.Serve(ctx) })
	g.Go(func() error { return loop.Run(ctx) })
	g.Go(func() error { return watcher.Run(ctx) })

	err := g.Wait()
	if err != nil {
		logger.Error("daemon error", "err", err)
		return err
	}
	logger.Info("shutting down")
	return nil
}
