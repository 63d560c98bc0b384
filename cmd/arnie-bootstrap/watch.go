package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ekisa-team/arniepye/internal/config"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the bootstrap sequence and re-run it whenever the config file changes",
		Long: `Watch runs the sequence once, then re-runs it each time the config file
is saved, until interrupted. Failures are logged and do not stop watching.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	if configPath == "" {
		return errors.New("watch requires --config or a config file in the default location")
	}

	ctx := cmd.Context()

	var mu sync.Mutex
	runOnce := func(c *config.Config) {
		mu.Lock()
		defer mu.Unlock()

		if err := runWatched(ctx, c); err != nil {
			slog.Error("Bootstrap run failed, waiting for config change", "error", err)
		}
	}

	watcher, err := config.NewWatcher(ctx, configPath, func(c *config.Config, err error) {
		if err != nil {
			slog.Error("Failed to reload config", "error", err)
			return
		}

		applyFlags(c)
		runOnce(c)
	})
	if err != nil {
		return err
	}

	initial := watcher.Snapshot()
	applyFlags(initial)
	runOnce(initial)

	slog.Info("Watching config file for changes", "config", configPath)
	<-ctx.Done()

	slog.Info("Watch stopped", "reloads", watcher.ReloadCount())
	return nil
}

func runWatched(ctx context.Context, c *config.Config) error {
	seq, _, err := app.newSequencer(ctx, c)
	if err != nil {
		return err
	}

	_, err = seq.Run(ctx)
	return err
}
