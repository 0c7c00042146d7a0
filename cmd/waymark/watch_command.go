package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"waymark/internal/build"
	"waymark/internal/history"
	"waymark/internal/logging"
	"waymark/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild automatically when authored content changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			opts := []build.Option{}
			if cfg.History.Enabled {
				store, err := history.Open(cfg.HistoryPath())
				if err != nil {
					logger.Warn("history unavailable", logging.Error(err))
				} else {
					defer store.Close()
					opts = append(opts, build.WithHistory(store))
				}
			}
			runner := build.NewRunner(cfg, logger, opts...)

			rebuild := func(buildCtx context.Context) error {
				report, err := runner.Run(buildCtx)
				if err != nil {
					// A build already in flight just means we were too
					// eager; the next settled burst tries again.
					if errors.Is(err, build.ErrBuildInProgress) {
						return nil
					}
					return err
				}
				printReport(cmd, report)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s\n", cfg.AuthoredDir())
			if err := rebuild(runCtx); err != nil {
				return err
			}

			debounce := time.Duration(cfg.Watch.DebounceSeconds) * time.Second
			watcher := watch.New([]string{cfg.AuthoredDir()}, debounce, logger)
			err = watcher.Run(runCtx, rebuild)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	return cmd
}
