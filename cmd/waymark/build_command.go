package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"waymark/internal/build"
	"waymark/internal/history"
	"waymark/internal/logging"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var force bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the site, rebuilding only changed experiences and pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if force {
				cfg.Build.ForceRebuild = true
			}

			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			opts := []build.Option{}
			if cfg.History.Enabled && !dryRun {
				store, err := history.Open(cfg.HistoryPath())
				if err != nil {
					logger.Warn("history unavailable", logging.Error(err))
				} else {
					defer store.Close()
					opts = append(opts, build.WithHistory(store))
				}
			}

			report, err := build.NewRunner(cfg, logger, opts...).Run(runCtx)
			if err != nil {
				return err
			}

			printReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Rebuild every unit regardless of detected changes")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Evaluate changes without recording history")
	return cmd
}

func printReport(cmd *cobra.Command, report *build.Report) {
	out := cmd.OutOrStdout()

	if report.Rebuilt == 0 {
		fmt.Fprintf(out, "Nothing changed (%d experiences, %d pages checked)\n",
			report.Experiences, report.Pages)
		return
	}

	rows := make([][]string, 0, len(report.Units))
	for _, unit := range report.Units {
		if !unit.Rebuilt {
			continue
		}
		detail := unit.Detail
		if !unit.Changed {
			detail = "forced"
		}
		rows = append(rows, []string{unit.Name, unit.Kind, detail})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Unit", "Kind", "Changed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft},
	))
	fmt.Fprintf(out, "Rebuilt %d of %d units in %s\n",
		report.Rebuilt,
		report.Experiences+report.Pages,
		report.FinishedAt.Sub(report.Build.StartedAt).Round(timeRounding))
}
