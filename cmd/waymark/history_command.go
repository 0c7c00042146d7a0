package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"waymark/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List past build runs, or the units rebuilt in one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("history is disabled in the configuration")
			}

			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				runID, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
				if err != nil || runID <= 0 {
					return fmt.Errorf("invalid run id %q", args[0])
				}
				return printRunChanges(cmd, store, runID)
			}
			return printRuns(cmd, store, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}

func printRuns(cmd *cobra.Command, store *history.Store, limit int) error {
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No build runs recorded yet")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		forced := ""
		if run.Forced {
			forced = "yes"
		}
		rows = append(rows, []string{
			strconv.FormatInt(run.ID, 10),
			shortID(run.BuildID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.FinishedAt.Sub(run.StartedAt).Round(timeRounding).String(),
			strconv.Itoa(run.Experiences + run.Pages),
			strconv.Itoa(run.Rebuilt),
			forced,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Build", "Started", "Elapsed", "Units", "Rebuilt", "Forced"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
	return nil
}

func printRunChanges(cmd *cobra.Command, store *history.Store, runID int64) error {
	changes, err := store.ChangesForRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(changes) == 0 {
		fmt.Fprintf(out, "Run %d rebuilt nothing\n", runID)
		return nil
	}

	rows := make([][]string, 0, len(changes))
	for _, change := range changes {
		rows = append(rows, []string{change.Unit, change.Kind, change.Detail})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Unit", "Kind", "Changed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft},
	))
	return nil
}
