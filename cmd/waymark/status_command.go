package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"waymark/internal/ledger"
	"waymark/internal/logging"
	"waymark/internal/metastore"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the persisted build state of every experience and page",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store := metastore.New(cfg.CompiledDir(), logging.NewNop())
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			slugs, err := store.ExperienceSlugs()
			if err != nil {
				return err
			}
			for _, line := range renderSectionHeader("Experiences", colorize) {
				fmt.Fprintln(out, line)
			}
			if len(slugs) == 0 {
				fmt.Fprintln(out, "  (no builds recorded)")
			} else {
				rows := make([][]string, 0, len(slugs))
				for _, slug := range slugs {
					rec, found, err := store.ReadExperience(slug)
					if err != nil {
						return err
					}
					if !found {
						continue
					}
					rows = append(rows, []string{slug, rec.Datetime, shortID(rec.Build), lastChanged(rec)})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Experience", "Last Build", "Build ID", "Last Changed"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				))
			}

			names, err := store.PageNames()
			if err != nil {
				return err
			}
			for _, line := range renderSectionHeader("Pages", colorize) {
				fmt.Fprintln(out, line)
			}
			if len(names) == 0 {
				fmt.Fprintln(out, "  (no builds recorded)")
				return nil
			}
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				rec, found, err := store.ReadPage(name)
				if err != nil {
					return err
				}
				if !found {
					continue
				}
				rows = append(rows, []string{name, rec.LastUpdate, shortID(rec.Build)})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Page", "Last Update", "Build ID"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
	return cmd
}

// lastChanged renders the what_changed vector from the record's last write.
func lastChanged(rec metastore.Record) string {
	var parts []string
	for c := ledger.Category(0); c < ledger.CategoryCount; c++ {
		if rec.WhatChanged[c] {
			parts = append(parts, c.String())
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
