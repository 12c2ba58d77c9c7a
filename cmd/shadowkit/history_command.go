package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"shadowkit/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded sweeps, or show one run with its errors",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureHistory()
			if err != nil {
				return err
			}
			defer store.Close()
			if len(args) == 1 {
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, run)
				}
				printRun(cmd, run)
				return nil
			}

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, emptyIfNil(runs))
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No sweeps recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					filepath.Base(run.Project),
					string(run.Trigger),
					run.StartedAt.Local().Format(time.DateTime),
					runState(run),
					strconv.Itoa(run.Created),
					strconv.Itoa(run.Skipped),
					strconv.Itoa(run.Failed),
				})
			}
			fmt.Fprintln(out, renderTable("",
				[]string{"Run", "Project", "Trigger", "Started", "State", "Created", "Skipped", "Failed"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 for all)")
	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete finished runs older than --days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive, got %d", days)
			}
			store, err := ctx.ensureHistory()
			if err != nil {
				return err
			}
			defer store.Close()
			removed, err := store.Prune(cmd.Context(), time.Now().AddDate(0, 0, -days))
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]int64{"removed": removed})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 90, "Keep runs started within this many days")
	return cmd
}

func runState(run history.Run) string {
	switch {
	case !run.Finished():
		return "running"
	case run.Cancelled:
		return "cancelled"
	case run.Failed > 0:
		return "failed"
	default:
		return "ok"
	}
}

func printRun(cmd *cobra.Command, run history.Run) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	fmt.Fprintln(out, renderSectionHeader("Run "+run.ID, colorize))
	fmt.Fprintln(out, renderStatusLine("Project", statusInfo, run.Project, colorize))
	fmt.Fprintln(out, renderStatusLine("Trigger", statusInfo, string(run.Trigger), colorize))
	fmt.Fprintln(out, renderStatusLine("Started", statusInfo, run.StartedAt.Local().Format(time.DateTime), colorize))
	if run.FinishedAt != nil {
		fmt.Fprintln(out, renderStatusLine("Finished", statusInfo, run.FinishedAt.Local().Format(time.DateTime), colorize))
	}
	kind := statusOK
	if run.Failed > 0 || run.Cancelled {
		kind = statusWarn
	}
	summary := fmt.Sprintf("%d total, created %d, skipped %d, %d failed", run.Total, run.Created, run.Skipped, run.Failed)
	fmt.Fprintln(out, renderStatusLine("Result", kind, summary, colorize))
	for _, msg := range run.Errors {
		fmt.Fprintf(out, "%s%s\n", statusIndent, msg)
	}
}
