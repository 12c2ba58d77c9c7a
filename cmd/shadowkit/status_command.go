package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shadowkit/internal/shadow"
)

type statusOutput struct {
	Project        string                `json:"project"`
	Counts         shadow.Counts         `json:"counts"`
	MissingShadows []string              `json:"missing_shadows"`
	TierMismatches []shadow.TierMismatch `json:"tier_mismatches"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <project>",
		Short: "Show shadow coverage for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := ctx.projectLayout(args[0])
			if err != nil {
				return err
			}

			counts, err := layout.Counts()
			if err != nil {
				return fmt.Errorf("count recordings: %w", err)
			}
			missing, err := layout.MissingBaseNames()
			if err != nil {
				return fmt.Errorf("list missing shadows: %w", err)
			}
			mismatches, err := layout.TierMismatches()
			if err != nil {
				return fmt.Errorf("compare tiers: %w", err)
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, statusOutput{
					Project:        layout.Root,
					Counts:         counts,
					MissingShadows: emptyIfNil(missing),
					TierMismatches: emptyIfNil(mismatches),
				})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderSectionHeader(layout.Name(), colorize))
			fmt.Fprintln(out, renderStatusLine("Masters", statusInfo, fmt.Sprint(counts.Masters), colorize))
			fmt.Fprintln(out, renderStatusLine("Shadows", statusInfo, fmt.Sprint(counts.Shadows), colorize))
			fmt.Fprintln(out, renderStatusLine("Missing shadows", coverageKind(counts.Missing), fmt.Sprint(counts.Missing), colorize))
			if len(missing) > 0 {
				fmt.Fprintf(out, "%s%s\n", statusIndent, strings.Join(missing, ", "))
			}
			if len(mismatches) > 0 {
				fmt.Fprintln(out, renderStatusLine("Tier mismatches", statusWarn, fmt.Sprint(len(mismatches)), colorize))
				for _, m := range mismatches {
					fmt.Fprintf(out, "%s%s: master %s, shadow %s\n", statusIndent, m.BaseName, m.MasterTier, m.ShadowTier)
				}
			}
			return nil
		},
	}
}
