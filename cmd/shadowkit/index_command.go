package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shadowkit/internal/shadow"
)

type indexOutput struct {
	Tier       shadow.Tier               `json:"tier"`
	Recordings []shadow.UnifiedRecording `json:"recordings"`
}

func newIndexCommand(ctx *commandContext) *cobra.Command {
	var tierFlag string

	cmd := &cobra.Command{
		Use:   "index <project>",
		Short: "List recordings with their master and shadow paths",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := ctx.projectLayout(args[0])
			if err != nil {
				return err
			}

			tiers := shadow.Tiers()
			if tierFlag != "" {
				tier, err := shadow.ParseTier(tierFlag)
				if err != nil {
					return err
				}
				tiers = []shadow.Tier{tier}
			}

			outputs := make([]indexOutput, 0, len(tiers))
			for _, tier := range tiers {
				index, err := layout.Extensions.BuildIndex(layout.MastersDir(tier), layout.ShadowsDir(tier))
				if err != nil {
					return fmt.Errorf("index %s: %w", tier, err)
				}
				outputs = append(outputs, indexOutput{Tier: tier, Recordings: shadow.SortedRecordings(index)})
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, outputs)
			}

			out := cmd.OutOrStdout()
			for _, o := range outputs {
				rows := make([][]string, 0, len(o.Recordings))
				for _, rec := range o.Recordings {
					rows = append(rows, []string{rec.BaseName, string(rec.Kind), yesNo(rec.MasterPath != ""), yesNo(rec.ShadowPath != "")})
				}
				if len(rows) == 0 {
					fmt.Fprintf(out, "%s: no recordings\n", tierHeading(o.Tier))
					continue
				}
				fmt.Fprintln(out, renderTable(tierHeading(o.Tier), []string{"Recording", "Kind", "Master", "Shadow"}, rows, nil))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tierFlag, "tier", "", "Limit to one tier (active or archived)")
	return cmd
}
