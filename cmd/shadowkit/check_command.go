package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"shadowkit/internal/deps"
	"shadowkit/internal/preflight"
)

type checkReport struct {
	Dependencies []deps.Status      `json:"dependencies"`
	Checks       []preflight.Result `json:"checks"`
	OK           bool               `json:"ok"`
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check [project]",
		Short: "Verify ffmpeg, ffprobe, and directory access",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			report := checkReport{
				Dependencies: deps.CheckBinaries(deps.ShadowRequirements(cfg.Shadow.FFmpegBinary, cfg.Shadow.FFprobeBinary)),
				Checks:       preflight.RunAll(cmd.Context(), cfg),
			}
			if len(args) == 1 {
				layout, err := ctx.projectLayout(args[0])
				if err != nil {
					return err
				}
				report.Checks = append(report.Checks, preflight.CheckProject(layout)...)
			}
			report.OK = len(deps.MissingRequired(report.Dependencies)) == 0 && len(preflight.Failed(report.Checks)) == 0

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderSectionHeader("Dependencies", colorize))
				for _, dep := range report.Dependencies {
					kind, detail := statusOK, dep.Path
					if !dep.Available {
						kind, detail = statusError, dep.Detail
						if dep.Optional {
							kind = statusWarn
						}
					}
					fmt.Fprintln(out, renderStatusLine(dep.Name, kind, detail, colorize))
				}
				fmt.Fprintln(out, renderSectionHeader("Checks", colorize))
				for _, result := range report.Checks {
					kind := statusOK
					if !result.Passed {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
				}
			}

			if !report.OK {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
}
