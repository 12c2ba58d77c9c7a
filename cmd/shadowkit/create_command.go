package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shadowkit/internal/config"
	"shadowkit/internal/shadow"
)

type createOutput struct {
	ShadowPath string        `json:"shadow_path,omitempty"`
	Duration   float64       `json:"duration_seconds,omitempty"`
	Reason     shadow.Reason `json:"reason,omitempty"`
	Error      string        `json:"error,omitempty"`
}

func newCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create <master> <shadow-dir>",
		Short: "Encode a single master into a shadow directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			master, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			shadowDir, err := config.ExpandPath(args[1])
			if err != nil {
				return err
			}

			var onProgress shadow.ProgressFunc
			if !ctx.jsonOutput() {
				printer := newProgressPrinter(cmd.OutOrStdout())
				label := shadow.BaseName(master)
				onProgress = func(percent float64) { printer.percent(1, label, percent) }
			}

			transcoder := shadow.NewTranscoderFromConfig(cfg, logger)
			result, createErr := transcoder.CreateShadow(cmd.Context(), master, shadowDir, onProgress)

			if ctx.jsonOutput() {
				out := createOutput{ShadowPath: result.ShadowPath, Duration: result.Duration}
				if createErr != nil {
					out.Reason = shadow.ReasonOf(createErr)
					out.Error = createErr.Error()
				}
				if err := writeJSON(cmd, out); err != nil {
					return err
				}
				return createErr
			}
			if createErr != nil {
				return createErr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", result.ShadowPath)
			return nil
		},
	}
}
