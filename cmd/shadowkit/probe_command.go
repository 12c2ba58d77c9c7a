package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shadowkit/internal/config"
	"shadowkit/internal/media/ffprobe"
)

type probeOutput struct {
	Path     string          `json:"path"`
	Duration float64         `json:"duration_seconds"`
	Known    bool            `json:"duration_known"`
	Detail   *ffprobe.Result `json:"ffprobe,omitempty"`
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "probe <file>",
		Short: "Report a media file's duration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			result := probeOutput{Path: path}
			result.Duration, result.Known = ffprobe.ProbeDuration(cmd.Context(), cfg.Shadow.FFprobeBinary, path)
			if full {
				detail, err := ffprobe.Inspect(cmd.Context(), cfg.Shadow.FFprobeBinary, path)
				if err != nil {
					return err
				}
				result.Detail = &detail
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			if !result.Known {
				fmt.Fprintf(out, "%s: duration unknown\n", path)
			} else {
				fmt.Fprintf(out, "%s: %.3fs\n", path, result.Duration)
			}
			if result.Detail != nil {
				if w, h, ok := result.Detail.VideoDimensions(); ok {
					fmt.Fprintf(out, "  video: %dx%d\n", w, h)
				}
				fmt.Fprintf(out, "  audio streams: %d\n", result.Detail.AudioStreamCount())
				fmt.Fprintf(out, "  size: %d bytes\n", result.Detail.SizeBytes())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Include stream details from ffprobe")
	return cmd
}
