package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"shadowkit/internal/history"
	"shadowkit/internal/shadow"
	"shadowkit/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "watch <project>...",
		Short: "Generate shadows whenever new masters appear",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ctx.ensureHistory()
			if err != nil {
				return err
			}
			defer store.Close()
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Batch.Workers
			}

			layouts := make([]shadow.Layout, 0, len(args))
			for _, arg := range args {
				layout, err := ctx.projectLayout(arg)
				if err != nil {
					return err
				}
				layouts = append(layouts, layout)
			}

			s := &sweeper{
				ctx:     ctx,
				cfg:     cfg,
				logger:  logger,
				store:   store,
				trigger: history.TriggerWatch,
				workers: workers,
			}
			debounce := time.Duration(cfg.Watch.DebounceSeconds) * time.Second
			w := watch.New(layouts, debounce, s.sweepFunc(), logger)

			if !ctx.jsonOutput() {
				fmt.Fprintf(cmd.OutOrStdout(), "Watching %d project(s); press Ctrl+C to stop\n", len(layouts))
			}
			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "Concurrent ffmpeg processes (default from batch.workers)")
	return cmd
}
