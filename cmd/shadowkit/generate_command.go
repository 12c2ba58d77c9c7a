package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"shadowkit/internal/history"
	"shadowkit/internal/logging"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "generate <project>",
		Short: "Create missing shadows for every master in a project",
		Args:  cobra.ExactArgs(1),
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
			layout, err := ctx.projectLayout(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Batch.Workers
			}

			s := &sweeper{
				ctx:     ctx,
				cfg:     cfg,
				logger:  logger,
				store:   store,
				trigger: history.TriggerManual,
				workers: workers,
			}
			if !ctx.jsonOutput() {
				progress := newProgressPrinter(cmd.OutOrStdout())
				s.onProgress = progress.item
				s.onItemUpdate = progress.percent
			}

			result, err := s.run(cmd.Context(), layout)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s: %s\n", layout.Name(), result.Summary)
				for _, msg := range result.Report.Errors {
					fmt.Fprintf(out, "%s%s\n", statusIndent, msg)
				}
			}

			if result.Report.Cancelled {
				return context.Canceled
			}
			if n := len(result.Report.Errors); n > 0 {
				return fmt.Errorf("%d shadow(s) failed; see `shadowkit history %s`", n, result.RunID)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "Concurrent ffmpeg processes (default from batch.workers)")
	return cmd
}

// progressPrinter renders sweep progress as plain lines. Percentages are
// sampled per item so concurrent workers do not flood the terminal.
type progressPrinter struct {
	out      io.Writer
	mu       sync.Mutex
	samplers map[int]*logging.ProgressSampler
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	return &progressPrinter{out: out, samplers: make(map[int]*logging.ProgressSampler)}
}

func (p *progressPrinter) item(index, total int, label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "[%d/%d] %s\n", index, total, label)
}

func (p *progressPrinter) percent(index int, label string, percent float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sampler, ok := p.samplers[index]
	if !ok {
		sampler = logging.NewProgressSampler(25)
		sampler.ShouldLog(-1, label)
		p.samplers[index] = sampler
	}
	if percent >= 100 {
		delete(p.samplers, index)
		return
	}
	if sampler.ShouldLog(percent, label) && percent > 0 {
		fmt.Fprintf(p.out, "%s%s %3.0f%%\n", statusIndent, label, percent)
	}
}
