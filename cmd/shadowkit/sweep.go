package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"shadowkit/internal/config"
	"shadowkit/internal/history"
	"shadowkit/internal/logging"
	"shadowkit/internal/preflight"
	"shadowkit/internal/services"
	"shadowkit/internal/shadow"
)

// sweeper runs one recorded, locked project sweep. generate and watch share it.
type sweeper struct {
	ctx          *commandContext
	cfg          *config.Config
	logger       *slog.Logger
	store        *history.Store
	trigger      history.Trigger
	workers      int
	onProgress   shadow.SweepProgressFunc
	onItemUpdate shadow.ItemProgressFunc
}

type sweepResult struct {
	RunID   string        `json:"run_id"`
	Project string        `json:"project"`
	Report  shadow.Report `json:"report"`
	Summary string        `json:"summary"`
}

func (s *sweeper) run(ctx context.Context, layout shadow.Layout) (sweepResult, error) {
	result := sweepResult{Project: layout.Root}

	if failed := preflight.Failed(preflight.CheckProject(layout)); len(failed) > 0 {
		details := make([]string, 0, len(failed))
		for _, f := range failed {
			details = append(details, f.Name+": "+f.Detail)
		}
		return result, fmt.Errorf("project %s is not ready: %s", layout.Name(), strings.Join(details, "; "))
	}

	err := s.ctx.withProjectLock(ctx, layout, func() error {
		runID, err := s.store.Begin(ctx, layout.Root, s.trigger)
		if err != nil {
			return err
		}
		result.RunID = runID

		runCtx := services.WithRunID(services.WithProject(ctx, layout.Root), runID)
		logger := logging.WithContext(runCtx, s.logger)

		// The generator derives project and run_id from runCtx itself.
		generator := shadow.NewGenerator(shadow.NewTranscoderFromConfig(s.cfg, logger),
			shadow.WithWorkers(s.workers),
			shadow.WithGeneratorLogger(s.logger),
			shadow.WithItemProgress(s.onItemUpdate),
		)

		report, sweepErr := generator.GenerateProjectShadows(runCtx, layout, s.onProgress)
		if sweepErr != nil {
			report.Errors = append(report.Errors, sweepErr.Error())
		}
		result.Report = report
		result.Summary = report.Summary()

		// Record the run even when ctx was cancelled mid-sweep.
		if err := s.store.Finish(context.WithoutCancel(runCtx), runID, report); err != nil {
			logging.WarnWithContext(logger, "failed to record sweep history", "history_write_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check state_dir permissions"),
				logging.String(logging.FieldImpact, "run missing from `shadowkit history`"),
			)
		}
		return sweepErr
	})
	return result, err
}

// sweepFunc adapts the sweeper to watch.SweepFunc.
func (s *sweeper) sweepFunc() func(context.Context, shadow.Layout) (shadow.Report, error) {
	return func(ctx context.Context, layout shadow.Layout) (shadow.Report, error) {
		result, err := s.run(ctx, layout)
		return result.Report, err
	}
}
