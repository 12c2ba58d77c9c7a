package shadow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"shadowkit/internal/logging"
	"shadowkit/internal/services"
)

// Creator is the single-item operation a Generator drives. *Transcoder
// implements it.
type Creator interface {
	CreateShadow(ctx context.Context, masterPath, shadowDir string, onProgress ProgressFunc) (CreateResult, error)
}

// SweepProgressFunc is called before each item is attempted. index is 1-based.
type SweepProgressFunc func(index, total int, label string)

// ItemProgressFunc receives encode progress for the item at index.
type ItemProgressFunc func(index int, label string, percent float64)

// Report aggregates the outcome of a project sweep.
type Report struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
	// Cancelled is set when the sweep stopped early because its context
	// ended. Remaining counts the items that did not complete.
	Cancelled bool `json:"cancelled,omitempty"`
	Remaining int  `json:"remaining,omitempty"`
	Total     int  `json:"total"`
}

// Summary renders the report for display to end users.
func (r Report) Summary() string {
	summary := fmt.Sprintf("created %d, skipped %d, %d errors", r.Created, r.Skipped, len(r.Errors))
	if r.Cancelled {
		summary += fmt.Sprintf(" (cancelled, %d not processed)", r.Remaining)
	}
	return summary
}

// Generator creates missing shadows for every master in a project.
type Generator struct {
	creator      Creator
	workers      int
	logger       *slog.Logger
	itemProgress ItemProgressFunc
}

// GeneratorOption customizes a Generator.
type GeneratorOption func(*Generator)

// WithWorkers bounds how many items are encoded at once. Values below 2 keep
// the sweep strictly sequential.
func WithWorkers(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 1 {
			g.workers = n
		}
	}
}

// WithGeneratorLogger attaches a logger.
func WithGeneratorLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithItemProgress forwards per-item encode progress.
func WithItemProgress(fn ItemProgressFunc) GeneratorOption {
	return func(g *Generator) { g.itemProgress = fn }
}

// NewGenerator constructs a Generator around creator.
func NewGenerator(creator Creator, opts ...GeneratorOption) *Generator {
	g := &Generator{creator: creator, workers: 1, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = logging.NewComponentLogger(g.logger, "generator")
	return g
}

type workItem struct {
	label      string
	tier       Tier
	masterPath string
	shadowDir  string
}

type outcome int

const (
	outcomePending outcome = iota
	outcomeCreated
	outcomeSkipped
	outcomeFailed
)

type itemResult struct {
	outcome outcome
	message string
}

// worklist returns the sweep order: active masters labelled by filename,
// then archived masters labelled "archived/<filename>".
func (l Layout) worklist() ([]workItem, error) {
	var items []workItem
	for _, tier := range Tiers() {
		files, err := l.Extensions.listMasters(l.MastersDir(tier))
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			label := file.Name
			if tier == TierArchived {
				label = string(TierArchived) + "/" + file.Name
			}
			items = append(items, workItem{
				label:      label,
				tier:       tier,
				masterPath: file.Path,
				shadowDir:  l.ShadowsDir(tier),
			})
		}
	}
	return items, nil
}

// GenerateProjectShadows attempts a shadow for every master in layout,
// active tier first. Items that already have a shadow are skipped and item
// failures are collected in Report.Errors without stopping the sweep. When
// ctx ends the in-flight encode is killed and no further items start. The
// returned error is reserved for failures listing the master directories.
func (g *Generator) GenerateProjectShadows(ctx context.Context, layout Layout, onProgress SweepProgressFunc) (Report, error) {
	items, err := layout.worklist()
	if err != nil {
		return Report{}, fmt.Errorf("enumerate masters: %w", err)
	}

	total := len(items)
	logger := logging.WithContext(ctx, g.logger)
	if _, ok := services.ProjectFromContext(ctx); !ok {
		logger = logger.With(logging.String(logging.FieldProject, layout.Root))
	}
	logger.Info("shadow sweep started",
		logging.String(logging.FieldEventType, "sweep_started"),
		logging.Int(logging.FieldItemCount, total),
		logging.Int("workers", g.workers),
	)

	results := make([]itemResult, total)
	var (
		group    errgroup.Group
		callback sync.Mutex
	)
	group.SetLimit(g.workers)

	for i, item := range items {
		if ctx.Err() != nil {
			break
		}
		group.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			index := i + 1
			if onProgress != nil {
				callback.Lock()
				onProgress(index, total, item.label)
				callback.Unlock()
			}
			results[i] = g.runItem(ctx, logger, item, index, total, &callback)
			return nil
		})
	}
	_ = group.Wait()

	report := Report{Errors: []string{}, Total: total}
	for _, res := range results {
		switch res.outcome {
		case outcomeCreated:
			report.Created++
		case outcomeSkipped:
			report.Skipped++
		case outcomeFailed:
			report.Errors = append(report.Errors, res.message)
		default:
			report.Remaining++
		}
	}
	report.Cancelled = report.Remaining > 0 && ctx.Err() != nil

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "sweep_finished"),
		logging.Int("created", report.Created),
		logging.Int("skipped", report.Skipped),
		logging.Int("errors", len(report.Errors)),
	}
	if report.Cancelled {
		logging.WarnWithContext(logger, "shadow sweep cancelled", "sweep_cancelled", append(attrs,
			logging.Int("remaining", report.Remaining),
			logging.String(logging.FieldErrorHint, "rerun generate to finish the remaining items"),
			logging.String(logging.FieldImpact, "some masters still have no shadow"),
		)...)
	} else {
		logger.Info("shadow sweep finished", logging.Args(attrs...)...)
	}
	return report, nil
}

func (g *Generator) runItem(ctx context.Context, logger *slog.Logger, item workItem, index, total int, callback *sync.Mutex) itemResult {
	itemLogger := logger.With(
		logging.Int(logging.FieldItemIndex, index),
		logging.Int(logging.FieldItemCount, total),
		logging.String(logging.FieldBaseName, BaseName(item.masterPath)),
		logging.String(logging.FieldTier, string(item.tier)),
	)
	sampler := logging.NewProgressSampler(5)
	onPercent := func(percent float64) {
		if sampler.ShouldLog(percent, item.label) {
			itemLogger.Debug("encode progress", logging.Float64("percent", percent))
		}
		if g.itemProgress != nil {
			callback.Lock()
			g.itemProgress(index, item.label, percent)
			callback.Unlock()
		}
	}

	_, err := g.creator.CreateShadow(ctx, item.masterPath, item.shadowDir, onPercent)
	switch ReasonOf(err) {
	case "":
		if err == nil {
			return itemResult{outcome: outcomeCreated}
		}
	case ReasonAlreadyExists:
		itemLogger.Debug("shadow already present; skipped")
		return itemResult{outcome: outcomeSkipped}
	case ReasonCancelled:
		return itemResult{outcome: outcomePending}
	}

	logging.WarnWithContext(itemLogger, "shadow creation failed", "shadow_failed",
		logging.String("label", item.label),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "inspect the master with `shadowkit probe`"),
		logging.String(logging.FieldImpact, "recording has no preview copy"),
	)
	return itemResult{outcome: outcomeFailed, message: item.label + ": " + err.Error()}
}
