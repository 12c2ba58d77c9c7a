package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"

	"shadowkit/internal/logging"
	"shadowkit/internal/shadow"
)

// SweepFunc generates missing shadows for one project.
type SweepFunc func(ctx context.Context, layout shadow.Layout) (shadow.Report, error)

// DefaultDebounce is used when New receives a non-positive debounce.
const DefaultDebounce = 5 * time.Second

// Watcher triggers sweeps for a set of projects.
type Watcher struct {
	layouts  []shadow.Layout
	debounce time.Duration
	sweep    SweepFunc
	logger   *slog.Logger
	group    singleflight.Group
}

// New constructs a Watcher for layouts.
func New(layouts []shadow.Layout, debounce time.Duration, sweep SweepFunc, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		layouts:  layouts,
		debounce: debounce,
		sweep:    sweep,
		logger:   logging.NewComponentLogger(logger, "watch"),
	}
}

// Sweep runs the sweep for layout, joining any sweep already in flight for
// the same project instead of starting a second one.
func (w *Watcher) Sweep(ctx context.Context, layout shadow.Layout) (shadow.Report, error) {
	value, err, shared := w.group.Do(layout.Root, func() (any, error) {
		return w.sweep(ctx, layout)
	})
	if shared {
		w.logger.Debug("joined in-flight sweep", logging.String(logging.FieldProject, layout.Root))
	}
	report, _ := value.(shadow.Report)
	return report, err
}

// fileStamp identifies one version of a master on disk.
type fileStamp struct {
	size    int64
	modTime int64
}

func statStamp(path string) (fileStamp, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return fileStamp{}, false
	}
	return fileStamp{size: info.Size(), modTime: info.ModTime().UnixNano()}, true
}

type sweepDone struct {
	root   string
	report shadow.Report
	err    error
}

// Run sweeps every project once, then watches for new masters until ctx
// ends. A changed master is swept only once its size and modification time
// hold still across a debounce interval, and a shadow that predates its
// master's latest version is deleted first so the sweep regenerates it. Run
// returns nil on cancellation after in-flight sweeps have stopped.
func (w *Watcher) Run(ctx context.Context) error {
	if w.sweep == nil {
		return errors.New("watch: sweep function is required")
	}
	if len(w.layouts) == 0 {
		return errors.New("watch: no projects to watch")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	byRoot := make(map[string]shadow.Layout, len(w.layouts))
	dirRoot := make(map[string]string)
	dirTier := make(map[string]shadow.Tier)
	for _, layout := range w.layouts {
		byRoot[layout.Root] = layout
		for _, tier := range shadow.Tiers() {
			dir := filepath.Clean(layout.MastersDir(tier))
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create masters directory %s: %w", dir, err)
			}
			if err := fsw.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			dirRoot[dir] = layout.Root
			dirTier[dir] = tier
		}
		w.logger.Info("watching project",
			logging.String(logging.FieldProject, layout.Root),
			logging.Duration("debounce", w.debounce),
			logging.String(logging.FieldEventType, "watch_started"),
		)
	}

	fire := make(chan string)
	done := make(chan sweepDone)
	timers := make(map[string]*time.Timer)
	inflight := make(map[string]bool)
	pending := make(map[string]bool)
	// changed holds, per project, the masters touched since the last sweep
	// and their stamp at the last look. swept holds the stamp each master
	// had when a sweep last started for it.
	changed := make(map[string]map[string]fileStamp)
	swept := make(map[string]map[string]fileStamp)

	schedule := func(root string, delay time.Duration) {
		if t, ok := timers[root]; ok {
			t.Stop()
		}
		timers[root] = time.AfterFunc(delay, func() {
			select {
			case fire <- root:
			case <-ctx.Done():
			}
		})
	}
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for _, layout := range w.layouts {
		schedule(layout.Root, 0)
	}

	for {
		select {
		case <-ctx.Done():
			for _, running := range inflight {
				if running {
					w.logSweep(<-done)
				}
			}
			w.logger.Info("watch stopped", logging.String(logging.FieldEventType, "watch_stopped"))
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			root, relevant := w.relevant(event, dirRoot, byRoot)
			if !relevant {
				continue
			}
			w.logger.Debug("master change detected",
				logging.String(logging.FieldProject, root),
				logging.String("path", event.Name),
				logging.String("op", event.Op.String()),
			)
			if changed[root] == nil {
				changed[root] = make(map[string]fileStamp)
			}
			path := filepath.Clean(event.Name)
			stamp, _ := statStamp(path)
			changed[root][path] = stamp
			schedule(root, w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			logging.WarnWithContext(w.logger, "filesystem watcher error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "raise fs.inotify.max_user_watches if events overflow"),
				logging.String(logging.FieldImpact, "some new masters may wait for the next sweep"),
			)

		case root := <-fire:
			if inflight[root] {
				pending[root] = true
				continue
			}
			layout := byRoot[root]
			if !settle(changed[root]) {
				w.logger.Debug("masters still changing; sweep deferred",
					logging.String(logging.FieldProject, root),
					logging.Int(logging.FieldItemCount, len(changed[root])),
				)
				schedule(root, w.debounce)
				continue
			}
			if swept[root] == nil {
				swept[root] = make(map[string]fileStamp)
			}
			w.invalidateStale(layout, dirTier, changed[root], swept[root])
			for path, stamp := range changed[root] {
				swept[root][path] = stamp
			}
			delete(changed, root)
			inflight[root] = true
			go func() {
				report, err := w.Sweep(ctx, layout)
				done <- sweepDone{root: root, report: report, err: err}
			}()

		case result := <-done:
			inflight[result.root] = false
			w.logSweep(result)
			if pending[result.root] && ctx.Err() == nil {
				pending[result.root] = false
				schedule(result.root, w.debounce)
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event, dirRoot map[string]string, byRoot map[string]shadow.Layout) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	root, ok := dirRoot[filepath.Dir(filepath.Clean(event.Name))]
	if !ok {
		return "", false
	}
	if !byRoot[root].Extensions.IsMaster(filepath.Base(event.Name)) {
		return "", false
	}
	return root, true
}

// settle re-stats every changed master and records the new stamps. It
// reports true when none moved since the last look. Masters that vanished
// are dropped.
func settle(changed map[string]fileStamp) bool {
	stable := true
	for path, last := range changed {
		current, ok := statStamp(path)
		if !ok {
			delete(changed, path)
			continue
		}
		if current != last {
			changed[path] = current
			stable = false
		}
	}
	return stable
}

// invalidateStale deletes the shadow of every changed master whose shadow
// was produced from an earlier version: the master changed since a sweep
// last started for it, or the shadow is older than the master.
func (w *Watcher) invalidateStale(layout shadow.Layout, dirTier map[string]shadow.Tier, changed, swept map[string]fileStamp) {
	for path, stamp := range changed {
		tier, ok := dirTier[filepath.Dir(path)]
		if !ok {
			continue
		}
		shadowDir := layout.ShadowsDir(tier)
		base := shadow.BaseName(path)
		info, err := os.Stat(layout.Extensions.ShadowPath(shadowDir, base))
		if err != nil {
			continue
		}
		previous, seen := swept[path]
		if !(seen && previous != stamp) && info.ModTime().UnixNano() >= stamp.modTime {
			continue
		}
		res := layout.Extensions.DeleteShadow(base, shadowDir)
		if !res.Success {
			logging.WarnWithContext(w.logger, "stale shadow not removed", "watch_invalidate_failed",
				logging.String(logging.FieldProject, layout.Root),
				logging.String(logging.FieldBaseName, base),
				logging.String(logging.FieldTier, string(tier)),
				logging.String("error", res.Error),
				logging.String(logging.FieldImpact, "shadow may not match its master"),
			)
			continue
		}
		w.logger.Info("stale shadow removed",
			logging.String(logging.FieldProject, layout.Root),
			logging.String(logging.FieldBaseName, base),
			logging.String(logging.FieldTier, string(tier)),
			logging.String(logging.FieldEventType, "shadow_invalidated"),
		)
	}
}

func (w *Watcher) logSweep(result sweepDone) {
	if result.err != nil {
		logging.ErrorWithContext(w.logger, "sweep failed", "watch_sweep_failed",
			logging.String(logging.FieldProject, result.root),
			logging.Error(result.err),
			logging.String(logging.FieldErrorHint, "check that the project directories are readable"),
		)
		return
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldProject, result.root),
		logging.Int("created", result.report.Created),
		logging.Int("skipped", result.report.Skipped),
		logging.Int("errors", len(result.report.Errors)),
		logging.String(logging.FieldEventType, "watch_sweep_complete"),
	}
	if result.report.Created == 0 && len(result.report.Errors) == 0 {
		w.logger.Debug("sweep complete", logging.Args(attrs...)...)
		return
	}
	w.logger.Info("sweep complete", logging.Args(attrs...)...)
}
