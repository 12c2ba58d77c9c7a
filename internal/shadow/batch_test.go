package shadow_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"shadowkit/internal/shadow"
	"shadowkit/internal/testsupport"
)

func TestGenerateProjectShadowsScenario(t *testing.T) {
	layout := newLayout(t, "masters/active/01-1-intro.mov")
	generator := shadow.NewGenerator(newTranscoder(&testsupport.FakeEncoder{}, nil))

	report, err := generator.GenerateProjectShadows(context.Background(), layout, nil)
	if err != nil {
		t.Fatalf("GenerateProjectShadows: %v", err)
	}
	if report.Created != 1 || report.Skipped != 0 || len(report.Errors) != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	mustExist(t, filepath.Join(layout.ShadowsActive, "01-1-intro.mp4"))

	counts, err := layout.Counts()
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts != (shadow.Counts{Masters: 1, Shadows: 1, Missing: 0}) {
		t.Fatalf("unexpected counts %+v", counts)
	}

	again, err := generator.GenerateProjectShadows(context.Background(), layout, nil)
	if err != nil {
		t.Fatalf("second GenerateProjectShadows: %v", err)
	}
	if again.Created != 0 || again.Skipped != 1 || len(again.Errors) != 0 {
		t.Fatalf("expected idempotent rerun, got %+v", again)
	}
	if again.Summary() != "created 0, skipped 1, 0 errors" {
		t.Fatalf("unexpected summary %q", again.Summary())
	}
}

func TestGenerateProjectShadowsOrderAndLabels(t *testing.T) {
	layout := newLayout(t,
		"masters/archived/z-old.mov",
		"masters/active/b.mov",
		"masters/active/a.mp4",
		"masters/active/readme.txt",
	)
	generator := shadow.NewGenerator(newTranscoder(&testsupport.FakeEncoder{}, nil))

	type call struct {
		index, total int
		label        string
	}
	var calls []call
	report, err := generator.GenerateProjectShadows(context.Background(), layout, func(index, total int, label string) {
		calls = append(calls, call{index, total, label})
	})
	if err != nil {
		t.Fatalf("GenerateProjectShadows: %v", err)
	}
	want := []call{{1, 3, "a.mp4"}, {2, 3, "b.mov"}, {3, 3, "archived/z-old.mov"}}
	if !slices.Equal(calls, want) {
		t.Fatalf("progress calls = %v, want %v", calls, want)
	}
	if report.Created != 3 || report.Total != 3 {
		t.Fatalf("unexpected report %+v", report)
	}
	mustExist(t, filepath.Join(layout.ShadowsArchived, "z-old.mp4"))
	mustNotExist(t, filepath.Join(layout.ShadowsActive, "z-old.mp4"))
}

func TestGenerateProjectShadowsCollectsFailures(t *testing.T) {
	layout := newLayout(t,
		"masters/active/good.mov",
		"masters/archived/corrupt.mov",
	)
	encoder := &testsupport.FakeEncoder{FailFor: map[string]int{"corrupt": 1}}
	// The probe cannot read the corrupt master; the encode is still attempted.
	probe := func(_ context.Context, path string) (float64, bool) {
		return 10, !strings.Contains(path, "corrupt")
	}
	generator := shadow.NewGenerator(newTranscoder(encoder, probe))

	report, err := generator.GenerateProjectShadows(context.Background(), layout, nil)
	if err != nil {
		t.Fatalf("GenerateProjectShadows: %v", err)
	}
	if report.Created != 1 || report.Skipped != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(report.Errors) != 1 || !strings.HasPrefix(report.Errors[0], "archived/corrupt.mov: ") {
		t.Fatalf("expected one labelled error, got %v", report.Errors)
	}
	if len(encoder.Calls()) != 2 {
		t.Fatalf("expected both items attempted, got %d runs", len(encoder.Calls()))
	}
	if names := fileNames(t, layout.ShadowsArchived); len(names) != 0 {
		t.Fatalf("expected no output for the failed item, got %v", names)
	}
	if report.Summary() != "created 1, skipped 0, 1 errors" {
		t.Fatalf("unexpected summary %q", report.Summary())
	}
}

func TestGenerateProjectShadowsCoversEveryMaster(t *testing.T) {
	layout := newLayout(t,
		"masters/active/a.mov",
		"masters/active/b.mov",
		"masters/active/c.mov",
		"masters/archived/d.mov",
		"shadows/active/b.mp4",
	)
	encoder := &testsupport.FakeEncoder{FailFor: map[string]int{"c": 2}}
	report, err := shadow.NewGenerator(newTranscoder(encoder, nil)).GenerateProjectShadows(context.Background(), layout, nil)
	if err != nil {
		t.Fatalf("GenerateProjectShadows: %v", err)
	}

	index, err := layout.BuildProjectIndex()
	if err != nil {
		t.Fatalf("BuildProjectIndex: %v", err)
	}
	for tier, recs := range index {
		for base, rec := range recs {
			if rec.Kind != shadow.KindReal || rec.ShadowPath != "" {
				continue
			}
			found := false
			for _, msg := range report.Errors {
				if strings.Contains(msg, base+".mov") {
					found = true
				}
			}
			if !found {
				t.Fatalf("%s master %q has neither a shadow nor an error", tier, base)
			}
		}
	}
	if report.Created != 2 || report.Skipped != 1 || len(report.Errors) != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestGenerateProjectShadowsStopsOnCancel(t *testing.T) {
	layout := newLayout(t,
		"masters/active/a.mov",
		"masters/active/b.mov",
		"masters/active/c.mov",
	)
	encoder := &testsupport.FakeEncoder{Block: true, Started: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-encoder.Started
		cancel()
	}()

	report, err := shadow.NewGenerator(newTranscoder(encoder, nil)).GenerateProjectShadows(ctx, layout, nil)
	if err != nil {
		t.Fatalf("GenerateProjectShadows: %v", err)
	}
	if !report.Cancelled {
		t.Fatalf("expected cancelled report, got %+v", report)
	}
	if report.Remaining != 3 || report.Created != 0 || len(report.Errors) != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(encoder.Calls()) != 1 {
		t.Fatalf("expected dispatch to stop after the in-flight item, got %d runs", len(encoder.Calls()))
	}
	if names := fileNames(t, layout.ShadowsActive); len(names) != 0 {
		t.Fatalf("expected no partial output, got %v", names)
	}
	if !strings.Contains(report.Summary(), "cancelled") {
		t.Fatalf("summary should mention cancellation: %q", report.Summary())
	}
}

func TestGenerateProjectShadowsSequentialByDefault(t *testing.T) {
	layout := newLayout(t, "masters/active/a.mov", "masters/active/b.mov", "masters/active/c.mov")
	encoder := &testsupport.FakeEncoder{Delay: 20 * time.Millisecond}
	if _, err := shadow.NewGenerator(newTranscoder(encoder, nil)).GenerateProjectShadows(context.Background(), layout, nil); err != nil {
		t.Fatalf("GenerateProjectShadows: %v", err)
	}
	if peak := encoder.PeakConcurrency(); peak != 1 {
		t.Fatalf("expected strictly sequential encodes, peak=%d", peak)
	}
}

func TestGenerateProjectShadowsBoundedWorkers(t *testing.T) {
	layout := newLayout(t,
		"masters/active/a.mov",
		"masters/active/b.mov",
		"masters/active/c.mov",
		"masters/active/d.mov",
		"masters/active/e.mov",
	)
	encoder := &testsupport.FakeEncoder{Delay: 20 * time.Millisecond, FailFor: map[string]int{"b": 1, "d": 1}}

	var mu sync.Mutex
	seen := map[string]bool{}
	generator := shadow.NewGenerator(newTranscoder(encoder, nil), shadow.WithWorkers(2))
	report, err := generator.GenerateProjectShadows(context.Background(), layout, func(_, _ int, label string) {
		mu.Lock()
		seen[label] = true
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("GenerateProjectShadows: %v", err)
	}
	if peak := encoder.PeakConcurrency(); peak > 2 {
		t.Fatalf("expected at most 2 concurrent encodes, peak=%d", peak)
	}
	if len(seen) != 5 || report.Created != 3 {
		t.Fatalf("unexpected outcome: seen=%v report=%+v", seen, report)
	}
	if len(report.Errors) != 2 || !strings.HasPrefix(report.Errors[0], "b.mov:") || !strings.HasPrefix(report.Errors[1], "d.mov:") {
		t.Fatalf("errors must follow worklist order, got %v", report.Errors)
	}
}

func TestGenerateProjectShadowsReportsItemProgress(t *testing.T) {
	layout := newLayout(t, "masters/active/a.mov")
	encoder := &testsupport.FakeEncoder{Lines: []string{"time=00:00:05.00"}}
	var got []float64
	generator := shadow.NewGenerator(newTranscoder(encoder, fixedProbe(10, true)),
		shadow.WithItemProgress(func(index int, label string, percent float64) {
			if index != 1 || label != "a.mov" {
				t.Errorf("unexpected item %d %q", index, label)
			}
			got = append(got, percent)
		}),
	)
	if _, err := generator.GenerateProjectShadows(context.Background(), layout, nil); err != nil {
		t.Fatalf("GenerateProjectShadows: %v", err)
	}
	if !slices.Equal(got, []float64{50, 100}) {
		t.Fatalf("item progress = %v", got)
	}
}

func TestGenerateProjectShadowsListingError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks are bypassed for root")
	}
	layout := newLayout(t, "masters/active/a.mov")
	if err := os.Chmod(layout.MastersActive, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(layout.MastersActive, 0o755) })

	_, err := shadow.NewGenerator(newTranscoder(&testsupport.FakeEncoder{}, nil)).GenerateProjectShadows(context.Background(), layout, nil)
	if err == nil {
		t.Fatal("expected listing error to propagate")
	}
}

func TestGenerateProjectShadowsIgnoresUppercaseShadowExtension(t *testing.T) {
	layout := newLayout(t,
		"masters/active/intro.mov",
		"shadows/active/intro.MP4",
	)
	generator := shadow.NewGenerator(newTranscoder(&testsupport.FakeEncoder{}, nil))

	report, err := generator.GenerateProjectShadows(context.Background(), layout, nil)
	if err != nil {
		t.Fatalf("GenerateProjectShadows: %v", err)
	}
	if report.Created != 1 || report.Skipped != 0 || len(report.Errors) != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	counts, err := layout.Counts()
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts != (shadow.Counts{Masters: 1, Shadows: 1, Missing: 0}) {
		t.Fatalf("unexpected counts after generate %+v", counts)
	}

	if res := shadow.DeleteShadow("intro", layout.ShadowsActive); !res.Success {
		t.Fatalf("DeleteShadow: %+v", res)
	}
	mustNotExist(t, filepath.Join(layout.ShadowsActive, "intro.mp4"))
	mustExist(t, filepath.Join(layout.ShadowsActive, "intro.MP4"))
	counts, err = layout.Counts()
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts != (shadow.Counts{Masters: 1, Shadows: 0, Missing: 1}) {
		t.Fatalf("unexpected counts after delete %+v", counts)
	}
}

func TestGenerateProjectShadowsDuplicateBaseNamesWithWorkers(t *testing.T) {
	layout := newLayout(t,
		"masters/active/intro.mov",
		"masters/active/intro.mkv",
	)
	encoder := &testsupport.FakeEncoder{Delay: 50 * time.Millisecond}
	generator := shadow.NewGenerator(newTranscoder(encoder, nil), shadow.WithWorkers(2))

	report, err := generator.GenerateProjectShadows(context.Background(), layout, nil)
	if err != nil {
		t.Fatalf("GenerateProjectShadows: %v", err)
	}
	if report.Created != 1 || report.Skipped != 1 || len(report.Errors) != 0 {
		t.Fatalf("expected one created and one skipped, got %+v", report)
	}
	if names := fileNames(t, layout.ShadowsActive); !slices.Equal(names, []string{"intro.mp4"}) {
		t.Fatalf("expected only intro.mp4, got %v", names)
	}
}
