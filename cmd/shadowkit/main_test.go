package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shadowkit/internal/history"
	"shadowkit/internal/projectlock"
	"shadowkit/internal/shadow"
	"shadowkit/internal/testsupport"
)

func TestConfigInitRefusesOverwrite(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "shadowkit", "config.toml")

	cmd := newRootCommand()
	cmd.SetOut(&strings.Builder{})
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config: %v", err)
	}

	again := newRootCommand()
	again.SetOut(&strings.Builder{})
	again.SetArgs([]string{"config", "init", "--path", target})
	if err := again.Execute(); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already exists error, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	env := setupCLITestEnv(t, okFFmpegScript)
	out := env.mustRun(t, "config", "validate")
	if !strings.Contains(out, "Configuration valid") || !strings.Contains(out, env.configPath) {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestGenerateCreatesShadowsAndRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t, okFFmpegScript, testsupport.WithWorkers(2))
	testsupport.NewProject(t, env.project,
		"masters/active/01-1-intro.mov",
		"masters/active/02-1-b-roll.mov",
		"masters/archived/00-1-teaser.mov",
		"shadows/active/02-1-b-roll.mp4",
	)

	out := env.mustRun(t, "generate", "vlog")
	if !strings.Contains(out, "vlog: created 2, skipped 1, 0 errors") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
	if !strings.Contains(out, "archived/00-1-teaser.mov") {
		t.Fatalf("expected archived label in progress output:\n%s", out)
	}
	for _, rel := range []string{"shadows/active/01-1-intro.mp4", "shadows/archived/00-1-teaser.mp4"} {
		if _, err := os.Stat(filepath.Join(env.project, rel)); err != nil {
			t.Fatalf("expected %s: %v", rel, err)
		}
	}

	var status statusOutput
	if err := json.Unmarshal([]byte(env.mustRun(t, "--json", "status", "vlog")), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Counts != (shadow.Counts{Masters: 3, Shadows: 3, Missing: 0}) {
		t.Fatalf("unexpected counts %+v", status.Counts)
	}

	var runs []history.Run
	if err := json.Unmarshal([]byte(env.mustRun(t, "--json", "history")), &runs); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(runs) != 1 || runs[0].Created != 2 || runs[0].Skipped != 1 || !runs[0].Finished() {
		t.Fatalf("unexpected history %+v", runs)
	}
	if runs[0].Trigger != history.TriggerManual || runs[0].Project != env.project {
		t.Fatalf("unexpected run metadata %+v", runs[0])
	}
}

func TestGenerateJSONReportsFailures(t *testing.T) {
	env := setupCLITestEnv(t, failingFFmpegScript)
	testsupport.NewProject(t, env.project, "masters/active/01-1-intro.mov")

	out, err := env.run(t, "--json", "generate", "vlog")
	if err == nil || !strings.Contains(err.Error(), "1 shadow(s) failed") {
		t.Fatalf("expected failure error, got %v", err)
	}
	var result sweepResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode result: %v\n%s", err, out)
	}
	if len(result.Report.Errors) != 1 || !strings.HasPrefix(result.Report.Errors[0], "01-1-intro.mov: ") {
		t.Fatalf("unexpected errors %+v", result.Report.Errors)
	}

	var run history.Run
	if err := json.Unmarshal([]byte(env.mustRun(t, "--json", "history", result.RunID)), &run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.Failed != 1 || len(run.Errors) != 1 || run.Errors[0] != result.Report.Errors[0] {
		t.Fatalf("unexpected stored run %+v", run)
	}
	if entries, _ := os.ReadDir(filepath.Join(env.project, "shadows", "active")); len(entries) != 0 {
		t.Fatalf("expected no leftovers in shadow dir, got %d entries", len(entries))
	}
}

func TestGenerateFailsWhileProjectLocked(t *testing.T) {
	env := setupCLITestEnv(t, okFFmpegScript)
	testsupport.NewProject(t, env.project, "masters/active/01-1-intro.mov")

	lock, err := projectlock.Acquire(context.Background(), env.cfg.LockDir(), env.project, 0)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer lock.Release()

	_, err = env.run(t, "generate", "vlog")
	if !errors.Is(err, projectlock.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestIndexJSONSingleTier(t *testing.T) {
	env := setupCLITestEnv(t, okFFmpegScript)
	testsupport.NewProject(t, env.project,
		"masters/archived/01-1-intro.mov",
		"shadows/archived/01-1-intro.mp4",
		"shadows/archived/02-1-gone.mp4",
	)

	var outputs []indexOutput
	if err := json.Unmarshal([]byte(env.mustRun(t, "--json", "index", "vlog", "--tier", "archived")), &outputs); err != nil {
		t.Fatalf("decode index: %v", err)
	}
	if len(outputs) != 1 || outputs[0].Tier != shadow.TierArchived {
		t.Fatalf("unexpected tiers %+v", outputs)
	}
	recs := outputs[0].Recordings
	if len(recs) != 2 {
		t.Fatalf("expected 2 recordings, got %+v", recs)
	}
	if recs[0].BaseName != "01-1-intro" || recs[0].Kind != shadow.KindReal || recs[0].ShadowPath == "" {
		t.Fatalf("unexpected first recording %+v", recs[0])
	}
	if recs[1].BaseName != "02-1-gone" || recs[1].Kind != shadow.KindShadow || recs[1].MasterPath != "" {
		t.Fatalf("unexpected second recording %+v", recs[1])
	}

	if _, err := env.run(t, "index", "vlog", "--tier", "frozen"); err == nil {
		t.Fatal("expected error for unknown tier")
	}
}

func TestStatusReportsMissingAndTierMismatch(t *testing.T) {
	env := setupCLITestEnv(t, okFFmpegScript)
	testsupport.NewProject(t, env.project,
		"masters/active/01-1-intro.mov",
		"masters/active/02-1-outro.mov",
		"shadows/archived/01-1-intro.mp4",
	)

	var status statusOutput
	if err := json.Unmarshal([]byte(env.mustRun(t, "--json", "status", "vlog")), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Counts.Missing != 1 || len(status.MissingShadows) != 1 || status.MissingShadows[0] != "02-1-outro" {
		t.Fatalf("unexpected missing %+v", status)
	}
	if len(status.TierMismatches) != 1 || status.TierMismatches[0].BaseName != "01-1-intro" {
		t.Fatalf("unexpected mismatches %+v", status.TierMismatches)
	}

	text := env.mustRun(t, "status", "vlog")
	if !strings.Contains(text, "== vlog ==") || !strings.Contains(text, "01-1-intro: master active, shadow archived") {
		t.Fatalf("unexpected status output:\n%s", text)
	}
}

func TestLifecycleCommands(t *testing.T) {
	env := setupCLITestEnv(t, okFFmpegScript)
	testsupport.NewProject(t, env.project, "shadows/active/01-1-intro.mp4")

	env.mustRun(t, "rename", "vlog", "active", "01-1-intro", "01-2-intro")
	env.mustRun(t, "move", "vlog", "01-2-intro", "active", "archived")
	if _, err := os.Stat(filepath.Join(env.project, "shadows", "archived", "01-2-intro.mp4")); err != nil {
		t.Fatalf("expected moved shadow: %v", err)
	}

	out := env.mustRun(t, "--json", "delete", "vlog", "archived", "01-2-intro")
	var result syncOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode delete: %v", err)
	}
	if !result.Success || result.Operation != "delete" {
		t.Fatalf("unexpected delete result %+v", result)
	}

	// A shadow that never existed is reported but not an error.
	out = env.mustRun(t, "delete", "vlog", "archived", "01-2-intro")
	if !strings.Contains(out, "no shadow to delete") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	testsupport.NewProject(t, env.project, "shadows/active/a.mp4", "shadows/active/b.mp4")
	if _, err := env.run(t, "rename", "vlog", "active", "a", "b"); err == nil || !strings.Contains(err.Error(), "destination exists") {
		t.Fatalf("expected destination exists error, got %v", err)
	}
}

func TestCheckJSON(t *testing.T) {
	env := setupCLITestEnv(t, okFFmpegScript)
	if err := os.MkdirAll(env.cfg.Paths.ProjectsDir, 0o755); err != nil {
		t.Fatal(err)
	}

	var report checkReport
	if err := json.Unmarshal([]byte(env.mustRun(t, "--json", "check")), &report); err != nil {
		t.Fatalf("decode check: %v", err)
	}
	if !report.OK {
		t.Fatalf("expected passing checks, got %+v", report)
	}
	if len(report.Dependencies) != 2 || !report.Dependencies[0].Available {
		t.Fatalf("unexpected dependencies %+v", report.Dependencies)
	}
}

func TestProbeJSON(t *testing.T) {
	env := setupCLITestEnv(t, okFFmpegScript)
	master := filepath.Join(t.TempDir(), "clip.mov")
	testsupport.WriteFile(t, master, 8)

	var result probeOutput
	if err := json.Unmarshal([]byte(env.mustRun(t, "--json", "probe", master)), &result); err != nil {
		t.Fatalf("decode probe: %v", err)
	}
	if !result.Known || result.Duration != 10 {
		t.Fatalf("unexpected probe %+v", result)
	}
}

func TestCreateRefusesExistingShadow(t *testing.T) {
	env := setupCLITestEnv(t, okFFmpegScript)
	testsupport.NewProject(t, env.project,
		"masters/active/01-1-intro.mov",
		"shadows/active/01-1-intro.mp4",
	)
	master := filepath.Join(env.project, "masters", "active", "01-1-intro.mov")
	shadowDir := filepath.Join(env.project, "shadows", "active")

	out, err := env.run(t, "--json", "create", master, shadowDir)
	if shadow.ReasonOf(err) != shadow.ReasonAlreadyExists {
		t.Fatalf("expected already exists, got %v", err)
	}
	var result createOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if result.Reason != shadow.ReasonAlreadyExists {
		t.Fatalf("unexpected reason %+v", result)
	}
}
