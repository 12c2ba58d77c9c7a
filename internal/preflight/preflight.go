package preflight

import (
	"context"

	"shadowkit/internal/config"
	"shadowkit/internal/shadow"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes the environment checks for cfg.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Projects directory", cfg.Paths.ProjectsDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	results = append(results, CheckEncoder(ctx, cfg.Shadow.FFmpegBinary, cfg.Shadow.VideoCodec, cfg.Shadow.AudioCodec))
	return results
}

// CheckProject verifies a project can be swept: every master directory that
// exists must be readable and every shadow directory that exists must be
// writable. Missing tier directories are fine; they are created on demand.
func CheckProject(layout shadow.Layout) []Result {
	results := []Result{CheckDirectoryAccess("Project", layout.Root)}
	for _, tier := range shadow.Tiers() {
		if r := checkOptionalDir("Masters ("+string(tier)+")", layout.MastersDir(tier), false); r != nil {
			results = append(results, *r)
		}
		if r := checkOptionalDir("Shadows ("+string(tier)+")", layout.ShadowsDir(tier), true); r != nil {
			results = append(results, *r)
		}
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
