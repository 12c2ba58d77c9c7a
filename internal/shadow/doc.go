// Package shadow maintains low-resolution "shadow" copies of master
// recordings inside a project tree.
//
// A project has four directories: masters and shadows, each split into an
// active and an archived tier. Masters and shadows are joined by base name
// (the filename without its extension). The package provides:
//
//   - Transcoder: encodes one master into one shadow via ffmpeg, reporting
//     progress and never leaving partial output behind.
//   - BuildIndex / BuildProjectIndex: the merged per-base-name view of one
//     tier, with masters taking precedence over shadow-only entries.
//   - GetCounts / Layout.Counts: coverage totals across both tiers.
//   - Generator: sweeps every master of a project and creates missing
//     shadows, accumulating failures into a Report instead of aborting.
//   - RenameShadow, MoveShadow, DeleteShadow: lifecycle primitives that keep
//     a shadow in step with its master. A missing shadow is reported as
//     "not found" and is not an error.
//
// Nothing in this package locks the project directories. Callers that run
// sweeps and lifecycle operations against the same project concurrently
// must serialize them (see internal/projectlock).
package shadow
