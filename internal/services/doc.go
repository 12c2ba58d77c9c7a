// Package services defines shared utilities consumed by the shadow subsystem
// and the CLI that drives it.
//
// Key responsibilities:
//   - Context helpers that stamp project directories, sweep run IDs, and
//     caller correlation identifiers for logging.
//
// Use these helpers when wiring new entry points so log lines from a sweep
// can be traced back to the project and run that produced them.
package services
