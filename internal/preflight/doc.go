// Package preflight provides readiness checks for the filesystem paths and
// external binaries shadowkit depends on.
//
// The CLI "shadowkit check" command runs RunAll and prints each Result;
// "generate" and "watch" run CheckProject before touching a project so a
// missing mount or read-only share fails fast with a clear message.
package preflight
