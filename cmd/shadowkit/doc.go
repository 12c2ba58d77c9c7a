// Package main hosts the shadowkit CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration once, maps project
// arguments onto a shadow.Layout, and then hands off to the internal
// packages: shadow for the index, counts, transcoder, batch generator and
// lifecycle sync; history for the sweep log; projectlock to keep mutating
// commands from racing each other; and watch for the fsnotify loop.
//
// Keep this package thin. New behaviour belongs in an internal package first
// and is surfaced here through a command or flag.
package main
