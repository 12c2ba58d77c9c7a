// Package watch runs shadow sweeps when new masters land in a project.
//
// A Watcher subscribes to the active and archived masters directories via
// fsnotify, debounces bursts of create/write events (a multi-gigabyte copy
// emits thousands), and then invokes the configured sweep. Sweeps for the same
// project never overlap: events that arrive mid-sweep queue exactly one
// follow-up sweep, and out-of-band calls to Sweep share an in-flight run
// through singleflight.
package watch
