// Package config loads, normalizes, and validates shadowkit configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the SHADOWKIT_PROJECTS_DIR
// environment override. The Config type centralizes the project layout
// names, the fixed ffmpeg parameters for shadow encodes, and sweep settings
// so the CLI and the shadow subsystem agree on one set of values.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, dot-prefixed lowercase extensions, and clear validation
// errors.
package config
