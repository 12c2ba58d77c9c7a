// Package ffmpeg runs the ffmpeg binary and interprets its output.
//
// Runner abstracts process execution so callers can substitute a fake in
// tests. CommandRunner is the production implementation: it streams stderr
// line by line (splitting on both '\n' and the '\r' ffmpeg uses for its
// status line) and reports failures as *StartError or *ExitError.
//
// ParseProgressTime extracts the encoded position from a status line and
// BuildShadowArgs assembles the fixed argument list for preview encodes.
package ffmpeg
