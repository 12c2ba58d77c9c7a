// Package ffprobe provides a typed wrapper around ffprobe output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video/subtitle stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Entry points:
//   - ProbeDuration: best-effort container duration used for progress reporting
//   - Inspect: executes ffprobe and returns the parsed JSON Result
package ffprobe
