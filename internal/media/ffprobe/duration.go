package ffprobe

import (
	"context"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// ProbeDuration returns the container duration of path in seconds. The second
// return value is false when ffprobe cannot be started, exits non-zero, or
// prints something that is not a positive number. Callers treat a false
// result as "duration unknown" and continue without it.
func ProbeDuration(ctx context.Context, binary, path string) (float64, bool) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if strings.TrimSpace(path) == "" {
		return 0, false
	}

	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		"--", path,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, false
	}
	return parseDuration(string(output))
}

func parseDuration(output string) (float64, bool) {
	// Some containers report one line per program; the first is the container.
	line := strings.TrimSpace(output)
	if idx := strings.IndexAny(line, "\r\n"); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	value, err := strconv.ParseFloat(line, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0, false
	}
	return value, true
}
