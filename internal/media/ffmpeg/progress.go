package ffmpeg

import (
	"regexp"
	"strconv"
	"strings"
)

var timeRegex = regexp.MustCompile(`(?:^|\s)(?:out_)?time=\s*(-?[0-9]+:[0-9]{1,2}:[0-9]{1,2}(?:\.[0-9]+)?)`)

// ParseProgressTime extracts the "time=HH:MM:SS.frac" position from an ffmpeg
// status line and returns it in seconds. Lines without a time field, and
// "time=N/A", report false.
func ParseProgressTime(line string) (float64, bool) {
	matches := timeRegex.FindStringSubmatch(line)
	if len(matches) < 2 {
		return 0, false
	}
	return timestampToSeconds(matches[1])
}

func timestampToSeconds(value string) (float64, bool) {
	negative := strings.HasPrefix(value, "-")
	parts := strings.Split(strings.TrimPrefix(value, "-"), ":")
	if len(parts) != 3 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, false
	}
	total := float64(hours*3600+minutes*60) + seconds
	if negative {
		// ffmpeg prints negative times while priming; treat them as the start.
		return 0, true
	}
	return total, true
}

// Percent converts an encoded position into a percentage of duration clamped
// to [0, 99]. 100 is reserved for a successful exit.
func Percent(position, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	pct := position / duration * 100
	switch {
	case pct < 0:
		return 0
	case pct > 99:
		return 99
	default:
		return pct
	}
}
