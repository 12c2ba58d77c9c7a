package preflight

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func checkOptionalDir(name, path string, writable bool) *Result {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return &Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return &Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	mode := uint32(unix.R_OK | unix.X_OK)
	label := "read ok"
	if writable {
		mode |= unix.W_OK
		label = "read/write ok"
	}
	if err := unix.Access(path, mode); err != nil {
		return &Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return &Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, label)}
}

// CheckEncoder asks ffmpeg for its encoder list and confirms the configured
// video and audio encoders are present.
func CheckEncoder(ctx context.Context, binary, videoCodec, audioCodec string) Result {
	const name = "FFmpeg encoders"
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	output, err := exec.CommandContext(checkCtx, binary, "-hide_banner", "-encoders").Output()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s -encoders failed (%v)", binary, err)}
	}

	available := parseEncoders(string(output))
	var missing []string
	for _, codec := range []string{videoCodec, audioCodec} {
		codec = strings.TrimSpace(codec)
		if codec == "" {
			continue
		}
		if _, ok := available[codec]; !ok {
			missing = append(missing, codec)
		}
	}
	if len(missing) > 0 {
		return Result{Name: name, Detail: "missing encoder: " + strings.Join(missing, ", ")}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s, %s available", videoCodec, audioCodec)}
}

// parseEncoders extracts encoder names from `ffmpeg -encoders` output, whose
// rows look like " V....D libx264              libx264 H.264 ...".
func parseEncoders(output string) map[string]struct{} {
	encoders := make(map[string]struct{})
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields[0]) != 6 || fields[1] == "=" {
			continue
		}
		switch fields[0][0] {
		case 'V', 'A', 'S':
			encoders[fields[1]] = struct{}{}
		}
	}
	return encoders
}
