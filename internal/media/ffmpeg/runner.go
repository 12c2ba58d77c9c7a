package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// stderrTailLines bounds how much ffmpeg output is kept for error messages.
const stderrTailLines = 8

// Runner abstracts command execution for testability. onLine receives every
// line the process writes to stdout or stderr and may be nil.
type Runner interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
}

// StartError reports that the process could not be spawned at all.
type StartError struct {
	Binary string
	Err    error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Binary, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// ExitError reports that the process ran and exited unsuccessfully.
type ExitError struct {
	Code int
	// Tail holds the last lines the process wrote, oldest first.
	Tail []string
	Err  error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("exit status %d", e.Code)
	if len(e.Tail) > 0 {
		msg += ": " + e.Tail[len(e.Tail)-1]
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }

// CommandRunner executes binaries with os/exec. Cancelling ctx kills the process.
type CommandRunner struct{}

// Run implements Runner.
func (CommandRunner) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &StartError{Binary: binary, Err: fmt.Errorf("stdout pipe: %w", err)}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &StartError{Binary: binary, Err: fmt.Errorf("stderr pipe: %w", err)}
	}
	if err := cmd.Start(); err != nil {
		return &StartError{Binary: binary, Err: err}
	}

	tail := newLineTail(stderrTailLines)
	var (
		wg      sync.WaitGroup
		forward sync.Mutex
		scanErr error
		once    sync.Once
	)
	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		scanner.Split(ScanStatusLines)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			forward.Lock()
			tail.add(line)
			if onLine != nil {
				onLine(line)
			}
			forward.Unlock()
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() { scanErr = err })
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)
	wg.Wait()

	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s interrupted: %w", binary, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Code: exitErr.ExitCode(), Tail: tail.lines(), Err: err}
		}
		return fmt.Errorf("wait %s: %w", binary, err)
	}
	return nil
}

// ScanStatusLines is a bufio.SplitFunc that ends a line at either '\r' or
// '\n'. A "\r\n" pair yields an empty token, which callers skip.
func ScanStatusLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

type lineTail struct {
	max int
	buf []string
}

func newLineTail(max int) *lineTail {
	return &lineTail{max: max}
}

func (t *lineTail) add(line string) {
	t.buf = append(t.buf, line)
	if len(t.buf) > t.max {
		t.buf = t.buf[len(t.buf)-t.max:]
	}
}

func (t *lineTail) lines() []string {
	return append([]string(nil), t.buf...)
}
