package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"shadowkit/internal/media/ffmpeg"
)

// FakeEncoder implements ffmpeg.Runner. It replays Lines to the caller,
// writes Output to the last argument (the output path) and returns the
// configured result without spawning a process.
type FakeEncoder struct {
	Lines  []string
	Output []byte
	// ExitCode, when non-zero, fails every run after writing partial output.
	ExitCode int
	// FailFor maps master base names to exit codes for selective failures.
	FailFor  map[string]int
	StartErr error
	// Block makes Run wait for ctx to end after emitting Lines.
	Block bool
	// Delay holds each run open for the given duration unless ctx ends first.
	Delay time.Duration
	// Started is closed on the first Run call when non-nil.
	Started chan struct{}

	mu     sync.Mutex
	calls  [][]string
	active int
	peak   int
	once   sync.Once
}

// Run implements ffmpeg.Runner.
func (f *FakeEncoder) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{binary}, args...))
	f.active++
	if f.active > f.peak {
		f.peak = f.active
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()
	if f.Started != nil {
		f.once.Do(func() { close(f.Started) })
	}

	if f.StartErr != nil {
		return &ffmpeg.StartError{Binary: binary, Err: f.StartErr}
	}
	output := ""
	if len(args) > 0 {
		output = args[len(args)-1]
	}
	payload := f.Output
	if payload == nil {
		payload = []byte("shadow:" + inputOf(args))
	}
	if output != "" {
		if err := os.WriteFile(output, payload, 0o644); err != nil {
			return err
		}
	}
	for _, line := range f.Lines {
		if onLine != nil {
			onLine(line)
		}
	}
	if f.Block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	code := f.ExitCode
	if fail, ok := f.FailFor[strings.TrimSuffix(filepath.Base(inputOf(args)), filepath.Ext(inputOf(args)))]; ok {
		code = fail
	}
	if code != 0 {
		return &ffmpeg.ExitError{Code: code, Tail: []string{"Invalid data found when processing input"}}
	}
	return nil
}

// Calls returns the argument lists of every run, binary first.
func (f *FakeEncoder) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// PeakConcurrency reports the most runs observed in flight at once.
func (f *FakeEncoder) PeakConcurrency() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.peak
}

func inputOf(args []string) string {
	for i, arg := range args {
		if arg == "-i" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
