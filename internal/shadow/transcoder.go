package shadow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"shadowkit/internal/config"
	"shadowkit/internal/fileutil"
	"shadowkit/internal/logging"
	"shadowkit/internal/media/ffmpeg"
	"shadowkit/internal/media/ffprobe"
)

// ProgressFunc receives encode progress as a percentage in [0, 100].
type ProgressFunc func(percent float64)

// ProbeFunc returns a media duration in seconds, or false when unknown.
type ProbeFunc func(ctx context.Context, path string) (float64, bool)

// CreateResult describes a shadow written by CreateShadow.
type CreateResult struct {
	ShadowPath string  `json:"shadow_path"`
	Duration   float64 `json:"duration_seconds,omitempty"`
}

// Transcoder encodes masters into shadows with a fixed set of parameters.
type Transcoder struct {
	runner     ffmpeg.Runner
	binary     string
	probe      ProbeFunc
	options    ffmpeg.ShadowOptions
	extensions Extensions
	logger     *slog.Logger
}

// TranscoderOption customizes a Transcoder.
type TranscoderOption func(*Transcoder)

// WithRunner injects the process runner (primarily for tests).
func WithRunner(runner ffmpeg.Runner) TranscoderOption {
	return func(t *Transcoder) {
		if runner != nil {
			t.runner = runner
		}
	}
}

// WithProbe replaces the duration probe.
func WithProbe(probe ProbeFunc) TranscoderOption {
	return func(t *Transcoder) {
		if probe != nil {
			t.probe = probe
		}
	}
}

// WithFFmpegBinary sets the encoder binary.
func WithFFmpegBinary(binary string) TranscoderOption {
	return func(t *Transcoder) {
		if binary != "" {
			t.binary = binary
		}
	}
}

// WithShadowOptions sets the encoder parameters.
func WithShadowOptions(opts ffmpeg.ShadowOptions) TranscoderOption {
	return func(t *Transcoder) { t.options = opts }
}

// WithExtensions sets the shadow extension used for output files.
func WithExtensions(ext Extensions) TranscoderOption {
	return func(t *Transcoder) { t.extensions = ext }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) TranscoderOption {
	return func(t *Transcoder) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTranscoder builds a Transcoder that runs ffmpeg and ffprobe from PATH
// unless overridden.
func NewTranscoder(opts ...TranscoderOption) *Transcoder {
	t := &Transcoder{
		runner:     ffmpeg.CommandRunner{},
		binary:     "ffmpeg",
		options:    ffmpeg.DefaultShadowOptions(),
		extensions: DefaultExtensions(),
		logger:     logging.NewNop(),
	}
	t.probe = func(ctx context.Context, path string) (float64, bool) {
		return ffprobe.ProbeDuration(ctx, "ffprobe", path)
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = logging.NewComponentLogger(t.logger, "shadow")
	return t
}

// NewTranscoderFromConfig builds a Transcoder from the [shadow] and [layout]
// configuration sections. Extra options are applied last.
func NewTranscoderFromConfig(cfg *config.Config, logger *slog.Logger, extra ...TranscoderOption) *Transcoder {
	probeBinary := cfg.Shadow.FFprobeBinary
	opts := []TranscoderOption{
		WithFFmpegBinary(cfg.Shadow.FFmpegBinary),
		WithProbe(func(ctx context.Context, path string) (float64, bool) {
			return ffprobe.ProbeDuration(ctx, probeBinary, path)
		}),
		WithShadowOptions(ffmpeg.ShadowOptions{
			Height:       cfg.Shadow.Height,
			VideoCodec:   cfg.Shadow.VideoCodec,
			Preset:       cfg.Shadow.Preset,
			CRF:          cfg.Shadow.CRF,
			AudioCodec:   cfg.Shadow.AudioCodec,
			AudioBitrate: cfg.Shadow.AudioBitrate,
		}),
		WithExtensions(Extensions{Master: cfg.Layout.MasterExtensions, Shadow: cfg.Layout.ShadowExtension}),
		WithLogger(logger),
	}
	return NewTranscoder(append(opts, extra...)...)
}

// partialPrefix marks the hidden scratch files encodes write to before the
// result is moved into place.
const partialPrefix = ".partial-"

// createPartial reserves a uniquely named hidden scratch file next to
// destination. Concurrent encodes that share a destination never share a
// scratch file.
func createPartial(destination string) (string, error) {
	dir, name := filepath.Split(destination)
	ext := filepath.Ext(name)
	f, err := os.CreateTemp(dir, "."+BaseName(name)+partialPrefix+"*"+ext)
	if err != nil {
		return "", err
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

// CreateShadow encodes masterPath into shadowDir/<base><shadow ext>. It
// refuses to overwrite an existing shadow and removes any partial output
// when the encode fails or ctx is cancelled. onProgress may be nil; when
// the duration cannot be probed it only receives the final 100.
func (t *Transcoder) CreateShadow(ctx context.Context, masterPath, shadowDir string, onProgress ProgressFunc) (CreateResult, error) {
	base := BaseName(masterPath)
	destination := t.extensions.ShadowPath(shadowDir, base)
	logger := t.logger.With(logging.String(logging.FieldBaseName, base))

	exists, err := fileutil.Exists(destination)
	if err != nil {
		return CreateResult{}, fmt.Errorf("check shadow %s: %w", destination, err)
	}
	if exists {
		return CreateResult{}, newError(ReasonAlreadyExists, destination, nil)
	}
	info, err := os.Stat(masterPath)
	if err != nil {
		return CreateResult{}, newError(ReasonSourceNotFound, masterPath, err)
	}
	if info.IsDir() {
		return CreateResult{}, newError(ReasonSourceNotFound, masterPath, errors.New("is a directory"))
	}
	if err := os.MkdirAll(shadowDir, 0o755); err != nil {
		return CreateResult{}, fmt.Errorf("create shadow directory: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return CreateResult{}, newError(ReasonCancelled, masterPath, err)
	}

	duration, known := t.probe(ctx, masterPath)
	if !known {
		logger.Debug("duration unknown; progress disabled", logging.String("master", masterPath))
	}

	partial, err := createPartial(destination)
	if err != nil {
		return CreateResult{}, fmt.Errorf("reserve scratch file for %s: %w", destination, err)
	}

	onLine := func(line string) {
		if !known || onProgress == nil {
			return
		}
		if position, ok := ffmpeg.ParseProgressTime(line); ok {
			onProgress(ffmpeg.Percent(position, duration))
		}
	}

	logger.Debug("encoder starting",
		logging.String("master", masterPath),
		logging.String("shadow", destination),
	)
	args := ffmpeg.BuildShadowArgs(masterPath, partial, t.options)
	if err := t.runner.Run(ctx, t.binary, args, onLine); err != nil {
		_ = os.Remove(partial)
		return CreateResult{}, t.classifyRunError(ctx, masterPath, err)
	}

	if info, err := os.Stat(partial); err != nil || info.Size() == 0 {
		_ = os.Remove(partial)
		return CreateResult{}, newError(ReasonEncodeFailure, masterPath, errors.New("encoder produced no output"))
	}
	if err := fileutil.MoveFile(partial, destination); err != nil {
		_ = os.Remove(partial)
		switch {
		case errors.Is(err, fileutil.ErrDestinationExists):
			return CreateResult{}, newError(ReasonAlreadyExists, destination, nil)
		default:
			return CreateResult{}, fmt.Errorf("finalize shadow %s: %w", destination, err)
		}
	}

	if onProgress != nil {
		onProgress(100)
	}
	logger.Info("shadow created",
		logging.String(logging.FieldEventType, "shadow_created"),
		logging.String("shadow", destination),
	)
	result := CreateResult{ShadowPath: destination}
	if known {
		result.Duration = duration
	}
	return result, nil
}

func (t *Transcoder) classifyRunError(ctx context.Context, masterPath string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return newError(ReasonCancelled, masterPath, ctxErr)
	}
	var startErr *ffmpeg.StartError
	if errors.As(err, &startErr) {
		return newError(ReasonSpawnFailure, masterPath, startErr.Err)
	}
	encodeErr := newError(ReasonEncodeFailure, masterPath, err)
	var exitErr *ffmpeg.ExitError
	if errors.As(err, &exitErr) {
		encodeErr.ExitCode = exitErr.Code
		if n := len(exitErr.Tail); n > 0 {
			encodeErr.Err = errors.New(exitErr.Tail[n-1])
		} else {
			encodeErr.Err = nil
		}
	}
	return encodeErr
}
