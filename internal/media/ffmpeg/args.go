package ffmpeg

import (
	"strconv"
	"strings"
)

// ShadowOptions holds the encoder parameters for preview copies.
type ShadowOptions struct {
	Height       int
	VideoCodec   string
	Preset       string
	CRF          int
	AudioCodec   string
	AudioBitrate string
}

// DefaultShadowOptions returns the stock 240p H.264/AAC preview parameters.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Height:       240,
		VideoCodec:   "libx264",
		Preset:       "veryfast",
		CRF:          28,
		AudioCodec:   "aac",
		AudioBitrate: "128k",
	}
}

// BuildShadowArgs returns the ffmpeg argument list that encodes input into a
// low-resolution preview at output. The width follows the source aspect ratio
// rounded to an even number. Existing output is overwritten, so callers must
// point output at a scratch path.
func BuildShadowArgs(input, output string, opts ShadowOptions) []string {
	defaults := DefaultShadowOptions()
	if opts.Height <= 0 {
		opts.Height = defaults.Height
	}
	opts.VideoCodec = orDefault(opts.VideoCodec, defaults.VideoCodec)
	opts.Preset = orDefault(opts.Preset, defaults.Preset)
	opts.AudioCodec = orDefault(opts.AudioCodec, defaults.AudioCodec)
	opts.AudioBitrate = orDefault(opts.AudioBitrate, defaults.AudioBitrate)

	return []string{
		"-hide_banner",
		"-nostdin",
		"-i", input,
		"-vf", "scale=-2:" + strconv.Itoa(opts.Height),
		"-c:v", opts.VideoCodec,
		"-preset", opts.Preset,
		"-crf", strconv.Itoa(opts.CRF),
		"-c:a", opts.AudioCodec,
		"-b:a", opts.AudioBitrate,
		"-movflags", "+faststart",
		"-y", output,
	}
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
