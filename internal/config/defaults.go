package config

const (
	defaultProjectsDir          = "~/projects"
	defaultLogDir               = "~/.local/share/shadowkit/logs"
	defaultStateDir             = "~/.local/share/shadowkit/state"
	defaultMastersDir           = "masters"
	defaultShadowsDir           = "shadows"
	defaultActiveDir            = "active"
	defaultArchivedDir          = "archived"
	defaultShadowExtension      = ".mp4"
	defaultShadowHeight         = 240
	defaultShadowVideoCodec     = "libx264"
	defaultShadowPreset         = "veryfast"
	defaultShadowCRF            = 28
	defaultShadowAudioCodec     = "aac"
	defaultShadowAudioBitrate   = "128k"
	defaultFFmpegBinary         = "ffmpeg"
	defaultFFprobeBinary        = "ffprobe"
	defaultBatchWorkers         = 1
	defaultWatchDebounceSeconds = 5
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
)

var defaultMasterExtensions = []string{".mov", ".mp4", ".mkv", ".m4v", ".avi", ".mxf"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ProjectsDir: defaultProjectsDir,
			LogDir:      defaultLogDir,
			StateDir:    defaultStateDir,
		},
		Layout: Layout{
			MastersDir:       defaultMastersDir,
			ShadowsDir:       defaultShadowsDir,
			ActiveDir:        defaultActiveDir,
			ArchivedDir:      defaultArchivedDir,
			MasterExtensions: append([]string(nil), defaultMasterExtensions...),
			ShadowExtension:  defaultShadowExtension,
		},
		Shadow: Shadow{
			Height:        defaultShadowHeight,
			VideoCodec:    defaultShadowVideoCodec,
			Preset:        defaultShadowPreset,
			CRF:           defaultShadowCRF,
			AudioCodec:    defaultShadowAudioCodec,
			AudioBitrate:  defaultShadowAudioBitrate,
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Batch: Batch{
			Workers: defaultBatchWorkers,
		},
		Watch: Watch{
			DebounceSeconds: defaultWatchDebounceSeconds,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
