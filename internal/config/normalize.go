package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLayout()
	c.normalizeShadow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("SHADOWKIT_PROJECTS_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.ProjectsDir = strings.TrimSpace(value)
	}
	var err error
	if c.Paths.ProjectsDir, err = expandPath(strings.TrimSpace(c.Paths.ProjectsDir)); err != nil {
		return fmt.Errorf("paths.projects_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLayout() {
	c.Layout.MastersDir = defaultIfBlank(c.Layout.MastersDir, defaultMastersDir)
	c.Layout.ShadowsDir = defaultIfBlank(c.Layout.ShadowsDir, defaultShadowsDir)
	c.Layout.ActiveDir = defaultIfBlank(c.Layout.ActiveDir, defaultActiveDir)
	c.Layout.ArchivedDir = defaultIfBlank(c.Layout.ArchivedDir, defaultArchivedDir)

	seen := make(map[string]struct{}, len(c.Layout.MasterExtensions))
	exts := make([]string, 0, len(c.Layout.MasterExtensions))
	for _, ext := range c.Layout.MasterExtensions {
		ext = NormalizeExtension(ext)
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = append(exts, defaultMasterExtensions...)
	}
	c.Layout.MasterExtensions = exts

	c.Layout.ShadowExtension = NormalizeExtension(c.Layout.ShadowExtension)
	if c.Layout.ShadowExtension == "" {
		c.Layout.ShadowExtension = defaultShadowExtension
	}
}

func (c *Config) normalizeShadow() {
	c.Shadow.VideoCodec = defaultIfBlank(c.Shadow.VideoCodec, defaultShadowVideoCodec)
	c.Shadow.Preset = defaultIfBlank(c.Shadow.Preset, defaultShadowPreset)
	c.Shadow.AudioCodec = defaultIfBlank(c.Shadow.AudioCodec, defaultShadowAudioCodec)
	c.Shadow.AudioBitrate = defaultIfBlank(c.Shadow.AudioBitrate, defaultShadowAudioBitrate)
	c.Shadow.FFmpegBinary = defaultIfBlank(c.Shadow.FFmpegBinary, defaultFFmpegBinary)
	c.Shadow.FFprobeBinary = defaultIfBlank(c.Shadow.FFprobeBinary, defaultFFprobeBinary)
	if c.Shadow.Height == 0 {
		c.Shadow.Height = defaultShadowHeight
	}
	if c.Batch.Workers == 0 {
		c.Batch.Workers = defaultBatchWorkers
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(defaultIfBlank(c.Logging.Format, defaultLogFormat))
	c.Logging.Level = strings.ToLower(defaultIfBlank(c.Logging.Level, defaultLogLevel))
}

// NormalizeExtension lowercases ext and ensures a leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func defaultIfBlank(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
