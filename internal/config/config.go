package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	ProjectsDir string `toml:"projects_dir"`
	LogDir      string `toml:"log_dir"`
	StateDir    string `toml:"state_dir"`
}

// Layout describes how a project folder is split into master and shadow tiers.
type Layout struct {
	MastersDir       string   `toml:"masters_dir"`
	ShadowsDir       string   `toml:"shadows_dir"`
	ActiveDir        string   `toml:"active_dir"`
	ArchivedDir      string   `toml:"archived_dir"`
	MasterExtensions []string `toml:"master_extensions"`
	ShadowExtension  string   `toml:"shadow_extension"`
}

// Shadow contains the fixed encoder parameters used for preview copies.
type Shadow struct {
	Height        int    `toml:"height"`
	VideoCodec    string `toml:"video_codec"`
	Preset        string `toml:"preset"`
	CRF           int    `toml:"crf"`
	AudioCodec    string `toml:"audio_codec"`
	AudioBitrate  string `toml:"audio_bitrate"`
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// Batch contains configuration for project-wide shadow sweeps.
type Batch struct {
	// Workers bounds concurrent transcodes. 1 keeps sweeps strictly sequential.
	Workers            int `toml:"workers"`
	LockTimeoutSeconds int `toml:"lock_timeout_seconds"`
}

// Watch contains configuration for the directory watcher.
type Watch struct {
	DebounceSeconds int `toml:"debounce_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for shadowkit.
//
// Configuration sections by subsystem:
//   - Paths: project root, log and state directories
//   - Layout: master/shadow directory names and recognised extensions
//   - Shadow: ffmpeg parameters for preview encodes
//   - Batch: sweep concurrency and project lock behaviour
//   - Watch: debounce for watch mode
//   - Logging: log format, level, and retention
type Config struct {
	Paths   Paths   `toml:"paths"`
	Layout  Layout  `toml:"layout"`
	Shadow  Shadow  `toml:"shadow"`
	Batch   Batch   `toml:"batch"`
	Watch   Watch   `toml:"watch"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shadowkit/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("shadowkit.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and state directories. ProjectsDir is
// created on a best-effort basis so commands still run while external
// storage is unmounted.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.ProjectsDir) != "" {
		_ = os.MkdirAll(c.Paths.ProjectsDir, 0o755)
	}
	return nil
}

// ProjectPath resolves a project argument. Absolute paths and paths that
// exist relative to the working directory are used as-is; anything else is
// treated as a project name under ProjectsDir.
func (c *Config) ProjectPath(project string) (string, error) {
	project = strings.TrimSpace(project)
	if project == "" {
		return "", errors.New("project is required")
	}
	if filepath.IsAbs(project) || strings.HasPrefix(project, "~") {
		return expandPath(project)
	}
	if info, err := os.Stat(project); err == nil && info.IsDir() {
		return filepath.Abs(project)
	}
	if strings.TrimSpace(c.Paths.ProjectsDir) == "" {
		return "", fmt.Errorf("project %q not found and paths.projects_dir is not set", project)
	}
	return filepath.Join(c.Paths.ProjectsDir, project), nil
}

// HistoryPath returns the location of the sweep history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockDir returns the directory holding per-project lock files.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.StateDir, "locks")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
