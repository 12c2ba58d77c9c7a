package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLayout(); err != nil {
		return err
	}
	if err := c.validateShadow(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateLayout() error {
	names := map[string]string{
		"layout.masters_dir":  c.Layout.MastersDir,
		"layout.shadows_dir":  c.Layout.ShadowsDir,
		"layout.active_dir":   c.Layout.ActiveDir,
		"layout.archived_dir": c.Layout.ArchivedDir,
	}
	for key, value := range names {
		if filepath.IsAbs(value) || strings.Contains(value, "..") {
			return fmt.Errorf("%s must be a relative directory name, got %q", key, value)
		}
	}
	if c.Layout.MastersDir == c.Layout.ShadowsDir {
		return errors.New("layout.masters_dir and layout.shadows_dir must differ")
	}
	if c.Layout.ActiveDir == c.Layout.ArchivedDir {
		return errors.New("layout.active_dir and layout.archived_dir must differ")
	}
	return nil
}

func (c *Config) validateShadow() error {
	if c.Shadow.Height < 16 || c.Shadow.Height%2 != 0 {
		return fmt.Errorf("shadow.height must be an even number >= 16, got %d", c.Shadow.Height)
	}
	if c.Shadow.CRF < 0 || c.Shadow.CRF > 51 {
		return fmt.Errorf("shadow.crf must be between 0 and 51, got %d", c.Shadow.CRF)
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.Workers < 1 {
		return errors.New("batch.workers must be at least 1")
	}
	if c.Batch.LockTimeoutSeconds < 0 {
		return errors.New("batch.lock_timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateWatch() error {
	if c.Watch.DebounceSeconds < 0 {
		return errors.New("watch.debounce_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}
