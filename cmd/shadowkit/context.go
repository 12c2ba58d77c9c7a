package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"shadowkit/internal/config"
	"shadowkit/internal/history"
	"shadowkit/internal/logging"
	"shadowkit/internal/projectlock"
	"shadowkit/internal/shadow"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	jsonFlag     *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	historyOnce sync.Once
	history     *history.Store
	historyErr  error
}

func newCommandContext(configFlag, logLevelFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		jsonFlag:     jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// ensureLogger builds the process logger on first use and prunes old log
// files once per invocation.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = err
			return
		}
		logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
			Dir:     cfg.Paths.LogDir,
			Pattern: "*.log*",
			Exclude: []string{logging.LogFilePath(cfg)},
		})
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// ensureHistory opens the sweep history database on first use. Callers
// close it when the command finishes.
func (c *commandContext) ensureHistory() (*history.Store, error) {
	c.historyOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.historyErr = err
			return
		}
		c.history, c.historyErr = history.Open(cfg)
	})
	return c.history, c.historyErr
}

// projectLayout resolves a project argument against paths.projects_dir.
func (c *commandContext) projectLayout(project string) (shadow.Layout, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return shadow.Layout{}, err
	}
	root, err := cfg.ProjectPath(project)
	if err != nil {
		return shadow.Layout{}, err
	}
	return shadow.NewLayout(root, cfg.Layout), nil
}

// withProjectLock runs fn while holding the cross-process lock for layout.
func (c *commandContext) withProjectLock(ctx context.Context, layout shadow.Layout, fn func() error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	timeout := time.Duration(cfg.Batch.LockTimeoutSeconds) * time.Second
	lock, err := projectlock.Acquire(ctx, cfg.LockDir(), layout.Root, timeout)
	if err != nil {
		if errors.Is(err, projectlock.ErrLocked) {
			return fmt.Errorf("%s: %w; wait for the running sweep or raise batch.lock_timeout_seconds", layout.Name(), err)
		}
		return err
	}
	defer lock.Release()
	return fn()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
