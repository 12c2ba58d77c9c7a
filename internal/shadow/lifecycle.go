package shadow

import (
	"errors"
	"os"

	"shadowkit/internal/fileutil"
)

const (
	syncNotFound          = "not found"
	syncDestinationExists = "destination exists"
)

// SyncResult reports the outcome of a lifecycle operation. A shadow that
// does not exist yields Success=false with Error "not found", which callers
// treat as "nothing to do".
type SyncResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// NotFound reports whether the operation found no shadow to act on.
func (r SyncResult) NotFound() bool {
	return !r.Success && r.Error == syncNotFound
}

func syncOK() SyncResult { return SyncResult{Success: true} }

func syncFailed(err error) SyncResult {
	switch {
	case errors.Is(err, fileutil.ErrDestinationExists):
		return SyncResult{Error: syncDestinationExists}
	case errors.Is(err, os.ErrNotExist):
		return SyncResult{Error: syncNotFound}
	}
	return SyncResult{Error: err.Error()}
}

// RenameShadow renames a shadow using the default shadow extension.
func RenameShadow(oldBaseName, newBaseName, shadowDir string) SyncResult {
	return DefaultExtensions().RenameShadow(oldBaseName, newBaseName, shadowDir)
}

// MoveShadow moves a shadow between tiers using the default shadow extension.
func MoveShadow(baseName, fromDir, toDir string) SyncResult {
	return DefaultExtensions().MoveShadow(baseName, fromDir, toDir)
}

// DeleteShadow removes a shadow using the default shadow extension.
func DeleteShadow(baseName, shadowDir string) SyncResult {
	return DefaultExtensions().DeleteShadow(baseName, shadowDir)
}

// RenameShadow gives the shadow for oldBaseName in shadowDir the name
// newBaseName. An existing shadow at the new name is never replaced.
func (e Extensions) RenameShadow(oldBaseName, newBaseName, shadowDir string) SyncResult {
	for _, name := range []string{oldBaseName, newBaseName} {
		if err := validBaseName(name); err != nil {
			return SyncResult{Error: err.Error()}
		}
	}
	src := e.ShadowPath(shadowDir, oldBaseName)
	if !e.shadowExists(src) {
		return SyncResult{Error: syncNotFound}
	}
	if oldBaseName == newBaseName {
		return syncOK()
	}
	if err := fileutil.MoveFile(src, e.ShadowPath(shadowDir, newBaseName)); err != nil {
		return syncFailed(err)
	}
	return syncOK()
}

// MoveShadow moves the shadow for baseName from fromDir to toDir, creating
// toDir when needed. An existing shadow in toDir is never replaced.
func (e Extensions) MoveShadow(baseName, fromDir, toDir string) SyncResult {
	if err := validBaseName(baseName); err != nil {
		return SyncResult{Error: err.Error()}
	}
	src := e.ShadowPath(fromDir, baseName)
	if !e.shadowExists(src) {
		return SyncResult{Error: syncNotFound}
	}
	dst := e.ShadowPath(toDir, baseName)
	if src == dst {
		return syncOK()
	}
	if err := os.MkdirAll(toDir, 0o755); err != nil {
		return SyncResult{Error: err.Error()}
	}
	if err := fileutil.MoveFile(src, dst); err != nil {
		return syncFailed(err)
	}
	return syncOK()
}

// DeleteShadow removes the shadow for baseName from shadowDir.
func (e Extensions) DeleteShadow(baseName, shadowDir string) SyncResult {
	if err := validBaseName(baseName); err != nil {
		return SyncResult{Error: err.Error()}
	}
	path := e.ShadowPath(shadowDir, baseName)
	if !e.shadowExists(path) {
		return SyncResult{Error: syncNotFound}
	}
	if err := os.Remove(path); err != nil {
		return syncFailed(err)
	}
	return syncOK()
}

func (e Extensions) shadowExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
