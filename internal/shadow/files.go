package shadow

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shadowkit/internal/config"
)

// DefaultMasterExtensions lists the container formats recognised as masters.
var DefaultMasterExtensions = []string{".mov", ".mp4", ".mkv", ".m4v", ".avi", ".mxf"}

// DefaultShadowExtension is the container every shadow is written as.
const DefaultShadowExtension = ".mp4"

// Extensions decides which files count as masters and shadows.
type Extensions struct {
	Master []string
	Shadow string
}

// DefaultExtensions returns the stock master set and shadow extension.
func DefaultExtensions() Extensions {
	return Extensions{
		Master: append([]string(nil), DefaultMasterExtensions...),
		Shadow: DefaultShadowExtension,
	}
}

func (e Extensions) shadowExt() string {
	if ext := config.NormalizeExtension(e.Shadow); ext != "" {
		return ext
	}
	return DefaultShadowExtension
}

// IsMaster reports whether name carries a recognised master extension.
// Hidden files never qualify.
func (e Extensions) IsMaster(name string) bool {
	if isHidden(name) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	set := e.Master
	if len(set) == 0 {
		set = DefaultMasterExtensions
	}
	for _, candidate := range set {
		if config.NormalizeExtension(candidate) == ext {
			return true
		}
	}
	return false
}

// IsShadow reports whether name carries the shadow extension exactly as
// ShadowPath writes it. The match is case-sensitive, so intro.MP4 is not the
// shadow of intro.
func (e Extensions) IsShadow(name string) bool {
	if isHidden(name) {
		return false
	}
	return filepath.Ext(name) == e.shadowExt()
}

// ShadowPath returns where the shadow for baseName lives inside dir.
func (e Extensions) ShadowPath(dir, baseName string) string {
	return filepath.Join(dir, baseName+e.shadowExt())
}

// BaseName strips the directory and the final extension from name. Base names
// compare case-sensitively.
func BaseName(name string) string {
	name = filepath.Base(name)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func isHidden(name string) bool {
	return strings.HasPrefix(filepath.Base(name), ".")
}

func validBaseName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("empty base name")
	case name == "." || name == "..":
		return fmt.Errorf("invalid base name %q", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("base name %q contains a path separator", name)
	}
	return nil
}

type dirFile struct {
	Name string
	Path string
}

// listFiles returns the regular files in dir accepted by match, in directory
// listing order. A missing directory is reported as empty.
func listFiles(dir string, match func(string) bool) ([]dirFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	files := make([]dirFile, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !match(name) {
			continue
		}
		path := filepath.Join(dir, name)
		if !entry.Type().IsRegular() {
			if entry.Type()&os.ModeSymlink == 0 {
				continue
			}
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}
		files = append(files, dirFile{Name: name, Path: path})
	}
	return files, nil
}

func (e Extensions) listMasters(dir string) ([]dirFile, error) {
	return listFiles(dir, e.IsMaster)
}

func (e Extensions) listShadows(dir string) ([]dirFile, error) {
	return listFiles(dir, e.IsShadow)
}
