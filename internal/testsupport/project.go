package testsupport

import (
	"path/filepath"
	"testing"
)

// NewProject creates a project directory containing the given relative file
// paths (for example "masters/active/01-intro.mov") and returns its root.
func NewProject(t testing.TB, root string, files ...string) string {
	t.Helper()
	for _, rel := range files {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(rel)), 16)
	}
	return root
}
