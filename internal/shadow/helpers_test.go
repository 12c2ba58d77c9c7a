package shadow_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"shadowkit/internal/shadow"
	"shadowkit/internal/testsupport"
)

func fixedProbe(seconds float64, ok bool) shadow.ProbeFunc {
	return func(context.Context, string) (float64, bool) { return seconds, ok }
}

func newTranscoder(encoder *testsupport.FakeEncoder, probe shadow.ProbeFunc) *shadow.Transcoder {
	if probe == nil {
		probe = fixedProbe(10, true)
	}
	return shadow.NewTranscoder(shadow.WithRunner(encoder), shadow.WithProbe(probe))
}

func fileNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func mustExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

func mustNotExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be absent, err=%v", path, err)
	}
}

func newLayout(t *testing.T, files ...string) shadow.Layout {
	t.Helper()
	root := testsupport.NewProject(t, filepath.Join(t.TempDir(), "vlog"), files...)
	return shadow.DefaultLayout(root)
}
