package preflight

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"shadowkit/internal/shadow"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckProjectSkipsMissingTiers(t *testing.T) {
	root := t.TempDir()
	layout := shadow.DefaultLayout(root)
	if err := os.MkdirAll(layout.MastersActive, 0o755); err != nil {
		t.Fatal(err)
	}

	results := CheckProject(layout)
	if len(results) != 2 {
		t.Fatalf("expected project + masters(active) results, got %+v", results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures %+v", failed)
	}
}

func TestCheckProjectFlagsFileInPlaceOfDirectory(t *testing.T) {
	root := t.TempDir()
	layout := shadow.DefaultLayout(root)
	if err := os.MkdirAll(filepath.Dir(layout.ShadowsActive), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(layout.ShadowsActive, []byte("oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	failed := Failed(CheckProject(layout))
	if len(failed) != 1 || failed[0].Name != "Shadows (active)" {
		t.Fatalf("unexpected failures %+v", failed)
	}
}

func TestParseEncoders(t *testing.T) {
	output := `Encoders:
 V..... = Video
 A..... = Audio
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC (codec h264)
 A....D aac                  AAC (Advanced Audio Coding)
`
	got := parseEncoders(output)
	for _, name := range []string{"libx264", "aac"} {
		if _, ok := got[name]; !ok {
			t.Fatalf("expected %s in %v", name, got)
		}
	}
	if _, ok := got["="]; ok {
		t.Fatal("legend rows must be ignored")
	}
}

func TestCheckEncoderWithStub(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs unsupported on windows")
	}
	stub := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\necho ' V....D libx264              libx264 H.264'\necho ' A....D aac                  AAC'\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	if r := CheckEncoder(context.Background(), stub, "libx264", "aac"); !r.Passed {
		t.Fatalf("expected pass, got %s", r.Detail)
	}
	if r := CheckEncoder(context.Background(), stub, "libx265", "aac"); r.Passed || r.Detail != "missing encoder: libx265" {
		t.Fatalf("expected missing libx265, got %+v", r)
	}
	if r := CheckEncoder(context.Background(), filepath.Join(t.TempDir(), "none"), "libx264", "aac"); r.Passed {
		t.Fatal("expected failure when ffmpeg cannot run")
	}
}
