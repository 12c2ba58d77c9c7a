package shadow_test

import (
	"os"
	"path/filepath"
	"testing"

	"shadowkit/internal/shadow"
)

func TestBuildIndexMergesMastersAndShadows(t *testing.T) {
	layout := newLayout(t,
		"masters/active/01-intro.mov",
		"masters/active/02-body.MP4",
		"masters/active/notes.txt",
		"masters/active/.03-hidden.mov",
		"shadows/active/01-intro.mp4",
		"shadows/active/09-placeholder.mp4",
		"shadows/active/.02-body.partial.mp4",
		"shadows/active/01-intro.mov",
	)

	index, err := shadow.BuildIndex(layout.MastersActive, layout.ShadowsActive)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if len(index) != 3 {
		t.Fatalf("expected 3 entries, got %d: %v", len(index), index)
	}

	intro := index["01-intro"]
	if intro.Kind != shadow.KindReal || intro.MasterPath == "" || intro.ShadowPath == "" {
		t.Fatalf("expected real entry with shadow, got %+v", intro)
	}
	if filepath.Base(intro.ShadowPath) != "01-intro.mp4" {
		t.Fatalf("unexpected shadow path %q", intro.ShadowPath)
	}

	body := index["02-body"]
	if body.Kind != shadow.KindReal || body.ShadowPath != "" {
		t.Fatalf("expected real entry without shadow, got %+v", body)
	}

	placeholder := index["09-placeholder"]
	if placeholder.Kind != shadow.KindShadow || placeholder.MasterPath != "" || placeholder.ShadowPath == "" {
		t.Fatalf("expected shadow-only entry, got %+v", placeholder)
	}
}

func TestBuildIndexBaseNamesAreCaseSensitive(t *testing.T) {
	layout := newLayout(t,
		"masters/active/Intro.mov",
		"shadows/active/intro.mp4",
	)
	index, err := shadow.BuildIndex(layout.MastersActive, layout.ShadowsActive)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if index["Intro"].ShadowPath != "" {
		t.Fatal("base names differing in case must not be joined")
	}
	if index["intro"].Kind != shadow.KindShadow {
		t.Fatalf("expected shadow-only entry for lowercase name, got %+v", index["intro"])
	}
}

func TestBuildIndexTreatsMissingDirectoriesAsEmpty(t *testing.T) {
	dir := t.TempDir()
	index, err := shadow.BuildIndex(filepath.Join(dir, "nope"), filepath.Join(dir, "also-nope"))
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if len(index) != 0 {
		t.Fatalf("expected empty index, got %v", index)
	}
}

func TestBuildIndexIgnoresDirectories(t *testing.T) {
	layout := newLayout(t, "masters/active/keep.mov")
	if err := os.MkdirAll(filepath.Join(layout.MastersActive, "folder.mov"), 0o755); err != nil {
		t.Fatal(err)
	}
	index, err := shadow.BuildIndex(layout.MastersActive, layout.ShadowsActive)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if _, ok := index["folder"]; ok || len(index) != 1 {
		t.Fatalf("expected directories to be skipped, got %v", index)
	}
}

func TestBuildProjectIndexAndSorting(t *testing.T) {
	layout := newLayout(t,
		"masters/active/b.mov",
		"masters/active/a.mov",
		"masters/archived/old.mov",
		"shadows/archived/old.mp4",
	)
	project, err := layout.BuildProjectIndex()
	if err != nil {
		t.Fatalf("BuildProjectIndex: %v", err)
	}
	active := shadow.SortedRecordings(project[shadow.TierActive])
	if len(active) != 2 || active[0].BaseName != "a" || active[1].BaseName != "b" {
		t.Fatalf("unexpected active recordings %+v", active)
	}
	archived := project[shadow.TierArchived]["old"]
	if archived.Kind != shadow.KindReal || archived.ShadowPath == "" {
		t.Fatalf("unexpected archived entry %+v", archived)
	}
}
