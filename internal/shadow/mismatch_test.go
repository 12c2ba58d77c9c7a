package shadow_test

import (
	"testing"

	"shadowkit/internal/shadow"
)

func TestTierMismatches(t *testing.T) {
	layout := newLayout(t,
		"masters/active/a.mov",
		"masters/archived/b.mov",
		"masters/active/c.mov",
		"shadows/archived/a.mp4",
		"shadows/active/b.mp4",
		"shadows/active/c.mp4",
	)
	got, err := layout.TierMismatches()
	if err != nil {
		t.Fatalf("TierMismatches: %v", err)
	}
	want := []shadow.TierMismatch{
		{BaseName: "a", MasterTier: shadow.TierActive, ShadowTier: shadow.TierArchived},
		{BaseName: "b", MasterTier: shadow.TierArchived, ShadowTier: shadow.TierActive},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mismatch %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseTier(t *testing.T) {
	if tier, err := shadow.ParseTier(" Archived "); err != nil || tier != shadow.TierArchived {
		t.Fatalf("ParseTier = %q, %v", tier, err)
	}
	if _, err := shadow.ParseTier("cold"); err == nil {
		t.Fatal("expected error for unknown tier")
	}
}
