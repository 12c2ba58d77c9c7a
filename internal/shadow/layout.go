package shadow

import (
	"fmt"
	"path/filepath"
	"strings"

	"shadowkit/internal/config"
)

// Tier is the lifecycle bucket a recording lives in.
type Tier string

const (
	TierActive   Tier = "active"
	TierArchived Tier = "archived"
)

// Tiers returns every tier in sweep order.
func Tiers() []Tier {
	return []Tier{TierActive, TierArchived}
}

// ParseTier converts user input into a Tier.
func ParseTier(value string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(value))) {
	case TierActive:
		return TierActive, nil
	case TierArchived:
		return TierArchived, nil
	default:
		return "", fmt.Errorf("unknown tier %q (want active or archived)", value)
	}
}

// Layout holds the four directories of one project.
type Layout struct {
	Root            string
	MastersActive   string
	MastersArchived string
	ShadowsActive   string
	ShadowsArchived string
	Extensions      Extensions
}

// NewLayout resolves the project directories under root using the
// configured directory names and extensions.
func NewLayout(root string, cfg config.Layout) Layout {
	masters := filepath.Join(root, cfg.MastersDir)
	shadows := filepath.Join(root, cfg.ShadowsDir)
	ext := Extensions{Master: cfg.MasterExtensions, Shadow: cfg.ShadowExtension}
	if len(ext.Master) == 0 {
		ext.Master = append([]string(nil), DefaultMasterExtensions...)
	}
	return Layout{
		Root:            root,
		MastersActive:   filepath.Join(masters, cfg.ActiveDir),
		MastersArchived: filepath.Join(masters, cfg.ArchivedDir),
		ShadowsActive:   filepath.Join(shadows, cfg.ActiveDir),
		ShadowsArchived: filepath.Join(shadows, cfg.ArchivedDir),
		Extensions:      ext,
	}
}

// DefaultLayout resolves root with the conventional masters/ and shadows/
// directory names.
func DefaultLayout(root string) Layout {
	return NewLayout(root, config.Default().Layout)
}

// Name is the project directory name.
func (l Layout) Name() string {
	return filepath.Base(l.Root)
}

// MastersDir returns the master directory for tier.
func (l Layout) MastersDir(tier Tier) string {
	if tier == TierArchived {
		return l.MastersArchived
	}
	return l.MastersActive
}

// ShadowsDir returns the shadow directory for tier.
func (l Layout) ShadowsDir(tier Tier) string {
	if tier == TierArchived {
		return l.ShadowsArchived
	}
	return l.ShadowsActive
}
