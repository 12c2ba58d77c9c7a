package shadow

import (
	"fmt"
	"sort"
)

// Kind says whether a recording has a master on disk.
type Kind string

const (
	KindReal   Kind = "real"
	KindShadow Kind = "shadow"
)

// UnifiedRecording is the merged master/shadow view of one base name.
type UnifiedRecording struct {
	BaseName   string `json:"base_name"`
	Kind       Kind   `json:"kind"`
	MasterPath string `json:"master_path,omitempty"`
	ShadowPath string `json:"shadow_path,omitempty"`
}

// BuildIndex merges mastersDir and shadowsDir using the default extensions.
func BuildIndex(mastersDir, shadowsDir string) (map[string]UnifiedRecording, error) {
	return DefaultExtensions().BuildIndex(mastersDir, shadowsDir)
}

// BuildIndex merges one tier's master and shadow directories keyed by base
// name. Shadows are indexed first; masters then insert real entries or
// upgrade shadow-only entries while keeping their shadow path. Missing
// directories are treated as empty.
func (e Extensions) BuildIndex(mastersDir, shadowsDir string) (map[string]UnifiedRecording, error) {
	shadows, err := e.listShadows(shadowsDir)
	if err != nil {
		return nil, err
	}
	masters, err := e.listMasters(mastersDir)
	if err != nil {
		return nil, err
	}

	index := make(map[string]UnifiedRecording, len(shadows)+len(masters))
	for _, file := range shadows {
		base := BaseName(file.Name)
		index[base] = UnifiedRecording{BaseName: base, Kind: KindShadow, ShadowPath: file.Path}
	}
	for _, file := range masters {
		base := BaseName(file.Name)
		entry := index[base]
		entry.BaseName = base
		entry.Kind = KindReal
		entry.MasterPath = file.Path
		index[base] = entry
	}
	return index, nil
}

// BuildProjectIndex builds the index for both tiers of a project.
func (l Layout) BuildProjectIndex() (map[Tier]map[string]UnifiedRecording, error) {
	out := make(map[Tier]map[string]UnifiedRecording, 2)
	for _, tier := range Tiers() {
		index, err := l.Extensions.BuildIndex(l.MastersDir(tier), l.ShadowsDir(tier))
		if err != nil {
			return nil, fmt.Errorf("index %s tier: %w", tier, err)
		}
		out[tier] = index
	}
	return out, nil
}

// SortedRecordings returns the index entries ordered by base name.
func SortedRecordings(index map[string]UnifiedRecording) []UnifiedRecording {
	out := make([]UnifiedRecording, 0, len(index))
	for _, rec := range index {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BaseName < out[j].BaseName })
	return out
}
