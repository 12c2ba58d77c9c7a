package shadow

import "sort"

// TierMismatch is a base name whose shadow lives only in the other tier.
type TierMismatch struct {
	BaseName   string `json:"base_name"`
	MasterTier Tier   `json:"master_tier"`
	ShadowTier Tier   `json:"shadow_tier"`
}

// TierMismatches lists masters whose shadow exists only in the opposite tier.
// Such shadows still count as present for coverage; the list is diagnostic.
func (l Layout) TierMismatches() ([]TierMismatch, error) {
	index, err := l.BuildProjectIndex()
	if err != nil {
		return nil, err
	}
	var out []TierMismatch
	for _, tier := range Tiers() {
		other := TierArchived
		if tier == TierArchived {
			other = TierActive
		}
		for base, rec := range index[tier] {
			if rec.Kind != KindReal || rec.ShadowPath != "" {
				continue
			}
			if counterpart, ok := index[other][base]; ok && counterpart.ShadowPath != "" {
				out = append(out, TierMismatch{BaseName: base, MasterTier: tier, ShadowTier: other})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BaseName != out[j].BaseName {
			return out[i].BaseName < out[j].BaseName
		}
		return out[i].MasterTier < out[j].MasterTier
	})
	return out, nil
}
