package shadow

import "sort"

// Counts summarises shadow coverage across both tiers of a project.
type Counts struct {
	Masters int `json:"masters"`
	Shadows int `json:"shadows"`
	Missing int `json:"missing"`
}

// GetCounts computes coverage using the default extensions.
func GetCounts(mastersActive, mastersArchived, shadowsActive, shadowsArchived string) (Counts, error) {
	return DefaultExtensions().GetCounts(mastersActive, mastersArchived, shadowsActive, shadowsArchived)
}

// GetCounts counts recognised masters and shadows across both tiers. Missing
// is the number of master base names with no shadow in either tier; a shadow
// in the wrong tier still counts as present.
func (e Extensions) GetCounts(mastersActive, mastersArchived, shadowsActive, shadowsArchived string) (Counts, error) {
	masters, shadows, err := e.baseNameSets(mastersActive, mastersArchived, shadowsActive, shadowsArchived)
	if err != nil {
		return Counts{}, err
	}
	return Counts{
		Masters: masters.files,
		Shadows: shadows.files,
		Missing: len(difference(masters.names, shadows.names)),
	}, nil
}

// MissingBaseNames returns the sorted master base names that have no shadow
// in either tier.
func (e Extensions) MissingBaseNames(mastersActive, mastersArchived, shadowsActive, shadowsArchived string) ([]string, error) {
	masters, shadows, err := e.baseNameSets(mastersActive, mastersArchived, shadowsActive, shadowsArchived)
	if err != nil {
		return nil, err
	}
	missing := difference(masters.names, shadows.names)
	sort.Strings(missing)
	return missing, nil
}

// Counts reports coverage for the project.
func (l Layout) Counts() (Counts, error) {
	return l.Extensions.GetCounts(l.MastersActive, l.MastersArchived, l.ShadowsActive, l.ShadowsArchived)
}

// MissingBaseNames lists the project's masters that have no shadow.
func (l Layout) MissingBaseNames() ([]string, error) {
	return l.Extensions.MissingBaseNames(l.MastersActive, l.MastersArchived, l.ShadowsActive, l.ShadowsArchived)
}

type nameSet struct {
	files int
	names map[string]struct{}
}

func (e Extensions) baseNameSets(mastersActive, mastersArchived, shadowsActive, shadowsArchived string) (nameSet, nameSet, error) {
	masters, err := collect(e.listMasters, mastersActive, mastersArchived)
	if err != nil {
		return nameSet{}, nameSet{}, err
	}
	shadows, err := collect(e.listShadows, shadowsActive, shadowsArchived)
	if err != nil {
		return nameSet{}, nameSet{}, err
	}
	return masters, shadows, nil
}

func collect(list func(string) ([]dirFile, error), dirs ...string) (nameSet, error) {
	set := nameSet{names: map[string]struct{}{}}
	for _, dir := range dirs {
		files, err := list(dir)
		if err != nil {
			return nameSet{}, err
		}
		set.files += len(files)
		for _, file := range files {
			set.names[BaseName(file.Name)] = struct{}{}
		}
	}
	return set, nil
}

func difference(a, b map[string]struct{}) []string {
	out := make([]string, 0)
	for name := range a {
		if _, ok := b[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}
