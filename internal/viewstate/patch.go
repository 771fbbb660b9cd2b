package viewstate

import "github.com/vlmbench/vlmbench/internal/pipeline"

// Patch is a partial update. Nil fields leave the current value in place.
type Patch struct {
	Families       *[]string
	Search         *string
	Model          *string
	Compare        *[]string
	ComparisonMode *bool
}

// Apply merges p into s and returns the result.
func (p Patch) Apply(s ViewState) ViewState {
	out := s.Clone()
	if p.Families != nil {
		out.Families = append([]string{}, (*p.Families)...)
	}
	if p.Search != nil {
		out.Search = *p.Search
	}
	if p.Model != nil {
		out.Model = *p.Model
	}
	if p.Compare != nil {
		out.Compare = append([]string{}, (*p.Compare)...)
	}
	if p.ComparisonMode != nil {
		out.ComparisonMode = *p.ComparisonMode
	}
	return normalize(out)
}

// SetFamilies replaces the family selection.
func SetFamilies(families ...string) Patch {
	return Patch{Families: &families}
}

// SetSearch replaces the search text.
func SetSearch(text string) Patch {
	return Patch{Search: &text}
}

// ToggleFamily adds family to the selection, or removes it when already
// selected. Removing the last family collapses to "all".
func ToggleFamily(s ViewState, family string) Patch {
	var next []string
	selected := false
	for _, f := range s.Families {
		if f == family {
			selected = true
		}
	}
	if selected {
		for _, f := range s.Families {
			if f != family {
				next = append(next, f)
			}
		}
		if len(next) == 0 {
			next = []string{pipeline.AllFamilies}
		}
	} else {
		for _, f := range s.Families {
			if f != pipeline.AllFamilies {
				next = append(next, f)
			}
		}
		next = append(next, family)
	}
	return Patch{Families: &next}
}

// ToggleCompared adds or removes name from the comparison set.
func ToggleCompared(s ViewState, name string) Patch {
	next := make([]string, 0, len(s.Compare)+1)
	found := false
	for _, n := range s.Compare {
		if n == name {
			found = true
			continue
		}
		next = append(next, n)
	}
	if !found {
		next = append(next, name)
	}
	return Patch{Compare: &next}
}

// SelectModel selects name and clears the comparison set. An empty name
// clears the selection.
func SelectModel(name string) Patch {
	empty := []string{}
	return Patch{Model: &name, Compare: &empty}
}

// SetComparisonMode switches comparison mode. Entering clears the selected
// model; leaving clears the comparison set.
func SetComparisonMode(on bool) Patch {
	p := Patch{ComparisonMode: &on}
	if on {
		none := ""
		p.Model = &none
	} else {
		empty := []string{}
		p.Compare = &empty
	}
	return p
}

// Click resolves a bubble click: it toggles comparison membership in
// comparison mode and selects the model otherwise.
func Click(s ViewState, name string) Patch {
	if s.ComparisonMode {
		return ToggleCompared(s, name)
	}
	if s.Model == name {
		return SelectModel("")
	}
	return SelectModel(name)
}
