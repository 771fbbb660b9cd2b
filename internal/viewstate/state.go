// Package viewstate holds the user's display selections and keeps them in
// sync with the query string and a persisted family preference.
package viewstate

import (
	"net/url"
	"strings"

	"github.com/vlmbench/vlmbench/internal/pipeline"
)

// Query parameter names owned by the view state.
const (
	ParamFamilies = "families"
	ParamSearch   = "search"
	ParamModel    = "model"
	ParamCompare  = "compare"
)

// ViewState is the complete set of user selections at a point in time.
type ViewState struct {
	Families []string `json:"families"`
	Search   string   `json:"search"`
	Model    string   `json:"model,omitempty"`
	Compare  []string `json:"compare"`
	// ComparisonMode is local only and never written to the query string.
	ComparisonMode bool `json:"comparisonMode"`
}

// Default returns the state with every field at its implicit default.
func Default() ViewState {
	return ViewState{Families: []string{pipeline.AllFamilies}, Compare: []string{}}
}

// Clone returns a copy that shares no slices with s.
func (s ViewState) Clone() ViewState {
	out := s
	out.Families = append([]string{}, s.Families...)
	out.Compare = append([]string{}, s.Compare...)
	return out
}

// AllFamilies reports whether the family selection is the "all" sentinel.
func (s ViewState) AllFamilies() bool {
	return pipeline.IsAllFamilies(s.Families)
}

// IsCompared reports whether name is in the comparison set.
func (s ViewState) IsCompared(name string) bool {
	for _, n := range s.Compare {
		if n == name {
			return true
		}
	}
	return false
}

// Filter builds pipeline inputs from the selections.
func (s ViewState) Filter(r pipeline.Ranges) pipeline.Filter {
	return pipeline.Filter{Families: s.Families, Search: s.Search, Ranges: r}
}

// normalizeFamilies collapses an empty or sentinel-bearing selection to
// ["all"] and drops blanks and duplicates.
func normalizeFamilies(families []string) []string {
	out := uniqueNonEmpty(families)
	if len(out) == 0 || pipeline.IsAllFamilies(out) {
		return []string{pipeline.AllFamilies}
	}
	return out
}

func uniqueNonEmpty(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

func normalize(s ViewState) ViewState {
	s.Families = normalizeFamilies(s.Families)
	s.Compare = uniqueNonEmpty(s.Compare)
	return s
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

// Encode serializes s into query parameters. Default fields are omitted,
// so the default state encodes to an empty query.
func Encode(s ViewState) url.Values {
	q := url.Values{}
	encodeInto(q, s)
	return q
}

func encodeInto(q url.Values, s ViewState) {
	for _, key := range []string{ParamFamilies, ParamSearch, ParamModel, ParamCompare} {
		q.Del(key)
	}
	s = normalize(s)
	if !s.AllFamilies() {
		q.Set(ParamFamilies, strings.Join(s.Families, ","))
	}
	if s.Search != "" {
		q.Set(ParamSearch, s.Search)
	}
	if s.Model != "" {
		q.Set(ParamModel, s.Model)
	}
	if len(s.Compare) > 0 {
		q.Set(ParamCompare, strings.Join(s.Compare, ","))
	}
}

// Parse reads the view state from query parameters. Absent fields take
// their defaults; ComparisonMode is always false.
func Parse(q url.Values) ViewState {
	return normalize(ViewState{
		Families: splitList(q.Get(ParamFamilies)),
		Search:   q.Get(ParamSearch),
		Model:    q.Get(ParamModel),
		Compare:  splitList(q.Get(ParamCompare)),
	})
}

// ShareURL returns base with the encoded state as its query, keeping any
// unrelated parameters already on base.
func ShareURL(base string, s ViewState) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	encodeInto(q, s)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
