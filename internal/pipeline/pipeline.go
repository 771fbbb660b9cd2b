// Package pipeline narrows the model dataset to the visible set and maps it
// to plot-ready points. Every function is pure: identical inputs produce
// identical, freshly allocated output.
package pipeline

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/vlmbench/vlmbench/internal/database"
	"github.com/vlmbench/vlmbench/internal/scoring"
	"github.com/vlmbench/vlmbench/internal/search"
)

// AllFamilies is the family selection that disables family filtering.
const AllFamilies = "all"

// Filter holds the user-controlled inputs of the pipeline.
type Filter struct {
	Families []string
	Search   string
	Ranges   Ranges
	Matcher  search.Matcher
}

// ProcessedPoint is a record with its plotting coordinates.
// X is the release date in Unix milliseconds, Y the effective score and Z
// the bubble size.
type ProcessedPoint struct {
	database.ModelRecord
	X              int64
	Y              float64
	Z              float64
	EffectiveScore float64
}

type pointJSON struct {
	Name            string                   `json:"name"`
	Date            string                   `json:"date"`
	Score           float64                  `json:"score"`
	Params          float64                  `json:"params"`
	ParamsEstimated bool                     `json:"paramsEstimated,omitempty"`
	Family          string                   `json:"family"`
	Benchmarks      database.BenchmarkScores `json:"benchmarks,omitempty"`
	X               int64                    `json:"x"`
	Y               float64                  `json:"y"`
	Z               float64                  `json:"z"`
	EffectiveScore  float64                  `json:"effectiveScore"`
}

// MarshalJSON flattens the record and its coordinates into one object.
func (p ProcessedPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(pointJSON{
		Name:            p.Name,
		Date:            p.ReleaseDate.UTC().Format(database.DateLayout),
		Score:           p.Score,
		Params:          p.Params,
		ParamsEstimated: p.ParamsEstimated,
		Family:          p.Family,
		Benchmarks:      p.Benchmarks,
		X:               p.X,
		Y:               p.Y,
		Z:               p.Z,
		EffectiveScore:  p.EffectiveScore,
	})
}

// UnmarshalJSON reads the flattened form written by MarshalJSON.
func (p *ProcessedPoint) UnmarshalJSON(data []byte) error {
	var raw pointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := time.Parse(database.DateLayout, raw.Date)
	if err != nil {
		return err
	}
	*p = ProcessedPoint{
		ModelRecord: database.ModelRecord{
			Name:            raw.Name,
			ReleaseDate:     date,
			Score:           raw.Score,
			Params:          raw.Params,
			ParamsEstimated: raw.ParamsEstimated,
			Family:          raw.Family,
			Benchmarks:      raw.Benchmarks,
		},
		X:              raw.X,
		Y:              raw.Y,
		Z:              raw.Z,
		EffectiveScore: raw.EffectiveScore,
	}
	return nil
}

// NewPoint maps a record to its point under weights w.
func NewPoint(m database.ModelRecord, w scoring.Weights) ProcessedPoint {
	return newPoint(m, scoring.EffectiveScore(m, w))
}

func newPoint(m database.ModelRecord, effective float64) ProcessedPoint {
	z := m.Params
	if z < 0 {
		z = 0
	}
	return ProcessedPoint{
		ModelRecord:    m.Clone(),
		X:              m.ReleaseDate.UnixMilli(),
		Y:              effective,
		Z:              z,
		EffectiveScore: effective,
	}
}

// IsAllFamilies reports whether families selects every family.
func IsAllFamilies(families []string) bool {
	if len(families) == 0 {
		return true
	}
	for _, f := range families {
		if f == AllFamilies {
			return true
		}
	}
	return false
}

// FilterVisible runs the family, range and search stages in that order and
// maps the survivors to points. Output keeps dataset order and is never nil.
func FilterVisible(records []database.ModelRecord, f Filter, w scoring.Weights) []ProcessedPoint {
	bounds := f.Ranges.Resolve(ObservedBounds(records, w))

	allFamilies := IsAllFamilies(f.Families)
	members := make(map[string]bool, len(f.Families))
	for _, fam := range f.Families {
		members[fam] = true
	}
	blank := search.IsBlank(f.Search)

	out := make([]ProcessedPoint, 0, len(records))
	for _, m := range records {
		if !allFamilies && !members[m.Family] {
			continue
		}
		effective := scoring.EffectiveScore(m, w)
		if !bounds.Contains(effective, m.ReleaseDate, m.Params) {
			continue
		}
		if !blank {
			if _, ok := f.Matcher.Match(f.Search, m.Name, m.Family); !ok {
				continue
			}
		}
		out = append(out, newPoint(m, effective))
	}
	return out
}

// Suggestion is one ranked search hit.
type Suggestion struct {
	Name   string  `json:"name"`
	Family string  `json:"family"`
	Match  float64 `json:"match"`
}

// Suggest ranks records matching query best first. Equal matches keep
// dataset order. A blank query or non-positive limit yields no suggestions.
func Suggest(records []database.ModelRecord, query string, limit int, matcher search.Matcher) []Suggestion {
	out := make([]Suggestion, 0)
	if search.IsBlank(query) || limit <= 0 {
		return out
	}
	for _, m := range records {
		if score, ok := matcher.Match(query, m.Name, m.Family); ok {
			out = append(out, Suggestion{Name: m.Name, Family: m.Family, Match: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Match < out[j].Match })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// FamiliesOf returns the distinct families of records in first-seen order.
func FamiliesOf(records []database.ModelRecord) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, m := range records {
		if !seen[m.Family] {
			seen[m.Family] = true
			out = append(out, m.Family)
		}
	}
	return out
}
