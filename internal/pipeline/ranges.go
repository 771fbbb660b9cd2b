package pipeline

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vlmbench/vlmbench/internal/database"
	"github.com/vlmbench/vlmbench/internal/scoring"
)

// Query parameter names for range bounds.
const (
	ParamScoreMin  = "score_min"
	ParamScoreMax  = "score_max"
	ParamDateMin   = "date_min"
	ParamDateMax   = "date_max"
	ParamParamsMin = "params_min"
	ParamParamsMax = "params_max"
)

// Bounds are concrete inclusive ranges for score, release date and params.
type Bounds struct {
	ScoreMin  float64   `json:"scoreMin"`
	ScoreMax  float64   `json:"scoreMax"`
	DateMin   time.Time `json:"dateMin"`
	DateMax   time.Time `json:"dateMax"`
	ParamsMin float64   `json:"paramsMin"`
	ParamsMax float64   `json:"paramsMax"`
}

// Contains reports whether all three values fall within the bounds.
func (b Bounds) Contains(score float64, date time.Time, params float64) bool {
	if score < b.ScoreMin || score > b.ScoreMax {
		return false
	}
	if date.Before(b.DateMin) || date.After(b.DateMax) {
		return false
	}
	return params >= b.ParamsMin && params <= b.ParamsMax
}

// ObservedBounds returns the min and max of every dimension over records,
// scoring with w. An empty dataset yields zero bounds.
func ObservedBounds(records []database.ModelRecord, w scoring.Weights) Bounds {
	var b Bounds
	for i, m := range records {
		score := scoring.EffectiveScore(m, w)
		if i == 0 {
			b = Bounds{
				ScoreMin: score, ScoreMax: score,
				DateMin: m.ReleaseDate, DateMax: m.ReleaseDate,
				ParamsMin: m.Params, ParamsMax: m.Params,
			}
			continue
		}
		b.ScoreMin = min(b.ScoreMin, score)
		b.ScoreMax = max(b.ScoreMax, score)
		if m.ReleaseDate.Before(b.DateMin) {
			b.DateMin = m.ReleaseDate
		}
		if m.ReleaseDate.After(b.DateMax) {
			b.DateMax = m.ReleaseDate
		}
		b.ParamsMin = min(b.ParamsMin, m.Params)
		b.ParamsMax = max(b.ParamsMax, m.Params)
	}
	return b
}

// Ranges holds caller-supplied bounds. A nil bound means the observed
// extreme of the dataset.
type Ranges struct {
	ScoreMin  *float64
	ScoreMax  *float64
	DateMin   *time.Time
	DateMax   *time.Time
	ParamsMin *float64
	ParamsMax *float64
}

// Resolve fills unset bounds from observed.
func (r Ranges) Resolve(observed Bounds) Bounds {
	b := observed
	if r.ScoreMin != nil {
		b.ScoreMin = *r.ScoreMin
	}
	if r.ScoreMax != nil {
		b.ScoreMax = *r.ScoreMax
	}
	if r.DateMin != nil {
		b.DateMin = *r.DateMin
	}
	if r.DateMax != nil {
		b.DateMax = *r.DateMax
	}
	if r.ParamsMin != nil {
		b.ParamsMin = *r.ParamsMin
	}
	if r.ParamsMax != nil {
		b.ParamsMax = *r.ParamsMax
	}
	return b
}

// Clamp returns a copy where no set minimum exceeds its set maximum. An
// inverted minimum is pulled down to the maximum.
func (r Ranges) Clamp() Ranges {
	out := r
	if r.ScoreMin != nil && r.ScoreMax != nil && *r.ScoreMin > *r.ScoreMax {
		v := *r.ScoreMax
		out.ScoreMin = &v
	}
	if r.DateMin != nil && r.DateMax != nil && r.DateMin.After(*r.DateMax) {
		v := *r.DateMax
		out.DateMin = &v
	}
	if r.ParamsMin != nil && r.ParamsMax != nil && *r.ParamsMin > *r.ParamsMax {
		v := *r.ParamsMax
		out.ParamsMin = &v
	}
	return out
}

// IsFiltered reports whether any bound narrows the observed range.
func (r Ranges) IsFiltered(observed Bounds) bool {
	b := r.Resolve(observed)
	return b.ScoreMin != observed.ScoreMin || b.ScoreMax != observed.ScoreMax ||
		!b.DateMin.Equal(observed.DateMin) || !b.DateMax.Equal(observed.DateMax) ||
		b.ParamsMin != observed.ParamsMin || b.ParamsMax != observed.ParamsMax
}

// ParseRanges reads range bounds from q. Malformed values are ignored and
// the result is clamped.
func ParseRanges(q url.Values) Ranges {
	r := Ranges{
		ScoreMin:  parseFloat(q.Get(ParamScoreMin)),
		ScoreMax:  parseFloat(q.Get(ParamScoreMax)),
		DateMin:   parseDate(q.Get(ParamDateMin)),
		DateMax:   parseDate(q.Get(ParamDateMax)),
		ParamsMin: parseFloat(q.Get(ParamParamsMin)),
		ParamsMax: parseFloat(q.Get(ParamParamsMax)),
	}
	return r.Clamp()
}

// Encode writes the set bounds into q and removes unset ones.
func (r Ranges) Encode(q url.Values) {
	setFloat(q, ParamScoreMin, r.ScoreMin)
	setFloat(q, ParamScoreMax, r.ScoreMax)
	setDate(q, ParamDateMin, r.DateMin)
	setDate(q, ParamDateMax, r.DateMax)
	setFloat(q, ParamParamsMin, r.ParamsMin)
	setFloat(q, ParamParamsMax, r.ParamsMax)
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(database.DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func setFloat(q url.Values, key string, v *float64) {
	if v == nil {
		q.Del(key)
		return
	}
	q.Set(key, strconv.FormatFloat(*v, 'g', -1, 64))
}

func setDate(q url.Values, key string, v *time.Time) {
	if v == nil {
		q.Del(key)
		return
	}
	q.Set(key, v.UTC().Format(database.DateLayout))
}

// Float returns a pointer to v, for building Ranges literals.
func Float(v float64) *float64 { return &v }

// Date returns a pointer to the UTC midnight of the given day.
func Date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}
