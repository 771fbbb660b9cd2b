package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/vlmbench/vlmbench/internal/pipeline"
	"github.com/vlmbench/vlmbench/internal/scoring"
	"github.com/vlmbench/vlmbench/internal/viewstate"
)

// ParamPreset selects a named weight preset; explicit w.* parameters are
// applied on top of it.
const ParamPreset = "preset"

// viewQuery is everything a request can ask of the pipeline.
type viewQuery struct {
	state   viewstate.ViewState
	ranges  pipeline.Ranges
	weights scoring.Weights
}

func parseViewQuery(q url.Values) (viewQuery, bool) {
	weights := scoring.DefaultWeights()
	if name := q.Get(ParamPreset); name != "" {
		p, ok := scoring.PresetByName(name)
		if !ok {
			return viewQuery{}, false
		}
		weights = p.Weights
	}
	for b, v := range scoring.ParseWeights(q) {
		weights[b] = v
	}
	return viewQuery{
		state:   viewstate.Parse(q),
		ranges:  pipeline.ParseRanges(q),
		weights: weights,
	}, true
}

// cacheKey is canonical: equivalent queries map to the same key.
func (v viewQuery) cacheKey(generation uint64) string {
	q := viewstate.Encode(v.state)
	v.ranges.Encode(q)
	return strings.Join([]string{
		strconv.FormatUint(generation, 10),
		q.Encode(),
		v.weights.Fingerprint(),
	}, "|")
}

func intParam(q url.Values, key string, def int) int {
	v, err := strconv.Atoi(q.Get(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}
