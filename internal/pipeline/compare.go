package pipeline

import "time"

// ComparedModel is one entry of a comparison summary.
type ComparedModel struct {
	Point        ProcessedPoint `json:"point"`
	HighestScore bool           `json:"highestScore"`
	LowestParams bool           `json:"lowestParams"`
	Newest       bool           `json:"newest"`
	// Efficiency is effective score per billion parameters, nil when the
	// parameter count is zero.
	Efficiency *float64 `json:"efficiency"`
}

// Comparison summarizes the compared models found among the points.
type Comparison struct {
	Models  []ComparedModel `json:"models"`
	Missing []string        `json:"missing"`
}

// Compare builds a summary for names, in point order. Names without a
// visible point are listed in Missing.
func Compare(points []ProcessedPoint, names []string) Comparison {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	c := Comparison{Models: make([]ComparedModel, 0, len(names)), Missing: make([]string, 0)}
	found := make(map[string]bool, len(names))
	var (
		highest float64
		lowest  float64
		newest  time.Time
	)
	for _, p := range points {
		if !wanted[p.Name] || found[p.Name] {
			continue
		}
		if len(c.Models) == 0 {
			highest, lowest, newest = p.EffectiveScore, p.Params, p.ReleaseDate
		} else {
			highest = max(highest, p.EffectiveScore)
			lowest = min(lowest, p.Params)
			if p.ReleaseDate.After(newest) {
				newest = p.ReleaseDate
			}
		}
		found[p.Name] = true
		c.Models = append(c.Models, ComparedModel{Point: p})
	}

	for i := range c.Models {
		p := c.Models[i].Point
		c.Models[i].HighestScore = p.EffectiveScore == highest
		c.Models[i].LowestParams = p.Params == lowest
		c.Models[i].Newest = p.ReleaseDate.Equal(newest)
		if p.Params > 0 {
			e := p.EffectiveScore / p.Params
			c.Models[i].Efficiency = &e
		}
	}
	for _, n := range names {
		if !found[n] {
			c.Missing = append(c.Missing, n)
		}
	}
	return c
}
