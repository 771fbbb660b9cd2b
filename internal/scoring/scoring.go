// Package scoring computes weighted aggregate scores from per-benchmark
// results.
package scoring

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/vlmbench/vlmbench/internal/database"
)

// DefaultWeight is applied to any benchmark a weight vector does not name.
const DefaultWeight = 1.0

// Weights maps benchmarks to non-negative multipliers.
type Weights map[database.Benchmark]float64

// DefaultWeights returns a fresh vector with every benchmark at 1.0.
func DefaultWeights() Weights {
	w := make(Weights, len(database.Benchmarks))
	for _, b := range database.Benchmarks {
		w[b] = DefaultWeight
	}
	return w
}

// Get returns the weight for b, or DefaultWeight when b is not set.
func (w Weights) Get(b database.Benchmark) float64 {
	if v, ok := w[b]; ok {
		return v
	}
	return DefaultWeight
}

// Clone returns a copy of w.
func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// IsDefault reports whether every benchmark resolves to DefaultWeight.
func (w Weights) IsDefault() bool {
	for _, b := range database.Benchmarks {
		if w.Get(b) != DefaultWeight {
			return false
		}
	}
	return true
}

// Fingerprint returns a canonical string for w, suitable as a cache key.
// Vectors that score identically produce the same fingerprint.
func (w Weights) Fingerprint() string {
	parts := make([]string, 0, len(database.Benchmarks))
	for _, b := range database.Benchmarks {
		parts = append(parts, string(b)+"="+strconv.FormatFloat(w.Get(b), 'g', -1, 64))
	}
	return strings.Join(parts, ",")
}

// ComputeScore returns the weighted mean of scores rounded to one decimal.
// Benchmarks missing from w count with DefaultWeight. A zero weight sum
// yields 0.
func ComputeScore(scores database.BenchmarkScores, w Weights) float64 {
	var total, weightSum float64
	for b, score := range scores {
		weight := w.Get(b)
		total += score * weight
		weightSum += weight
	}
	if weightSum <= 0 {
		return 0
	}
	return Round1(total / weightSum)
}

// EffectiveScore returns the weighted score of m, or its legacy aggregate
// score when m carries no per-benchmark results.
func EffectiveScore(m database.ModelRecord, w Weights) float64 {
	if len(m.Benchmarks) == 0 {
		return m.Score
	}
	return ComputeScore(m.Benchmarks, w)
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// NormalizeWeights scales w over the benchmark set so the values sum to 1.
// A zero-sum vector normalizes the default weights instead.
func NormalizeWeights(w Weights) Weights {
	var sum float64
	for _, b := range database.Benchmarks {
		sum += w.Get(b)
	}
	if sum <= 0 {
		return NormalizeWeights(DefaultWeights())
	}
	out := make(Weights, len(database.Benchmarks))
	for _, b := range database.Benchmarks {
		out[b] = w.Get(b) / sum
	}
	return out
}

// WeightPercentage returns the rounded share of b in w as a percentage.
func WeightPercentage(w Weights, b database.Benchmark) int {
	return int(math.Round(NormalizeWeights(w)[b] * 100))
}

// Ranked pairs a benchmark with its weight share, for display.
type Ranked struct {
	Benchmark database.Benchmark `json:"benchmark"`
	Weight    float64            `json:"weight"`
	Percent   int                `json:"percent"`
}

// Breakdown lists every benchmark with its weight and share, heaviest first.
// Ties keep the benchmark display order.
func Breakdown(w Weights) []Ranked {
	out := make([]Ranked, 0, len(database.Benchmarks))
	for _, b := range database.Benchmarks {
		out = append(out, Ranked{Benchmark: b, Weight: w.Get(b), Percent: WeightPercentage(w, b)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out
}
