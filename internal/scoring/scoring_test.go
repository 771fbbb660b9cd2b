package scoring

import (
	"math"
	"math/rand"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vlmbench/vlmbench/internal/database"
)

func uniform(v float64) database.BenchmarkScores {
	s := make(database.BenchmarkScores, len(database.Benchmarks))
	for _, b := range database.Benchmarks {
		s[b] = v
	}
	return s
}

func TestComputeScoreEqualWeights(t *testing.T) {
	scores := database.BenchmarkScores{
		database.MMBenchV11: 80, database.MMStar: 60, database.MMMUVal: 50, database.MathVista: 70,
		database.OCRBench: 85, database.AI2D: 82, database.HallusionBench: 45, database.MMVet: 64,
	}
	// (80+60+50+70+85+82+45+64)/8 = 67.0
	assert.Equal(t, 67.0, ComputeScore(scores, DefaultWeights()))
}

func TestComputeScoreRoundsToOneDecimal(t *testing.T) {
	scores := database.BenchmarkScores{database.MMStar: 10, database.MMVet: 20, database.AI2D: 20}
	// 50/3 = 16.666...
	assert.Equal(t, 16.7, ComputeScore(scores, DefaultWeights()))
}

func TestComputeScoreMissingWeightDefaultsToOne(t *testing.T) {
	scores := database.BenchmarkScores{database.MMStar: 40, database.OCRBench: 80}
	w := Weights{database.OCRBench: 3}
	// (40*1 + 80*3) / 4 = 70
	assert.Equal(t, 70.0, ComputeScore(scores, w))
}

func TestComputeScoreZeroWeights(t *testing.T) {
	zero := make(Weights)
	for _, b := range database.Benchmarks {
		zero[b] = 0
	}
	for _, v := range []float64{0, 12.5, 100} {
		assert.Equal(t, 0.0, ComputeScore(uniform(v), zero))
	}
	assert.Equal(t, 0.0, ComputeScore(nil, DefaultWeights()))
}

func TestComputeScoreBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		scores := make(database.BenchmarkScores)
		w := make(Weights)
		for _, b := range database.Benchmarks {
			scores[b] = float64(rng.Intn(10001)) / 100
			w[b] = rng.Float64() * 5
		}
		got := ComputeScore(scores, w)
		require.GreaterOrEqual(t, got, 0.0)
		require.LessOrEqual(t, got, 100.0)
		require.InDelta(t, got, math.Round(got*10)/10, 1e-9, "not rounded to one decimal: %v", got)
	}
}

func TestDoublingMathVistaReordersRecords(t *testing.T) {
	a := uniform(70)
	a[database.MathVista] = 60
	b := uniform(66)
	b[database.MathVista] = 85

	def := DefaultWeights()
	// a: 550/8 = 68.75; b: 547/8 = 68.375
	assert.Equal(t, 68.8, ComputeScore(a, def))
	assert.Equal(t, 68.4, ComputeScore(b, def))

	math2 := DefaultWeights()
	math2[database.MathVista] = 2
	// a: 610/9 = 67.78; b: 632/9 = 70.22
	assert.Equal(t, 67.8, ComputeScore(a, math2))
	assert.Equal(t, 70.2, ComputeScore(b, math2))
	assert.Less(t, ComputeScore(a, math2), ComputeScore(b, math2))
}

func TestEffectiveScoreLegacyRecord(t *testing.T) {
	legacy := database.ModelRecord{Name: "old", Score: 42.5}
	assert.Equal(t, 42.5, EffectiveScore(legacy, DefaultWeights()))

	rec := database.ModelRecord{Name: "new", Score: 1, Benchmarks: uniform(60)}
	assert.Equal(t, 60.0, EffectiveScore(rec, DefaultWeights()))
}

func TestNormalizeWeights(t *testing.T) {
	w := DefaultWeights()
	w[database.OCRBench] = 3
	n := NormalizeWeights(w)

	var sum float64
	for _, v := range n {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.InDelta(t, 0.3, n[database.OCRBench], 1e-9)
}

func TestNormalizeZeroSumNeverNaN(t *testing.T) {
	zero := make(Weights)
	for _, b := range database.Benchmarks {
		zero[b] = 0
	}
	n := NormalizeWeights(zero)
	require.Len(t, n, len(database.Benchmarks))
	for b, v := range n {
		assert.False(t, math.IsNaN(v), "%s is NaN", b)
		assert.InDelta(t, 1.0/8, v, 1e-9)
	}
}

func TestWeightPercentage(t *testing.T) {
	assert.Equal(t, 13, WeightPercentage(DefaultWeights(), database.MMStar))

	w := DefaultWeights()
	w[database.OCRBench] = 3
	assert.Equal(t, 30, WeightPercentage(w, database.OCRBench))
	assert.Equal(t, 10, WeightPercentage(w, database.AI2D))
}

func TestBreakdownOrdersByWeight(t *testing.T) {
	p, ok := PresetByName("ocr-focused")
	require.True(t, ok)
	got := Breakdown(p.Weights)
	require.Len(t, got, 8)
	assert.Equal(t, database.OCRBench, got[0].Benchmark)
	assert.Equal(t, database.AI2D, got[1].Benchmark)
	assert.Equal(t, database.MMBenchV11, got[2].Benchmark)
}

func TestPresetsAreIndependentCopies(t *testing.T) {
	first := Presets()
	first[0].Weights[database.MMStar] = 9
	assert.Equal(t, 1.0, Presets()[0].Weights[database.MMStar])

	names := make([]string, 0)
	for _, p := range Presets() {
		names = append(names, p.Name)
		assert.Len(t, p.Weights, len(database.Benchmarks), p.Name)
	}
	assert.Equal(t, []string{"Balanced", "OCR-Focused", "Math-Focused", "Reasoning-Heavy", "Reliability-Focused", "General Chat"}, names)

	_, ok := PresetByName("nope")
	assert.False(t, ok)
}

func TestInfo(t *testing.T) {
	assert.Equal(t, "MMMU", Info(database.MMMUVal).Name)
	assert.Equal(t, "ChartQA", Info("ChartQA").Name)
	assert.Len(t, AllInfo(), 8)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, DefaultWeights().Fingerprint(), Weights{}.Fingerprint())

	w := DefaultWeights()
	w[database.MathVista] = 2
	assert.NotEqual(t, DefaultWeights().Fingerprint(), w.Fingerprint())
	assert.True(t, Weights{}.IsDefault())
	assert.False(t, w.IsDefault())
}

func TestWeightsQueryRoundTrip(t *testing.T) {
	w := DefaultWeights()
	w[database.MathVista] = 2
	w[database.HallusionBench] = 0.5

	q := url.Values{"w.MMStar": {"4"}, "search": {"qwen"}}
	w.Encode(q)

	assert.Equal(t, "2", q.Get("w.MathVista"))
	assert.Equal(t, "0.5", q.Get("w.HallusionBench"))
	assert.Empty(t, q.Get("w.MMStar"), "stale weight must be removed")
	assert.Equal(t, "qwen", q.Get("search"))

	back := ParseWeights(q)
	assert.Equal(t, w.Fingerprint(), back.Fingerprint())
}

func TestParseWeightsIgnoresInvalid(t *testing.T) {
	q := url.Values{
		"w.MMStar":    {"-1"},
		"w.AI2D":      {"abc"},
		"w.ChartQA":   {"5"},
		"w.OCRBench":  {"NaN"},
		"w.MathVista": {" 2.5 "},
	}
	w := ParseWeights(q)
	assert.Equal(t, 1.0, w[database.MMStar])
	assert.Equal(t, 1.0, w[database.AI2D])
	assert.Equal(t, 1.0, w[database.OCRBench])
	assert.Equal(t, 2.5, w[database.MathVista])
	_, ok := w["ChartQA"]
	assert.False(t, ok)
}
