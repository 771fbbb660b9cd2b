package pipeline

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vlmbench/vlmbench/internal/database"
	"github.com/vlmbench/vlmbench/internal/scoring"
	"github.com/vlmbench/vlmbench/internal/search"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func scenario() []database.ModelRecord {
	return []database.ModelRecord{
		{Name: "A", Family: "X", Score: 50, Params: 5, ReleaseDate: day(2024, 1, 1)},
		{Name: "B", Family: "Y", Score: 70, Params: 10, ReleaseDate: day(2024, 6, 1)},
		{Name: "C", Family: "X", Score: 90, Params: 2, ReleaseDate: day(2025, 1, 1)},
	}
}

func names(points []ProcessedPoint) []string {
	out := make([]string, 0, len(points))
	for _, p := range points {
		out = append(out, p.Name)
	}
	return out
}

func TestScenarioFamilyRangeSearch(t *testing.T) {
	records := scenario()
	w := scoring.DefaultWeights()

	got := FilterVisible(records, Filter{Families: []string{"X"}}, w)
	assert.Equal(t, []string{"A", "C"}, names(got))

	got = FilterVisible(records, Filter{
		Families: []string{"X"},
		Ranges:   Ranges{ScoreMin: Float(60), ScoreMax: Float(100)},
	}, w)
	assert.Equal(t, []string{"C"}, names(got))

	got = FilterVisible(records, Filter{Search: "A"}, w)
	assert.Equal(t, []string{"A"}, names(got))
}

func TestFamilyStagePassThrough(t *testing.T) {
	records := scenario()
	w := scoring.DefaultWeights()
	for _, fams := range [][]string{nil, {}, {"all"}, {"X", "all"}} {
		got := FilterVisible(records, Filter{Families: fams}, w)
		assert.Equal(t, []string{"A", "B", "C"}, names(got), "families %v", fams)
	}
	got := FilterVisible(records, Filter{Families: []string{"Nope"}}, w)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRangeBoundaryInclusive(t *testing.T) {
	records := scenario()
	w := scoring.DefaultWeights()

	got := FilterVisible(records, Filter{Ranges: Ranges{ScoreMin: Float(70)}}, w)
	assert.Equal(t, []string{"B", "C"}, names(got))

	got = FilterVisible(records, Filter{Ranges: Ranges{ScoreMin: Float(70.01)}}, w)
	assert.Equal(t, []string{"C"}, names(got))

	got = FilterVisible(records, Filter{Ranges: Ranges{
		DateMin: Date(2024, 6, 1), DateMax: Date(2024, 6, 1),
	}}, w)
	assert.Equal(t, []string{"B"}, names(got))

	got = FilterVisible(records, Filter{Ranges: Ranges{ParamsMax: Float(5)}}, w)
	assert.Equal(t, []string{"A", "C"}, names(got))
}

func TestRangeStageUsesWeightedScore(t *testing.T) {
	scores := func(v, mathVista float64) database.BenchmarkScores {
		s := make(database.BenchmarkScores)
		for _, b := range database.Benchmarks {
			s[b] = v
		}
		s[database.MathVista] = mathVista
		return s
	}
	records := []database.ModelRecord{
		{Name: "lo", Family: "F", ReleaseDate: day(2024, 1, 1), Benchmarks: scores(60, 60)},
		{Name: "hi", Family: "F", ReleaseDate: day(2024, 1, 1), Benchmarks: scores(60, 100)},
	}
	// Default: hi = 65.0. MathVista x9: hi = (420 + 900)/16 = 82.5
	w := scoring.DefaultWeights()
	w[database.MathVista] = 9
	got := FilterVisible(records, Filter{Ranges: Ranges{ScoreMin: Float(80)}}, w)
	require.Len(t, got, 1)
	assert.Equal(t, "hi", got[0].Name)
	assert.Equal(t, 82.5, got[0].EffectiveScore)
	assert.Equal(t, got[0].EffectiveScore, got[0].Y)
}

func TestFilterVisiblePurity(t *testing.T) {
	records := scenario()
	f := Filter{Families: []string{"X", "Y"}, Search: "b", Ranges: Ranges{ParamsMin: Float(1)}}
	w := scoring.DefaultWeights()

	first := FilterVisible(records, f, w)
	second := FilterVisible(records, f, w)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("pipeline not deterministic (-first +second):\n%s", diff)
	}

	// Mutating output must not leak into the dataset or later runs.
	all := FilterVisible(records, Filter{}, w)
	all[0].Name = "mutated"
	if diff := cmp.Diff(scenario(), records); diff != "" {
		t.Errorf("dataset mutated (-want +got):\n%s", diff)
	}
}

func TestFilterVisibleCoordinates(t *testing.T) {
	records := []database.ModelRecord{{Name: "neg", Family: "F", Score: 40, Params: -3, ReleaseDate: day(2024, 1, 1)}}
	got := FilterVisible(records, Filter{}, scoring.DefaultWeights())
	require.Len(t, got, 1)
	assert.Equal(t, day(2024, 1, 1).UnixMilli(), got[0].X)
	assert.Equal(t, 40.0, got[0].Y)
	assert.Equal(t, 0.0, got[0].Z)
}

func TestFilterVisibleEmptyDataset(t *testing.T) {
	got := FilterVisible(nil, Filter{Search: "qwen"}, scoring.DefaultWeights())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearchKeepsDatasetOrder(t *testing.T) {
	records := []database.ModelRecord{
		{Name: "Qwen-Max-VL", Family: "Other", Score: 1, ReleaseDate: day(2024, 1, 1)},
		{Name: "Qwem-VL", Family: "Other", Score: 1, ReleaseDate: day(2024, 1, 1)},
		{Name: "Phi-3", Family: "Phi", Score: 1, ReleaseDate: day(2024, 1, 1)},
		{Name: "Qwen2-VL", Family: "Qwen", Score: 1, ReleaseDate: day(2024, 1, 1)},
	}
	got := FilterVisible(records, Filter{Search: "qwen"}, scoring.DefaultWeights())
	assert.Equal(t, []string{"Qwen-Max-VL", "Qwem-VL", "Qwen2-VL"}, names(got))

	sugg := Suggest(records, "qwen", 10, search.NewMatcher(0))
	require.Len(t, sugg, 3)
	assert.Equal(t, "Qwen-Max-VL", sugg[0].Name)
	assert.Equal(t, "Qwen2-VL", sugg[1].Name)
	assert.Equal(t, "Qwem-VL", sugg[2].Name)

	assert.Len(t, Suggest(records, "qwen", 1, search.NewMatcher(0)), 1)
	assert.Empty(t, Suggest(records, " ", 5, search.NewMatcher(0)))
}

func TestFamiliesOf(t *testing.T) {
	assert.Equal(t, []string{"X", "Y"}, FamiliesOf(scenario()))
	assert.Empty(t, FamiliesOf(nil))
}

func TestObservedBoundsAndIsFiltered(t *testing.T) {
	obs := ObservedBounds(scenario(), scoring.DefaultWeights())
	assert.Equal(t, Bounds{
		ScoreMin: 50, ScoreMax: 90,
		DateMin: day(2024, 1, 1), DateMax: day(2025, 1, 1),
		ParamsMin: 2, ParamsMax: 10,
	}, obs)

	assert.False(t, Ranges{}.IsFiltered(obs))
	assert.False(t, Ranges{ScoreMin: Float(50)}.IsFiltered(obs))
	assert.True(t, Ranges{ParamsMax: Float(9)}.IsFiltered(obs))
}

func TestRangesClampAndQuery(t *testing.T) {
	r := Ranges{ScoreMin: Float(80), ScoreMax: Float(60), DateMin: Date(2025, 1, 1), DateMax: Date(2024, 1, 1)}.Clamp()
	assert.Equal(t, 60.0, *r.ScoreMin)
	assert.True(t, r.DateMin.Equal(day(2024, 1, 1)))

	q := url.Values{"score_min": {"55.5"}, "date_max": {"2024-12-31"}, "params_min": {"abc"}}
	parsed := ParseRanges(q)
	require.NotNil(t, parsed.ScoreMin)
	assert.Equal(t, 55.5, *parsed.ScoreMin)
	require.NotNil(t, parsed.DateMax)
	assert.True(t, parsed.DateMax.Equal(day(2024, 12, 31)))
	assert.Nil(t, parsed.ParamsMin)

	out := url.Values{"params_min": {"stale"}}
	parsed.Encode(out)
	assert.Equal(t, "55.5", out.Get("score_min"))
	assert.Equal(t, "2024-12-31", out.Get("date_max"))
	assert.False(t, out.Has("params_min"))
}

func TestAxisHelpers(t *testing.T) {
	pts := []ProcessedPoint{{Y: 80.1, Z: 3}, {Y: 42, Z: 3}}
	upper := YAxisUpperBound(pts)
	assert.Equal(t, 90.0, upper)
	assert.Equal(t, []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90}, YAxisTicks(upper))
	assert.Equal(t, []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 85}, YAxisTicks(85))

	lo, hi := SizeDomain(pts)
	assert.Equal(t, [2]float64{0, 3}, [2]float64{lo, hi})
	lo, hi = SizeDomain(nil)
	assert.Equal(t, [2]float64{0, 1}, [2]float64{lo, hi})
	lo, hi = SizeDomain([]ProcessedPoint{{Z: 0}})
	assert.Equal(t, [2]float64{0, 1}, [2]float64{lo, hi})
	lo, hi = SizeDomain([]ProcessedPoint{{Z: 2}, {Z: 8}})
	assert.Equal(t, [2]float64{2, 8}, [2]float64{lo, hi})
}

func TestCompare(t *testing.T) {
	points := FilterVisible(scenario(), Filter{}, scoring.DefaultWeights())
	c := Compare(points, []string{"C", "A", "Ghost"})

	require.Len(t, c.Models, 2)
	assert.Equal(t, "A", c.Models[0].Point.Name)
	assert.Equal(t, "C", c.Models[1].Point.Name)
	assert.True(t, c.Models[1].HighestScore)
	assert.True(t, c.Models[1].LowestParams)
	assert.True(t, c.Models[1].Newest)
	assert.False(t, c.Models[0].HighestScore)
	require.NotNil(t, c.Models[0].Efficiency)
	assert.Equal(t, 10.0, *c.Models[0].Efficiency)
	assert.Equal(t, []string{"Ghost"}, c.Missing)
}

func TestProcessedPointJSON(t *testing.T) {
	p := NewPoint(scenario()[1], scoring.DefaultWeights())
	data, err := json.Marshal(p)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, "B", flat["name"])
	assert.Equal(t, "2024-06-01", flat["date"])
	assert.Equal(t, 70.0, flat["effectiveScore"])
	assert.Contains(t, flat, "x")

	var back ProcessedPoint
	require.NoError(t, json.Unmarshal(data, &back))
	if diff := cmp.Diff(p, back); diff != "" {
		t.Errorf("decoded point differs (-want +got):\n%s", diff)
	}
}
