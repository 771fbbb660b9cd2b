package database

import (
	"encoding/json"
	"fmt"
	"time"
)

// Benchmark identifies one entry of the closed benchmark set.
type Benchmark string

const (
	MMBenchV11     Benchmark = "MMBench_V11"
	MMStar         Benchmark = "MMStar"
	MMMUVal        Benchmark = "MMMU_VAL"
	MathVista      Benchmark = "MathVista"
	OCRBench       Benchmark = "OCRBench"
	AI2D           Benchmark = "AI2D"
	HallusionBench Benchmark = "HallusionBench"
	MMVet          Benchmark = "MMVet"
)

// Benchmarks lists the closed benchmark set in display order.
var Benchmarks = []Benchmark{
	MMBenchV11, MMStar, MMMUVal, MathVista, OCRBench, AI2D, HallusionBench, MMVet,
}

// IsBenchmark reports whether b belongs to the closed benchmark set.
func IsBenchmark(b Benchmark) bool {
	for _, known := range Benchmarks {
		if known == b {
			return true
		}
	}
	return false
}

// BenchmarkScores maps each benchmark to a score in [0,100].
type BenchmarkScores map[Benchmark]float64

// DateLayout is the release date format used in dataset files.
const DateLayout = "2006-01-02"

// ModelRecord is one vision-language model with its benchmark results.
// Records are immutable once loaded.
type ModelRecord struct {
	Name            string          `json:"name"`
	ReleaseDate     time.Time       `json:"-"`
	Score           float64         `json:"score"`
	Params          float64         `json:"params"`
	ParamsEstimated bool            `json:"paramsEstimated,omitempty"`
	Family          string          `json:"family"`
	Benchmarks      BenchmarkScores `json:"benchmarks,omitempty"`
}

type recordJSON struct {
	Name            string          `json:"name"`
	Date            string          `json:"date"`
	Score           float64         `json:"score"`
	Params          float64         `json:"params"`
	ParamsEstimated bool            `json:"paramsEstimated,omitempty"`
	Family          string          `json:"family"`
	Benchmarks      BenchmarkScores `json:"benchmarks,omitempty"`
}

// MarshalJSON writes the release date as YYYY-MM-DD.
func (m ModelRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Name:            m.Name,
		Date:            m.ReleaseDate.UTC().Format(DateLayout),
		Score:           m.Score,
		Params:          m.Params,
		ParamsEstimated: m.ParamsEstimated,
		Family:          m.Family,
		Benchmarks:      m.Benchmarks,
	})
}

// UnmarshalJSON reads the dataset file format.
func (m *ModelRecord) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := time.Parse(DateLayout, raw.Date)
	if err != nil {
		return fmt.Errorf("parse date of %q: %w", raw.Name, err)
	}
	*m = ModelRecord{
		Name:            raw.Name,
		ReleaseDate:     date,
		Score:           raw.Score,
		Params:          raw.Params,
		ParamsEstimated: raw.ParamsEstimated,
		Family:          raw.Family,
		Benchmarks:      raw.Benchmarks,
	}
	return nil
}

// Clone returns a deep copy so callers cannot alias the benchmark map.
func (m ModelRecord) Clone() ModelRecord {
	out := m
	if m.Benchmarks != nil {
		out.Benchmarks = make(BenchmarkScores, len(m.Benchmarks))
		for k, v := range m.Benchmarks {
			out.Benchmarks[k] = v
		}
	}
	return out
}

// ModelFilter holds optional filters for listing stored models.
type ModelFilter struct {
	Family   string // exact match on family
	NameLike string // ILIKE filter on name
	Limit    int    // max results (0 = default 1000)
	Offset   int
}
