// Package leaderboard imports model results from the OpenVLM leaderboard
// into the dataset format.
package leaderboard

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/vlmbench/vlmbench/internal/database"
	"github.com/vlmbench/vlmbench/internal/scoring"
)

// Leaderboard is the published OpenVLM results document.
type Leaderboard struct {
	Time    string           `json:"time"`
	Results map[string]Entry `json:"results"`
}

// Entry holds one model's metadata and raw benchmark results. Values are
// either numbers or objects of sub-scores.
type Entry map[string]json.RawMessage

// Raw result keys.
const (
	metaKey       = "META"
	mmbenchEN     = "MMBench_TEST_EN_V11"
	mmbenchCN     = "MMBench_TEST_CN_V11"
	overallKey    = "Overall"
	finalScoreKey = "Final Score"
)

// OCRBench reports on a 0-1000 scale.
const ocrBenchScale = 10

var (
	dateFields  = []string{"Time", "Publish Date", "Release Date"}
	paramFields = []string{"Parameters", "Params (B)", "Param (B)", "params"}
)

// Options controls conversion.
type Options struct {
	// SkipNoParams drops models with neither metadata nor an estimate
	// instead of assuming DefaultParams.
	SkipNoParams bool
}

// Skip records why a model was left out.
type Skip struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Report summarizes a conversion.
type Report struct {
	Total     int      `json:"total"`
	Converted int      `json:"converted"`
	Skipped   []Skip   `json:"skipped"`
	Defaulted []string `json:"defaulted"`
}

// Skip reasons.
const (
	ReasonNoDate   = "no date"
	ReasonNoParams = "no parameter info"
	ReasonNoScores = "no valid scores"
)

// Convert maps leaderboard results to records sorted by release date, then
// name. Models without a date or without all eight benchmarks are skipped.
func Convert(lb *Leaderboard, opts Options) ([]database.ModelRecord, Report) {
	names := make([]string, 0, len(lb.Results))
	for name := range lb.Results {
		names = append(names, name)
	}
	sort.Strings(names)

	report := Report{Total: len(names), Skipped: []Skip{}, Defaulted: []string{}}
	records := make([]database.ModelRecord, 0, len(names))
	for _, name := range names {
		e := lb.Results[name]
		meta := e.meta()

		date, ok := e.releaseDate(meta)
		if !ok {
			report.Skipped = append(report.Skipped, Skip{name, ReasonNoDate})
			continue
		}

		params, known := e.params(meta)
		estimated := false
		if !known {
			params, known = EstimateParams(name)
			estimated = true
			if !known {
				if opts.SkipNoParams {
					report.Skipped = append(report.Skipped, Skip{name, ReasonNoParams})
					continue
				}
				params = DefaultParams
				report.Defaulted = append(report.Defaulted, name)
			}
		}

		scores, ok := e.benchmarkScores()
		if !ok {
			report.Skipped = append(report.Skipped, Skip{name, ReasonNoScores})
			continue
		}

		records = append(records, database.ModelRecord{
			Name:            name,
			ReleaseDate:     date,
			Score:           averageScore(scores),
			Params:          params,
			ParamsEstimated: estimated,
			Family:          ClassifyFamily(name),
			Benchmarks:      scores,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ReleaseDate.Before(records[j].ReleaseDate)
	})
	report.Converted = len(records)
	return records, report
}

func (e Entry) meta() map[string]any {
	var meta map[string]any
	if raw, ok := e[metaKey]; ok {
		json.Unmarshal(raw, &meta)
	}
	return meta
}

func (e Entry) releaseDate(meta map[string]any) (t time.Time, ok bool) {
	for _, field := range dateFields {
		if s, isStr := meta[field].(string); isStr && s != "" {
			return ParseDate(s)
		}
	}
	return t, false
}

func (e Entry) params(meta map[string]any) (float64, bool) {
	for _, field := range paramFields {
		if p, ok := parseParams(meta[field]); ok {
			return p, true
		}
	}
	return 0, false
}

// result reads a benchmark as a bare number or an object holding one of
// keys.
func (e Entry) result(benchmark string, keys ...string) (float64, bool) {
	raw, ok := e[benchmark]
	if !ok {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0, false
	}
	for _, k := range keys {
		if v, ok := obj[k].(float64); ok {
			return v, true
		}
		if _, present := obj[k]; present {
			return 0, false
		}
	}
	return 0, false
}

// mmbench averages the English and Chinese overall scores, or takes
// whichever is present.
func (e Entry) mmbench() (float64, bool) {
	en, enOK := e.objectOverall(mmbenchEN)
	cn, cnOK := e.objectOverall(mmbenchCN)
	switch {
	case enOK && cnOK:
		return (en + cn) / 2, true
	case enOK:
		return en, true
	case cnOK:
		return cn, true
	}
	return 0, false
}

func (e Entry) objectOverall(key string) (float64, bool) {
	raw, ok := e[key]
	if !ok {
		return 0, false
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0, false
	}
	v, ok := obj[overallKey].(float64)
	return v, ok
}

// benchmarkScores extracts all eight benchmarks rounded to one decimal, or
// reports false when any is missing.
func (e Entry) benchmarkScores() (database.BenchmarkScores, bool) {
	scores := make(database.BenchmarkScores, len(database.Benchmarks))
	for _, b := range database.Benchmarks {
		var (
			v  float64
			ok bool
		)
		switch b {
		case database.MMBenchV11:
			v, ok = e.mmbench()
		case database.OCRBench:
			v, ok = e.result(string(b), overallKey, finalScoreKey)
			v /= ocrBenchScale
		default:
			v, ok = e.result(string(b), overallKey)
		}
		if !ok || math.IsNaN(v) {
			return nil, false
		}
		scores[b] = scoring.Round1(v)
	}
	return scores, true
}

func averageScore(scores database.BenchmarkScores) float64 {
	var sum float64
	for _, v := range scores {
		sum += v
	}
	return scoring.Round1(sum / float64(len(scores)))
}

// FamilyCount is the number of converted models in a family.
type FamilyCount struct {
	Family string `json:"family"`
	Count  int    `json:"count"`
}

// CountFamilies returns per-family totals, largest first, ties by name.
func CountFamilies(records []database.ModelRecord) []FamilyCount {
	counts := make(map[string]int)
	for _, m := range records {
		counts[m.Family]++
	}
	out := make([]FamilyCount, 0, len(counts))
	for f, n := range counts {
		out = append(out, FamilyCount{f, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Family < out[j].Family
	})
	return out
}
