package scoring

import (
	"strings"

	"github.com/vlmbench/vlmbench/internal/database"
)

// BenchmarkInfo describes a benchmark for display.
type BenchmarkInfo struct {
	Benchmark   database.Benchmark `json:"benchmark"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
}

var benchmarkInfo = map[database.Benchmark]BenchmarkInfo{
	database.MMBenchV11:     {database.MMBenchV11, "MMBench", "General multimodal understanding"},
	database.MMStar:         {database.MMStar, "MMStar", "Challenging multimodal reasoning"},
	database.MMMUVal:        {database.MMMUVal, "MMMU", "College-level multimodal understanding"},
	database.MathVista:      {database.MathVista, "MathVista", "Mathematical reasoning with visuals"},
	database.OCRBench:       {database.OCRBench, "OCRBench", "Text recognition and understanding"},
	database.AI2D:           {database.AI2D, "AI2D", "Diagram understanding"},
	database.HallusionBench: {database.HallusionBench, "HallusionBench", "Hallucination resistance"},
	database.MMVet:          {database.MMVet, "MMVet", "Integrated multimodal capabilities"},
}

// Info returns display metadata for b. Unknown benchmarks echo their key.
func Info(b database.Benchmark) BenchmarkInfo {
	if info, ok := benchmarkInfo[b]; ok {
		return info
	}
	return BenchmarkInfo{Benchmark: b, Name: string(b)}
}

// AllInfo returns metadata for the whole benchmark set in display order.
func AllInfo() []BenchmarkInfo {
	out := make([]BenchmarkInfo, 0, len(database.Benchmarks))
	for _, b := range database.Benchmarks {
		out = append(out, Info(b))
	}
	return out
}

// Preset is a named weight profile.
type Preset struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weights     Weights `json:"weights"`
}

func withOverrides(overrides Weights) Weights {
	w := DefaultWeights()
	for k, v := range overrides {
		w[k] = v
	}
	return w
}

// Presets returns the built-in weight profiles. Each call returns fresh
// vectors the caller may modify.
func Presets() []Preset {
	return []Preset{
		{
			Name:        "Balanced",
			Description: "Equal weight for all benchmarks",
			Weights:     DefaultWeights(),
		},
		{
			Name:        "OCR-Focused",
			Description: "Prioritize text recognition tasks",
			Weights:     withOverrides(Weights{database.OCRBench: 3, database.AI2D: 1.5}),
		},
		{
			Name:        "Math-Focused",
			Description: "Prioritize mathematical reasoning",
			Weights:     withOverrides(Weights{database.MathVista: 3, database.MMMUVal: 1.5}),
		},
		{
			Name:        "Reasoning-Heavy",
			Description: "Emphasize complex reasoning tasks",
			Weights: withOverrides(Weights{
				database.MMStar:         2,
				database.MMMUVal:        2,
				database.MathVista:      2,
				database.HallusionBench: 0.5,
			}),
		},
		{
			Name:        "Reliability-Focused",
			Description: "Prioritize hallucination resistance",
			Weights:     withOverrides(Weights{database.HallusionBench: 3, database.MMVet: 1.5}),
		},
		{
			Name:        "General Chat",
			Description: "Best for general-purpose chat applications",
			Weights: withOverrides(Weights{
				database.MMBenchV11:     2,
				database.MMVet:          2,
				database.HallusionBench: 1.5,
			}),
		},
	}
}

// PresetByName looks up a preset case-insensitively.
func PresetByName(name string) (Preset, bool) {
	for _, p := range Presets() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}
