package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vlmbench/vlmbench/internal/database"
)

const sample = `{
  "time": "2025-01-30",
  "results": {
    "Qwen2-VL-7B": {
      "META": {"Time": "2024/08/29", "Parameters": "8.3B"},
      "MMBench_TEST_EN_V11": {"Overall": 80.5},
      "MMBench_TEST_CN_V11": {"Overall": 79.5},
      "MMStar": {"Overall": 60.7},
      "MMMU_VAL": {"Overall": 53.7},
      "MathVista": {"Overall": 61.4},
      "OCRBench": {"Final Score": 843},
      "AI2D": {"Overall": 83.0},
      "HallusionBench": {"Overall": 50.4},
      "MMVet": 61.8
    },
    "GPT-4o-mini": {
      "META": {"Time": "20240718"},
      "MMBench_TEST_EN_V11": {"Overall": 76.0},
      "MMStar": {"Overall": 54.8},
      "MMMU_VAL": {"Overall": 60.0},
      "MathVista": {"Overall": 52.4},
      "OCRBench": {"Overall": 785},
      "AI2D": {"Overall": 77.8},
      "HallusionBench": {"Overall": 46.1},
      "MMVet": {"Overall": 66.9}
    },
    "MysteryVLM": {
      "META": {"Release Date": "01/03/2024"},
      "MMBench_TEST_CN_V11": {"Overall": 50},
      "MMStar": 50, "MMMU_VAL": 50, "MathVista": 50, "OCRBench": 500,
      "AI2D": 50, "HallusionBench": 50, "MMVet": 50
    },
    "NoDate-VL": {
      "META": {},
      "MMStar": 50
    },
    "Partial-VL": {
      "META": {"Time": "2024-05-01", "Parameters": 7},
      "MMStar": {"Overall": "N/A"}
    }
  }
}`

func decodeSample(t *testing.T) *Leaderboard {
	t.Helper()
	var lb Leaderboard
	require.NoError(t, json.Unmarshal([]byte(sample), &lb))
	return &lb
}

func TestConvert(t *testing.T) {
	records, report := Convert(decodeSample(t), Options{})

	require.Len(t, records, 3)
	assert.Equal(t, []string{"MysteryVLM", "GPT-4o-mini", "Qwen2-VL-7B"},
		[]string{records[0].Name, records[1].Name, records[2].Name}, "sorted by date")

	qwen := records[2]
	assert.Equal(t, "Qwen", qwen.Family)
	assert.Equal(t, 8.3, qwen.Params)
	assert.False(t, qwen.ParamsEstimated)
	assert.Equal(t, 80.0, qwen.Benchmarks[database.MMBenchV11])
	assert.Equal(t, 84.3, qwen.Benchmarks[database.OCRBench])
	assert.Equal(t, 61.8, qwen.Benchmarks[database.MMVet])
	// (80 + 60.7 + 53.7 + 61.4 + 84.3 + 83 + 50.4 + 61.8) / 8
	assert.Equal(t, 66.9, qwen.Score)
	assert.Equal(t, time.Date(2024, 8, 29, 0, 0, 0, 0, time.UTC), qwen.ReleaseDate)

	gpt := records[1]
	assert.Equal(t, "OpenAI", gpt.Family)
	assert.Equal(t, 50.0, gpt.Params)
	assert.True(t, gpt.ParamsEstimated)
	assert.Equal(t, 76.0, gpt.Benchmarks[database.MMBenchV11], "EN only")

	mystery := records[0]
	assert.Equal(t, OtherFamily, mystery.Family)
	assert.Equal(t, DefaultParams, mystery.Params)
	assert.True(t, mystery.ParamsEstimated)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), mystery.ReleaseDate)

	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 3, report.Converted)
	assert.Equal(t, []string{"MysteryVLM"}, report.Defaulted)
	assert.ElementsMatch(t, []Skip{
		{"NoDate-VL", ReasonNoDate},
		{"Partial-VL", ReasonNoScores},
	}, report.Skipped)

	assert.NoError(t, database.ValidateRecords(records))
}

func TestConvertSkipNoParams(t *testing.T) {
	records, report := Convert(decodeSample(t), Options{SkipNoParams: true})
	assert.Len(t, records, 2)
	assert.Contains(t, report.Skipped, Skip{"MysteryVLM", ReasonNoParams})
	assert.Empty(t, report.Defaulted)
}

func TestClassifyFamily(t *testing.T) {
	tests := map[string]string{
		"Qwen2.5-VL-72B":      "Qwen",
		"qwen-vl-max":         "Qwen",
		"granite-vision-3.2":  "Granite",
		"GPT-4o-20241120":     "OpenAI",
		"gpt-4.1":             "OpenAI",
		"Claude3.5-Sonnet":    "Anthropic",
		"Gemini-2.0-Flash":    "Google",
		"Yi-Vision":           "Yi",
		"InternVL2_5-78B-MPO": "InternVL",
		"Ovis2-34B":           OtherFamily,
	}
	for name, want := range tests {
		assert.Equal(t, want, ClassifyFamily(name), name)
	}
}

func TestEstimateParams(t *testing.T) {
	tests := []struct {
		name string
		want float64
		ok   bool
	}{
		{"GPT-4o-mini-20240718", 50, true},
		{"GPT-4o-20241120", 200, true},
		{"GPT-4.1-nano", 7, true},
		{"Claude3-Opus", 175, true},
		{"Claude3.5-Sonnet-20241022", 100, true},
		{"Gemini-1.5-Pro-002", 60, true},
		{"Gemini-2.0-Flash", 8, true},
		{"grok-2-vision", 314, true},
		{"Qwen2-VL-7B", 0, false},
	}
	for _, tt := range tests {
		got, ok := EstimateParams(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2024/05/31", "2024-05-31", "20240531", "31/05/2024"} {
		got, ok := ParseDate(s)
		assert.True(t, ok, s)
		assert.Equal(t, want, got, s)
	}
	_, ok := ParseDate("May 2024")
	assert.False(t, ok)
	_, ok = ParseDate("")
	assert.False(t, ok)
}

func TestParseParams(t *testing.T) {
	v, ok := parseParams("1.5b")
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)
	_, ok = parseParams("")
	assert.False(t, ok)
	_, ok = parseParams(0.0)
	assert.False(t, ok)
	_, ok = parseParams(nil)
	assert.False(t, ok)
}

func TestCountFamilies(t *testing.T) {
	records := []database.ModelRecord{
		{Family: "Qwen"}, {Family: "Phi"}, {Family: "Qwen"}, {Family: "Another"},
	}
	assert.Equal(t, []FamilyCount{{"Qwen", 2}, {"Another", 1}, {"Phi", 1}}, CountFamilies(records))
}

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/OpenVLM.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sample))
	}))
	defer srv.Close()

	lb, err := NewClient(srv.URL + "/OpenVLM.json").Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-01-30", lb.Time)
	assert.Len(t, lb.Results, 5)

	_, err = NewClient(srv.URL + "/missing.json").Fetch(context.Background())
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestNewClientDefaultURL(t *testing.T) {
	assert.Equal(t, DefaultURL, NewClient("").url)
}
