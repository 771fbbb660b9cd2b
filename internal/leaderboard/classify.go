package leaderboard

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vlmbench/vlmbench/internal/database"
)

// OtherFamily is assigned to models no family pattern matches.
const OtherFamily = "Other"

// DefaultParams is the parameter count, in billions, assumed for models
// without metadata or a known estimate.
const DefaultParams = 10.0

type familyPattern struct {
	family string
	re     *regexp.Regexp
}

// Checked in order; the first match wins.
var familyPatterns = []familyPattern{
	{"Qwen", regexp.MustCompile(`(?i)^Qwen`)},
	{"Kimi", regexp.MustCompile(`(?i)^Kimi`)},
	{"SmolVLM", regexp.MustCompile(`(?i)^SmolVLM`)},
	{"CogVLM", regexp.MustCompile(`(?i)^CogVLM`)},
	{"Llama", regexp.MustCompile(`(?i)^Llama`)},
	{"LLaVA", regexp.MustCompile(`(?i)^LLaVA`)},
	{"PaliGemma", regexp.MustCompile(`(?i)^PaliGemma`)},
	{"Mantis", regexp.MustCompile(`(?i)^Mantis`)},
	{"NVLM", regexp.MustCompile(`(?i)^NVLM`)},
	{"GLM", regexp.MustCompile(`(?i)^GLM`)},
	{"Molmo", regexp.MustCompile(`(?i)^Molmo`)},
	{"Yi", regexp.MustCompile(`(?i)^Yi`)},
	{"InternVL", regexp.MustCompile(`(?i)^InternVL`)},
	{"Phi", regexp.MustCompile(`(?i)^Phi`)},
	{"DeepSeek", regexp.MustCompile(`(?i)^DeepSeek`)},
	{"BlueLM", regexp.MustCompile(`(?i)^BlueLM`)},
	{"ShareGPT", regexp.MustCompile(`(?i)^ShareGPT`)},
	{"Pixtral", regexp.MustCompile(`(?i)^Pixtral`)},
	{"Granite", regexp.MustCompile(`(?i)^granite`)},
	{"MiMo", regexp.MustCompile(`(?i)^MiMo`)},
	{"InstructBLIP", regexp.MustCompile(`(?i)^InstructBLIP`)},
	{"OpenAI", regexp.MustCompile(`(?i)^GPT`)},
	{"Anthropic", regexp.MustCompile(`(?i)^Claude`)},
	{"Google", regexp.MustCompile(`(?i)^Gemini`)},
}

// ClassifyFamily derives a model family from its name.
func ClassifyFamily(name string) string {
	for _, p := range familyPatterns {
		if p.re.MatchString(name) {
			return p.family
		}
	}
	return OtherFamily
}

type paramEstimate struct {
	re     *regexp.Regexp
	params float64
}

// Public estimates for closed models. More specific patterns come first.
var paramEstimates = []paramEstimate{
	{regexp.MustCompile(`(?i)^ChatGPT-4o`), 200},
	{regexp.MustCompile(`(?i)^GPT-5.*nano`), 7},
	{regexp.MustCompile(`(?i)^GPT-5.*mini`), 50},
	{regexp.MustCompile(`(?i)^GPT-5`), 300},
	{regexp.MustCompile(`(?i)^GPT-4\.5`), 250},
	{regexp.MustCompile(`(?i)^GPT-4\.1.*nano`), 7},
	{regexp.MustCompile(`(?i)^GPT-4\.1.*mini`), 50},
	{regexp.MustCompile(`(?i)^GPT-4\.1`), 220},
	{regexp.MustCompile(`(?i)^GPT-4o.*mini`), 50},
	{regexp.MustCompile(`(?i)^GPT-4o`), 200},
	{regexp.MustCompile(`(?i)^GPT-4v`), 220},
	{regexp.MustCompile(`(?i)^GPT-4`), 220},

	{regexp.MustCompile(`(?i)^Claude3\.7`), 120},
	{regexp.MustCompile(`(?i)^Claude3\.5`), 100},
	{regexp.MustCompile(`(?i)^Claude3.*Haiku`), 40},
	{regexp.MustCompile(`(?i)^Claude3.*Sonnet`), 100},
	{regexp.MustCompile(`(?i)^Claude3.*Opus`), 175},
	{regexp.MustCompile(`(?i)^Claude3`), 80},
	{regexp.MustCompile(`(?i)^Claude2`), 52},

	{regexp.MustCompile(`(?i)^Gemini.*Nano`), 3},
	{regexp.MustCompile(`(?i)^Gemini.*Flash`), 8},
	{regexp.MustCompile(`(?i)^Gemini.*2\.5`), 70},
	{regexp.MustCompile(`(?i)^Gemini.*2\.0`), 70},
	{regexp.MustCompile(`(?i)^Gemini.*1\.5.*Pro`), 60},
	{regexp.MustCompile(`(?i)^Gemini.*1\.5`), 60},
	{regexp.MustCompile(`(?i)^Gemini.*1\.0`), 50},

	{regexp.MustCompile(`(?i)^GLM-4v`), 13},
	{regexp.MustCompile(`(?i)^Qwen-VL`), 72},
	{regexp.MustCompile(`(?i)^Yi-Vision`), 34},
	{regexp.MustCompile(`(?i)^Step-1\.5V`), 30},
	{regexp.MustCompile(`(?i)^Step-1o`), 30},
	{regexp.MustCompile(`(?i)^HunYuan`), 52},
	{regexp.MustCompile(`(?i)^SenseNova`), 40},
	{regexp.MustCompile(`(?i)^moonshot`), 8},
	{regexp.MustCompile(`(?i)^CongRong`), 14},
	{regexp.MustCompile(`(?i)^TeleMM`), 8},
	{regexp.MustCompile(`(?i)^Taiyi`), 7},
	{regexp.MustCompile(`(?i)^JT-VL`), 7},
	{regexp.MustCompile(`(?i)^abab6`), 70},
	{regexp.MustCompile(`(?i)^abab7`), 100},

	{regexp.MustCompile(`(?i)^Reka.*Flash`), 21},
	{regexp.MustCompile(`(?i)^Reka.*Edge`), 7},
	{regexp.MustCompile(`(?i)^grok-2`), 314},
}

// EstimateParams returns a parameter estimate for name.
func EstimateParams(name string) (float64, bool) {
	for _, e := range paramEstimates {
		if e.re.MatchString(name) {
			return e.params, true
		}
	}
	return 0, false
}

// dateLayouts are tried in order.
var dateLayouts = []string{"2006/01/02", database.DateLayout, "20060102", "02/01/2006"}

// ParseDate reads a release date in any of the leaderboard's layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseParams reads values such as 7, "7B" or "1.5b". Zero counts as
// missing.
func parseParams(v any) (float64, bool) {
	switch p := v.(type) {
	case float64:
		return p, p != 0
	case string:
		p = strings.TrimSpace(strings.NewReplacer("B", "", "b", "").Replace(p))
		if p == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(p, 64)
		return f, err == nil
	}
	return 0, false
}
