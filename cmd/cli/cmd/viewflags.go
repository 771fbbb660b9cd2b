package cmd

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vlmbench/vlmbench/internal/database"
	"github.com/vlmbench/vlmbench/internal/pipeline"
	"github.com/vlmbench/vlmbench/internal/scoring"
	"github.com/vlmbench/vlmbench/internal/viewstate"
)

// viewFlags are the selection flags shared by commands that read the
// visible point set.
type viewFlags struct {
	families  []string
	search    string
	compare   []string
	preset    string
	weights   map[string]string
	scoreMin  string
	scoreMax  string
	dateMin   string
	dateMax   string
	paramsMin string
	paramsMax string
}

func (v *viewFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceVar(&v.families, "families", nil, "Families to include (default: all)")
	f.StringVar(&v.search, "search", "", "Fuzzy search over model names and families")
	f.StringVar(&v.preset, "preset", "", "Weight preset (see 'vlmbench presets')")
	f.StringToStringVar(&v.weights, "weight", nil, "Benchmark weight overrides, e.g. --weight OCRBench=2,MathVista=1.5")
	f.StringVar(&v.scoreMin, "score-min", "", "Minimum effective score")
	f.StringVar(&v.scoreMax, "score-max", "", "Maximum effective score")
	f.StringVar(&v.dateMin, "date-min", "", "Earliest release date (YYYY-MM-DD)")
	f.StringVar(&v.dateMax, "date-max", "", "Latest release date (YYYY-MM-DD)")
	f.StringVar(&v.paramsMin, "params-min", "", "Minimum parameters in billions")
	f.StringVar(&v.paramsMax, "params-max", "", "Maximum parameters in billions")
}

func (v *viewFlags) reset() {
	*v = viewFlags{}
}

// query encodes the flags as API query parameters.
func (v *viewFlags) query() (url.Values, error) {
	q := viewstate.Encode(viewstate.ViewState{
		Families: v.families,
		Search:   v.search,
		Compare:  v.compare,
	})
	if v.preset != "" {
		if _, ok := scoring.PresetByName(v.preset); !ok {
			return nil, fmt.Errorf("unknown preset %q", v.preset)
		}
		q.Set("preset", v.preset)
	}
	for name, raw := range v.weights {
		b := database.Benchmark(name)
		if !database.IsBenchmark(b) {
			return nil, fmt.Errorf("unknown benchmark %q", name)
		}
		w, err := strconv.ParseFloat(raw, 64)
		if err != nil || w < 0 {
			return nil, fmt.Errorf("invalid weight %s=%s", name, raw)
		}
		q.Set(scoring.QueryPrefix+name, raw)
	}
	bounds := map[string]string{
		pipeline.ParamScoreMin:  v.scoreMin,
		pipeline.ParamScoreMax:  v.scoreMax,
		pipeline.ParamDateMin:   v.dateMin,
		pipeline.ParamDateMax:   v.dateMax,
		pipeline.ParamParamsMin: v.paramsMin,
		pipeline.ParamParamsMax: v.paramsMax,
	}
	for key, val := range bounds {
		if val = strings.TrimSpace(val); val != "" {
			q.Set(key, val)
		}
	}
	return q, nil
}
