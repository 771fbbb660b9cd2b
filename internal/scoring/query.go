package scoring

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/vlmbench/vlmbench/internal/database"
)

// QueryPrefix marks weight parameters in a query string, as in w.OCRBench=3.
const QueryPrefix = "w."

// ParseWeights reads weight parameters from q. Unknown benchmarks and
// negative or unparsable values are ignored so the default stays in place.
func ParseWeights(q url.Values) Weights {
	w := DefaultWeights()
	for key, values := range q {
		if !strings.HasPrefix(key, QueryPrefix) || len(values) == 0 {
			continue
		}
		b := database.Benchmark(strings.TrimPrefix(key, QueryPrefix))
		if !database.IsBenchmark(b) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(values[0]), 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		w[b] = v
	}
	return w
}

// Encode writes every non-default weight of w into q and removes stale
// weight parameters.
func (w Weights) Encode(q url.Values) {
	for key := range q {
		if strings.HasPrefix(key, QueryPrefix) {
			q.Del(key)
		}
	}
	for _, b := range database.Benchmarks {
		if v := w.Get(b); v != DefaultWeight {
			q.Set(QueryPrefix+string(b), strconv.FormatFloat(v, 'g', -1, 64))
		}
	}
}
