// Package search implements typo-tolerant matching of a query against
// model names and families.
package search

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	// DefaultThreshold is the accepted edit distance as a fraction of the
	// query length.
	DefaultThreshold = 0.3
	// MinMatchLength is the shortest query matched approximately. Shorter
	// queries only match as case-insensitive substrings.
	MinMatchLength = 2
)

// Matcher scores how well a query occurs anywhere inside a text.
// Scores range from 0 (exact occurrence) to Threshold; lower is better.
type Matcher struct {
	Threshold float64
}

// NewMatcher returns a Matcher. A non-positive threshold selects
// DefaultThreshold.
func NewMatcher(threshold float64) Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Matcher{Threshold: threshold}
}

// Normalize lowercases and trims a query.
func Normalize(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// IsBlank reports whether q has no searchable content.
func IsBlank(q string) bool {
	return strings.TrimSpace(q) == ""
}

// Score matches query against text. ok is false when the best window
// exceeds the threshold.
func (m Matcher) Score(query, text string) (score float64, ok bool) {
	q := Normalize(query)
	t := strings.ToLower(text)
	if q == "" {
		return 0, true
	}
	if strings.Contains(t, q) {
		return 0, true
	}
	qLen := utf8.RuneCountInString(q)
	if qLen < MinMatchLength {
		return 0, false
	}

	allowed := int(m.threshold() * float64(qLen))
	if allowed == 0 {
		return 0, false
	}
	best := bestWindowDistance(q, []rune(t), qLen, allowed)
	if best > allowed {
		return 0, false
	}
	score = float64(best) / float64(qLen)
	return score, score <= m.threshold()
}

// Match returns the best score of query across fields.
func (m Matcher) Match(query string, fields ...string) (score float64, ok bool) {
	for _, f := range fields {
		s, matched := m.Score(query, f)
		if !matched {
			continue
		}
		if !ok || s < score {
			score, ok = s, true
		}
		if score == 0 {
			break
		}
	}
	return score, ok
}

func (m Matcher) threshold() float64 {
	if m.Threshold <= 0 {
		return DefaultThreshold
	}
	return m.Threshold
}

// bestWindowDistance slides windows of length qLen±allowed across text and
// returns the smallest edit distance to q.
func bestWindowDistance(q string, text []rune, qLen, allowed int) int {
	best := allowed + 1
	if len(text) == 0 {
		return best
	}
	minW := qLen - allowed
	if minW < 1 {
		minW = 1
	}
	maxW := qLen + allowed
	for size := minW; size <= maxW; size++ {
		if size > len(text) {
			// The whole text is the only candidate past this size.
			if d := levenshtein.ComputeDistance(q, string(text)); d < best {
				best = d
			}
			break
		}
		for start := 0; start+size <= len(text); start++ {
			d := levenshtein.ComputeDistance(q, string(text[start:start+size]))
			if d < best {
				best = d
				if best == 0 {
					return 0
				}
			}
		}
	}
	return best
}
