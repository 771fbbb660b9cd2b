package database

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidBenchmarks is returned when a record's benchmark keys do not
// match the closed benchmark set.
var ErrInvalidBenchmarks = errors.New("benchmark set mismatch")

// ValidateRecord checks that a record carries every benchmark of the closed
// set, no unknown benchmark, scores in [0,100] and non-negative params.
// Records without any benchmark scores are legacy entries and only need a
// valid aggregate score.
func ValidateRecord(m ModelRecord) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("record has empty name")
	}
	if m.Params < 0 {
		return fmt.Errorf("%s: negative params %v", m.Name, m.Params)
	}
	if len(m.Benchmarks) == 0 {
		if m.Score < 0 || m.Score > 100 {
			return fmt.Errorf("%s: score %v out of range", m.Name, m.Score)
		}
		return nil
	}

	var missing, unknown []string
	for _, b := range Benchmarks {
		if _, ok := m.Benchmarks[b]; !ok {
			missing = append(missing, string(b))
		}
	}
	for b, v := range m.Benchmarks {
		if !IsBenchmark(b) {
			unknown = append(unknown, string(b))
			continue
		}
		if v < 0 || v > 100 {
			return fmt.Errorf("%s: %s score %v out of range", m.Name, b, v)
		}
	}
	if len(missing) > 0 || len(unknown) > 0 {
		return fmt.Errorf("%s: %w (missing %v, unknown %v)", m.Name, ErrInvalidBenchmarks, missing, unknown)
	}
	return nil
}

// ValidateRecords validates every record and joins all failures.
func ValidateRecords(records []ModelRecord) error {
	var errs []error
	for _, m := range records {
		if err := ValidateRecord(m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
