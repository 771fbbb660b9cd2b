// Package export renders the visible points as CSV and bubble charts and
// publishes the results.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/vlmbench/vlmbench/internal/database"
	"github.com/vlmbench/vlmbench/internal/pipeline"
)

// CSVHeaders are the column headers of a CSV export.
var CSVHeaders = []string{"Model Name", "Family", "Benchmark Score", "Parameters (B)", "Release Date"}

// Format is an export file format.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatPNG:
		return "image/png"
	case FormatSVG:
		return "image/svg+xml"
	}
	return "application/octet-stream"
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatPNG, FormatSVG:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, png or svg)", s)
}

// Filename returns the download name for an export created at t, as in
// vlm-chart-2025-01-31.png.
func Filename(prefix string, f Format, t time.Time) string {
	return fmt.Sprintf("%s-%s.%s", prefix, t.UTC().Format(database.DateLayout), f)
}

// WriteCSV writes one row per point using its effective score. An empty
// slice writes only the header.
func WriteCSV(w io.Writer, points []pipeline.ProcessedPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeaders); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range points {
		row := []string{
			p.Name,
			p.Family,
			strconv.FormatFloat(p.EffectiveScore, 'f', -1, 64),
			strconv.FormatFloat(p.Params, 'f', -1, 64),
			p.ReleaseDate.UTC().Format(database.DateLayout),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", p.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
