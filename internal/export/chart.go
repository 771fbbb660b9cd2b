package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/vlmbench/vlmbench/internal/pipeline"
)

// ErrNoPoints is returned when a chart would have nothing to plot.
var ErrNoPoints = errors.New("no points to plot")

// FamilyColors maps each known family to its bubble color.
var FamilyColors = map[string]string{
	"Qwen":         "#8884d8",
	"Kimi":         "#82ca9d",
	"SmolVLM":      "#ffc658",
	"CogVLM":       "#ff8042",
	"Llama":        "#a4de6c",
	"LLaVA":        "#d0ed57",
	"InternVL":     "#8dd1e1",
	"Phi":          "#83a6ed",
	"DeepSeek":     "#8884d8",
	"BlueLM":       "#ea5545",
	"OpenAI":       "#f46a9b",
	"Anthropic":    "#ef9b20",
	"Google":       "#4285f4",
	"Granite":      "#ede15b",
	"PaliGemma":    "#95e1d3",
	"NVLM":         "#38ada9",
	"GLM":          "#ee5a6f",
	"Molmo":        "#c7ecee",
	"ShareGPT":     "#786fa6",
	"Pixtral":      "#f8a5c2",
	"MiMo":         "#63cdda",
	"InstructBLIP": "#cf6a87",
	"Mantis":       "#b8e994",
	"Yi":           "#e55039",
	"Other":        "#999999",
}

// FallbackColor is used for families without an entry in FamilyColors.
const FallbackColor = "#999999"

// ColorFor returns the hex color of family.
func ColorFor(family string) string {
	if c, ok := FamilyColors[family]; ok {
		return c
	}
	return FallbackColor
}

// Bubble areas in square pixels.
const (
	MinBubbleArea = 200
	MaxBubbleArea = 1200
)

// ChartOptions controls chart rendering.
type ChartOptions struct {
	Title  string
	Width  int
	Height int
}

func (o ChartOptions) withDefaults() ChartOptions {
	if o.Width <= 0 {
		o.Width = 1200
	}
	if o.Height <= 0 {
		o.Height = 700
	}
	return o
}

// bubbleRadius maps a size value onto a radius whose area is linear in z
// between MinBubbleArea and MaxBubbleArea.
func bubbleRadius(z, lo, hi float64) float64 {
	t := 0.0
	if hi > lo {
		t = (z - lo) / (hi - lo)
	}
	t = math.Max(0, math.Min(1, t))
	area := MinBubbleArea + t*(MaxBubbleArea-MinBubbleArea)
	return math.Sqrt(area / math.Pi)
}

// BuildChart lays out a bubble chart with one series per family, in
// first-seen order. X is the release date, Y the effective score and the
// bubble area the parameter count.
func BuildChart(points []pipeline.ProcessedPoint, opts ChartOptions) (chart.Chart, error) {
	if len(points) == 0 {
		return chart.Chart{}, ErrNoPoints
	}
	opts = opts.withDefaults()

	lo, hi := pipeline.SizeDomain(points)
	upper := pipeline.YAxisUpperBound(points)

	type group struct {
		xs, ys, zs []float64
	}
	var order []string
	groups := make(map[string]*group)
	minX, maxX := math.MaxFloat64, -math.MaxFloat64
	for _, p := range points {
		g, ok := groups[p.Family]
		if !ok {
			g = &group{}
			groups[p.Family] = g
			order = append(order, p.Family)
		}
		x := float64(p.X)
		g.xs = append(g.xs, x)
		g.ys = append(g.ys, p.Y)
		g.zs = append(g.zs, p.Z)
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
	}

	// Pad the time axis so edge bubbles are not clipped and a single date
	// still has a non-zero range.
	pad := float64((30 * 24 * time.Hour).Milliseconds())

	series := make([]chart.Series, 0, len(order))
	for _, family := range order {
		g := groups[family]
		color := drawing.ColorFromHex(trimHash(ColorFor(family))).WithAlpha(200)
		zs := g.zs
		series = append(series, chart.ContinuousSeries{
			Name:    family,
			XValues: g.xs,
			YValues: g.ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotColor:    color,
				DotWidth:    bubbleRadius(lo, lo, hi),
				DotWidthProvider: func(_, _ chart.Range, index int, _, _ float64) float64 {
					return bubbleRadius(zs[index], lo, hi)
				},
			},
		})
	}

	yTicks := make([]chart.Tick, 0)
	for _, v := range pipeline.YAxisTicks(upper) {
		yTicks = append(yTicks, chart.Tick{Value: v, Label: fmt.Sprintf("%.0f", v)})
	}

	c := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  "Release Date",
			Range: &chart.ContinuousRange{Min: minX - pad, Max: maxX + pad},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return time.UnixMilli(int64(f)).UTC().Format("2006-01")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Name:  "Benchmark Score",
			Range: &chart.ContinuousRange{Min: 0, Max: upper},
			Ticks: yTicks,
		},
		Series: series,
	}
	c.Elements = []chart.Renderable{chart.LegendThin(&c)}
	return c, nil
}

func trimHash(hex string) string {
	if len(hex) > 0 && hex[0] == '#' {
		return hex[1:]
	}
	return hex
}

// RenderChart writes points as a PNG or SVG bubble chart.
func RenderChart(w io.Writer, f Format, points []pipeline.ProcessedPoint, opts ChartOptions) error {
	c, err := BuildChart(points, opts)
	if err != nil {
		return err
	}
	var rp chart.RendererProvider
	switch f {
	case FormatPNG:
		rp = chart.PNG
	case FormatSVG:
		rp = chart.SVG
	default:
		return fmt.Errorf("chart format %q not supported", f)
	}
	if err := c.Render(rp, w); err != nil {
		return fmt.Errorf("render %s chart: %w", f, err)
	}
	return nil
}

// Write renders points in format f.
func Write(w io.Writer, f Format, points []pipeline.ProcessedPoint, opts ChartOptions) error {
	if f == FormatCSV {
		return WriteCSV(w, points)
	}
	return RenderChart(w, f, points, opts)
}
