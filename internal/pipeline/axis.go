package pipeline

import "math"

// Axis layout constants shared by renderers.
const (
	YAxisTickInterval = 10
	YAxisPadding      = 5
)

// YAxisUpperBound pads the highest score and rounds up to the padding step.
func YAxisUpperBound(points []ProcessedPoint) float64 {
	highest := 0.0
	for _, p := range points {
		highest = max(highest, p.Y)
	}
	return math.Ceil((highest+YAxisPadding)/YAxisPadding) * YAxisPadding
}

// YAxisTicks returns ticks every YAxisTickInterval from 0, always ending
// at upper.
func YAxisTicks(upper float64) []float64 {
	ticks := make([]float64, 0)
	for tick := 0.0; tick <= upper; tick += YAxisTickInterval {
		ticks = append(ticks, tick)
	}
	if len(ticks) == 0 || ticks[len(ticks)-1] != upper {
		ticks = append(ticks, upper)
	}
	return ticks
}

// SizeDomain returns the bubble size domain over the points' Z values.
// No points yields [0,1]; a single distinct value v yields [0,v], or [0,1]
// when v is 0.
func SizeDomain(points []ProcessedPoint) (lo, hi float64) {
	if len(points) == 0 {
		return 0, 1
	}
	lo, hi = points[0].Z, points[0].Z
	for _, p := range points[1:] {
		lo = min(lo, p.Z)
		hi = max(hi, p.Z)
	}
	if lo == hi {
		if hi == 0 {
			return 0, 1
		}
		return 0, hi
	}
	return lo, hi
}
