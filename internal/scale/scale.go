// Package scale maps metric values to legend pixels and fill colors.
package scale

import (
	"errors"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RangeScale is a bidirectional linear value↔pixel mapping plus a
// value→color mapping over the same domain.
type RangeScale struct {
	min, max float64
	width    int
	stops    []colorful.Color
}

// Build creates a scale over [min, max] for a legend of width pixels.
// min == max is allowed; every value then maps to the middle pixel and the
// middle color.
func Build(min, max float64, width int, stops []colorful.Color) (*RangeScale, error) {
	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return nil, errors.New("scale domain must be finite")
	}
	if min > max {
		return nil, fmt.Errorf("scale domain inverted: min %g > max %g", min, max)
	}
	if width <= 0 {
		return nil, fmt.Errorf("scale width must be positive, got %d", width)
	}
	if len(stops) < 2 {
		return nil, fmt.Errorf("scale needs at least two color stops, got %d", len(stops))
	}
	s := &RangeScale{min: min, max: max, width: width, stops: make([]colorful.Color, len(stops))}
	copy(s.stops, stops)
	return s, nil
}

// Domain returns the value bounds.
func (s *RangeScale) Domain() (min, max float64) { return s.min, s.max }

// Width returns the legend width in pixels.
func (s *RangeScale) Width() int { return s.width }

func (s *RangeScale) degenerate() bool { return s.min == s.max }

// ValueToPixel maps a value to a legend x position. Values outside the
// domain extrapolate linearly.
func (s *RangeScale) ValueToPixel(v float64) float64 {
	if s.degenerate() {
		return float64(s.width) / 2
	}
	t := (v - s.min) / (s.max - s.min)
	return float64(s.width) * t
}

// PixelToValue maps a legend x position back to a value. Positions outside
// [0, width] extrapolate linearly.
func (s *RangeScale) PixelToValue(p float64) float64 {
	t := p / float64(s.width)
	return s.min*(1-t) + s.max*t
}

// ColorFor returns the fill color for v.
func (s *RangeScale) ColorFor(v float64) colorful.Color {
	t := 0.5
	if !s.degenerate() {
		t = (v - s.min) / (s.max - s.min)
	}
	return interpolate(s.stops, t)
}

// HexFor is ColorFor in #rrggbb form.
func (s *RangeScale) HexFor(v float64) string {
	return s.ColorFor(v).Hex()
}
