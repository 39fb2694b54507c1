package scale

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// NoDataColor fills regions without a value for the selected year.
const NoDataColor = "#cccccc"

// named holds the CSS color keywords used by the metric color stops.
var named = map[string]string{
	"black":       "#000000",
	"blue":        "#0000ff",
	"darkblue":    "#00008b",
	"gray":        "#808080",
	"green":       "#008000",
	"lightblue":   "#add8e6",
	"lightgray":   "#d3d3d3",
	"lightyellow": "#ffffe0",
	"orange":      "#ffa500",
	"red":         "#ff0000",
	"white":       "#ffffff",
	"yellow":      "#ffff00",
}

// Named resolves a CSS color keyword or a #rrggbb hex string.
func Named(name string) (colorful.Color, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if hex, ok := named[key]; ok {
		key = hex
	}
	c, err := colorful.Hex(key)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("unknown color %q: %w", name, err)
	}
	return c, nil
}

// Stops resolves an ordered list of color names.
func Stops(names []string) ([]colorful.Color, error) {
	out := make([]colorful.Color, len(names))
	for i, n := range names {
		c, err := Named(n)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// interpolate blends piecewise across evenly spaced stops in RGB space.
// t is clamped to [0, 1].
func interpolate(stops []colorful.Color, t float64) colorful.Color {
	last := len(stops) - 1
	switch {
	case math.IsNaN(t) || t <= 0:
		return stops[0]
	case t >= 1:
		return stops[last]
	}
	pos := t * float64(last)
	i := int(pos)
	if i >= last {
		i = last - 1
	}
	return stops[i].BlendRgb(stops[i+1], pos-float64(i)).Clamped()
}
