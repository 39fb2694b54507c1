package scale

// Legend geometry shared with the SVG renderer.
const (
	LegendHeight   = 60
	SwatchY        = 20
	SwatchHeight   = 20
	AxisY          = 40
	TickSize       = 5
	LegendTicks    = 10
	MarkerHeight   = 20
	MarkerHalfBase = 10
)

// Swatch is one legend color column.
type Swatch struct {
	X     float64 `json:"x"`
	Width float64 `json:"width"`
	Color string  `json:"color"`
}

// Tick is one labeled axis position.
type Tick struct {
	Value float64 `json:"value"`
	X     float64 `json:"x"`
	Label string  `json:"label"`
}

// Legend is the color bar plus bottom axis for one scale.
type Legend struct {
	Width    int      `json:"width"`
	Min      float64  `json:"min"`
	Max      float64  `json:"max"`
	Swatches []Swatch `json:"swatches"`
	Ticks    []Tick   `json:"ticks"`
}

// Legend renders one swatch per pixel column colored by
// ColorFor(PixelToValue(col)), and about ten ticks positioned by
// ValueToPixel.
func (s *RangeScale) Legend() Legend {
	lg := Legend{
		Width:    s.width,
		Min:      s.min,
		Max:      s.max,
		Swatches: make([]Swatch, s.width),
	}
	for col := 0; col < s.width; col++ {
		lg.Swatches[col] = Swatch{
			X:     float64(col),
			Width: 1,
			Color: s.HexFor(s.PixelToValue(float64(col))),
		}
	}

	step := TickStep(s.min, s.max, LegendTicks)
	values := Ticks(s.min, s.max, LegendTicks)
	lg.Ticks = make([]Tick, len(values))
	for i, v := range values {
		lg.Ticks[i] = Tick{Value: v, X: s.ValueToPixel(v), Label: formatTick(v, step)}
	}
	return lg
}

// Point is a pixel coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Marker returns the three vertices of the legend indicator triangle for v:
// the tip points down into the swatch band, the base sits on the legend top.
func (s *RangeScale) Marker(v float64) [3]Point {
	p := s.ValueToPixel(v)
	return [3]Point{
		{X: p, Y: MarkerHeight},
		{X: p + MarkerHalfBase, Y: 0},
		{X: p - MarkerHalfBase, Y: 0},
	}
}
