package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/climate-choropleth/internal/domain"
)

// FitMargin is the share of the viewport the fitted geometry may occupy.
const FitMargin = 0.95

// ProjectionParams fully determine the geographic-to-pixel transform.
type ProjectionParams struct {
	Center    [2]float64 `json:"center"`    // lon, lat after rotation
	Rotation  [3]float64 `json:"rotation"`  // degrees; only the longitude component is applied
	Parallels [2]float64 `json:"parallels"` // standard parallels, degrees
	Scale     float64    `json:"scale"`
	Translate [2]float64 `json:"translate"` // pixel position of the center
}

// Projector applies an Albers conic equal-area projection. It is a pure
// function of its params.
type Projector struct {
	params ProjectionParams
	raw    conicEqualArea
	cx, cy float64 // raw projection of the center
}

// NewProjector prepares a projector for params.
func NewProjector(params ProjectionParams) *Projector {
	raw := newConicEqualArea(radians(params.Parallels[0]), radians(params.Parallels[1]))
	cx, cy := raw.project(radians(params.Center[0]), radians(params.Center[1]))
	return &Projector{params: params, raw: raw, cx: cx, cy: cy}
}

// Params returns the projection parameters.
func (p *Projector) Params() ProjectionParams { return p.params }

// Point projects a longitude/latitude pair to pixel coordinates, y down.
func (p *Projector) Point(lon, lat float64) (x, y float64) {
	rx, ry := p.raw.project(radians(rotateLon(lon, p.params.Rotation[0])), radians(lat))
	return p.params.Translate[0] + p.params.Scale*(rx-p.cx),
		p.params.Translate[1] - p.params.Scale*(ry-p.cy)
}

// Fit derives projection params that center the regions in a
// width×height viewport. The pixel extent of the geometry is not known
// before projecting, so it projects once at unit scale, measures the
// resulting box and derives the final scale from it.
func Fit(regions []domain.Region, width, height int) (ProjectionParams, error) {
	if width <= 0 || height <= 0 {
		return ProjectionParams{}, &domain.GeometryError{Reason: fmt.Sprintf("invalid viewport %dx%d", width, height)}
	}
	b, err := Bounds(regions)
	if err != nil {
		return ProjectionParams{}, err
	}

	centerLon := (b.Min[0] + b.Max[0]) / 2
	centerLat := (b.Min[1] + b.Max[1]) / 2
	params := ProjectionParams{
		Center:    [2]float64{0, centerLat},
		Rotation:  [3]float64{-centerLon, 0, 0},
		Parallels: [2]float64{b.Min[1], b.Max[1]},
		Scale:     1,
	}

	box := measure(NewProjector(params), regions)
	bw, bh := box.Max[0]-box.Min[0], box.Max[1]-box.Min[1]
	if !(bw > 0) || !(bh > 0) || math.IsInf(bw, 0) || math.IsInf(bh, 0) {
		return ProjectionParams{}, &domain.GeometryError{Reason: fmt.Sprintf("degenerate projected extent %gx%g", bw, bh)}
	}

	k := FitMargin * math.Min(float64(width)/bw, float64(height)/bh)
	params.Scale = k
	params.Translate = [2]float64{
		float64(width)/2 - k*(box.Min[0]+box.Max[0])/2,
		float64(height)/2 - k*(box.Min[1]+box.Max[1])/2,
	}
	return params, nil
}

// measure returns the pixel bounding box of every vertex.
func measure(p *Projector, regions []domain.Region) orb.Bound {
	box := orb.Bound{
		Min: orb.Point{math.Inf(1), math.Inf(1)},
		Max: orb.Point{math.Inf(-1), math.Inf(-1)},
	}
	for _, r := range regions {
		for _, poly := range r.Geometry {
			for _, ring := range poly {
				for _, pt := range ring {
					x, y := p.Point(pt[0], pt[1])
					box.Min[0] = math.Min(box.Min[0], x)
					box.Min[1] = math.Min(box.Min[1], y)
					box.Max[0] = math.Max(box.Max[0], x)
					box.Max[1] = math.Max(box.Max[1], y)
				}
			}
		}
	}
	return box
}

// Project renders a region as SVG path data. Each ring becomes one closed
// subpath; coordinates are fixed to two decimals.
func (p *Projector) Project(r domain.Region) string {
	var sb strings.Builder
	buf := make([]byte, 0, 16)
	for _, poly := range r.Geometry {
		for _, ring := range poly {
			pts := ring
			if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
				pts = pts[:len(pts)-1]
			}
			if len(pts) < 3 {
				continue
			}
			for i, pt := range pts {
				if i == 0 {
					sb.WriteByte('M')
				} else {
					sb.WriteByte('L')
				}
				x, y := p.Point(pt[0], pt[1])
				buf = strconv.AppendFloat(buf[:0], x, 'f', 2, 64)
				sb.Write(buf)
				sb.WriteByte(',')
				buf = strconv.AppendFloat(buf[:0], y, 'f', 2, 64)
				sb.Write(buf)
			}
			sb.WriteByte('Z')
		}
	}
	return sb.String()
}
