// Package geo turns boundary geometry into screen-space region paths.
package geo

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/climate-choropleth/internal/domain"
)

// NameProperty is the feature property holding the region display name.
const NameProperty = "name"

// ParseBoundaries decodes a GeoJSON FeatureCollection into regions.
// Features without a name or with non-areal geometry are skipped; features
// sharing a name are merged into one region.
func ParseBoundaries(data []byte) ([]domain.Region, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, &domain.GeometryError{Reason: fmt.Sprintf("decode feature collection: %v", err)}
	}

	var regions []domain.Region
	index := make(map[string]int)
	for _, f := range fc.Features {
		name := strings.TrimSpace(f.Properties.MustString(NameProperty, ""))
		if name == "" {
			continue
		}

		var mp orb.MultiPolygon
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			mp = orb.MultiPolygon{g}
		case orb.MultiPolygon:
			mp = g
		default:
			continue
		}
		mp = areal(mp)
		if len(mp) == 0 {
			continue
		}

		if i, ok := index[name]; ok {
			regions[i].Geometry = append(regions[i].Geometry, mp...)
			continue
		}
		index[name] = len(regions)
		regions = append(regions, domain.Region{Name: name, Geometry: mp})
	}

	if len(regions) == 0 {
		return nil, &domain.GeometryError{Reason: "feature collection has no named polygon features"}
	}
	return regions, nil
}

// Bounds returns the combined bounding box of all regions.
func Bounds(regions []domain.Region) (orb.Bound, error) {
	if len(regions) == 0 {
		return orb.Bound{}, &domain.GeometryError{Reason: "no regions"}
	}
	var b orb.Bound
	found := false
	for _, r := range regions {
		rb := r.Bound()
		if rb.IsEmpty() {
			continue
		}
		if !found {
			b, found = rb, true
			continue
		}
		b = b.Union(rb)
	}
	if !found {
		return orb.Bound{}, &domain.GeometryError{Reason: "regions have no vertices"}
	}
	if !(b.Max[0] > b.Min[0]) || !(b.Max[1] > b.Min[1]) {
		return orb.Bound{}, &domain.GeometryError{
			Reason: fmt.Sprintf("degenerate bounding box [%g %g %g %g]", b.Min[0], b.Min[1], b.Max[0], b.Max[1]),
		}
	}
	return b, nil
}

// areal keeps the polygons whose outer ring has at least three points.
func areal(mp orb.MultiPolygon) orb.MultiPolygon {
	out := mp[:0:0]
	for _, poly := range mp {
		if len(poly) > 0 && len(poly[0]) >= 3 {
			out = append(out, poly)
		}
	}
	return out
}
