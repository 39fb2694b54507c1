package domain

import "github.com/paulmach/orb"

// Region is one named administrative area in longitude/latitude.
// Regions are loaded once and shared read-only by every panel.
type Region struct {
	Name     string
	Geometry orb.MultiPolygon
}

// Bound returns the region's planar bounding box.
func (r Region) Bound() orb.Bound {
	return r.Geometry.Bound()
}
