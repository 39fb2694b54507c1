package geo

import "math"

const epsilon = 1e-6

// conicEqualArea is the raw Albers projection for two standard parallels,
// in radians. Nearly symmetric parallels about the equator fall back to the
// cylindrical equal-area form.
type conicEqualArea struct {
	n, c, r0    float64
	cylindrical bool
	cosPhi0     float64
}

func newConicEqualArea(phi0, phi1 float64) conicEqualArea {
	sy0 := math.Sin(phi0)
	n := (sy0 + math.Sin(phi1)) / 2
	if math.Abs(n) < epsilon {
		return conicEqualArea{cylindrical: true, cosPhi0: math.Cos(phi0)}
	}
	c := 1 + sy0*(2*n-sy0)
	return conicEqualArea{n: n, c: c, r0: math.Sqrt(c) / n}
}

func (p conicEqualArea) project(lambda, phi float64) (x, y float64) {
	if p.cylindrical {
		return lambda * p.cosPhi0, math.Sin(phi) / p.cosPhi0
	}
	r := math.Sqrt(math.Max(0, p.c-2*p.n*math.Sin(phi))) / p.n
	a := lambda * p.n
	return r * math.Sin(a), p.r0 - r*math.Cos(a)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// rotateLon shifts a longitude by delta degrees and wraps it to [-180, 180].
func rotateLon(lon, delta float64) float64 {
	l := lon + delta
	if l > 180 || l < -180 {
		l = math.Mod(l+180, 360)
		if l < 0 {
			l += 360
		}
		l -= 180
	}
	return l
}
