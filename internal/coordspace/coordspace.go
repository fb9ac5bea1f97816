// Package coordspace converts between the geodetic reference (WGS84), the
// only frame that is ever stored or scored, and the regional shifted
// reference (GCJ-02) that some tile vendors require for display. Frame
// selection and conversion are a rendering-boundary concern; engine and
// store code never see shifted coordinates.
package coordspace

import (
	"math"

	"github.com/getupyang/geo-guess-diy/internal/model"
)

// Frame identifies a coordinate reference for a render context.
type Frame int

const (
	// Geodetic is plain WGS84.
	Geodetic Frame = iota
	// RegionalShifted is the GCJ-02 reference required by mainland tile
	// vendors. The shift is the identity outside the defined region.
	RegionalShifted
)

func (f Frame) String() string {
	switch f {
	case Geodetic:
		return "geodetic"
	case RegionalShifted:
		return "regional-shifted"
	default:
		return "unknown"
	}
}

// Coefficients of the published GCJ-02 obfuscation. Vendor-defined
// constants; do not re-derive.
const (
	semiMajorAxis = 6378245.0
	eccSquared    = 0.00669342162296594323
)

// Bounding region inside which the shift applies. Matches the published
// algorithm's out-of-China test.
const (
	regionLatMin = 0.8293
	regionLatMax = 55.8271
	regionLngMin = 72.004
	regionLngMax = 137.8347
)

// InRegion reports whether the shift applies at p.
func InRegion(p model.GeoPoint) bool {
	return p.Lat >= regionLatMin && p.Lat <= regionLatMax &&
		p.Lng >= regionLngMin && p.Lng <= regionLngMax
}

// PickFrame returns the frame a view centered at p should render in.
// Callers re-evaluate it when the viewport's effective center crosses the
// region boundary.
func PickFrame(p model.GeoPoint) Frame {
	if InRegion(p) {
		return RegionalShifted
	}
	return Geodetic
}

// ToDisplay converts a stored geodetic point into the given display frame.
func ToDisplay(p model.GeoPoint, frame Frame) model.GeoPoint {
	if frame != RegionalShifted || !InRegion(p) {
		return p
	}
	dLat, dLng := shiftDelta(p)
	return model.GeoPoint{Lat: p.Lat + dLat, Lng: p.Lng + dLng}
}

// ToGeodetic converts a display-frame point (for example a map click) back
// to the geodetic frame. The shifted transform has no closed-form inverse,
// so this iterates the forward transform to convergence.
func ToGeodetic(p model.GeoPoint, frame Frame) model.GeoPoint {
	if frame != RegionalShifted || !InRegion(p) {
		return p
	}
	const (
		maxIterations = 10
		epsilon       = 1e-9
	)
	guess := p
	for i := 0; i < maxIterations; i++ {
		fwd := ToDisplay(guess, RegionalShifted)
		dLat := fwd.Lat - p.Lat
		dLng := fwd.Lng - p.Lng
		guess.Lat -= dLat
		guess.Lng -= dLng
		if math.Abs(dLat) < epsilon && math.Abs(dLng) < epsilon {
			break
		}
	}
	return guess
}

// shiftDelta computes the GCJ-02 offset at a geodetic point inside the
// region. Correction terms are keyed off offsets from the (105E, 35N)
// reference point, per the published algorithm.
func shiftDelta(p model.GeoPoint) (dLat, dLng float64) {
	x := p.Lng - 105.0
	y := p.Lat - 35.0
	dLat = transformLat(x, y)
	dLng = transformLng(x, y)

	radLat := p.Lat / 180.0 * math.Pi
	magic := math.Sin(radLat)
	magic = 1 - eccSquared*magic*magic
	sqrtMagic := math.Sqrt(magic)

	dLat = (dLat * 180.0) / ((semiMajorAxis * (1 - eccSquared)) / (magic * sqrtMagic) * math.Pi)
	dLng = (dLng * 180.0) / (semiMajorAxis / sqrtMagic * math.Cos(radLat) * math.Pi)
	return dLat, dLng
}

func transformLat(x, y float64) float64 {
	ret := -100.0 + 2.0*x + 3.0*y + 0.2*y*y + 0.1*x*y + 0.2*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(y*math.Pi) + 40.0*math.Sin(y/3.0*math.Pi)) * 2.0 / 3.0
	ret += (160.0*math.Sin(y/12.0*math.Pi) + 320.0*math.Sin(y*math.Pi/30.0)) * 2.0 / 3.0
	return ret
}

func transformLng(x, y float64) float64 {
	ret := 300.0 + x + 2.0*y + 0.1*x*x + 0.1*x*y + 0.1*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(x*math.Pi) + 40.0*math.Sin(x/3.0*math.Pi)) * 2.0 / 3.0
	ret += (150.0*math.Sin(x/12.0*math.Pi) + 300.0*math.Sin(x/30.0*math.Pi)) * 2.0 / 3.0
	return ret
}
