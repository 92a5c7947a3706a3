// Package geo implements coordinate conversions between WGS84 geographic
// coordinates and Web Mercator (EPSG:3857), plus great-circle distance.
package geo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// EarthMercatorMax is the half-side of the Web Mercator square, in meters.
	EarthMercatorMax = 20037508.34
	// EarthMercatorMin mirrors EarthMercatorMax on the negative side.
	EarthMercatorMin = -EarthMercatorMax
	// EarthSizeMeters is the full side length of the Web Mercator square.
	EarthSizeMeters = EarthMercatorMax - EarthMercatorMin

	// MaxLatitude is the largest latitude representable in Web Mercator.
	MaxLatitude = 85.05112878

	// EarthRadiusM is the mean Earth radius used for haversine distances.
	EarthRadiusM = 6371000.0
)

const (
	lonToXFactor = EarthMercatorMax / 180.0
	yFactor      = EarthMercatorMax / math.Pi
	xToLonFactor = 180.0 / EarthMercatorMax
	yToLatFactor = math.Pi / EarthMercatorMax
)

// ToMercator converts a WGS84 (lat, lon) pair in degrees to Web Mercator
// meters, clamping latitude to ±MaxLatitude first.
func ToMercator(lat, lon float64) r2.Vec {
	if lat > MaxLatitude {
		lat = MaxLatitude
	} else if lat < -MaxLatitude {
		lat = -MaxLatitude
	}
	return ToMercatorUnclamped(lat, lon)
}

// ToMercatorUnclamped converts WGS84 to Web Mercator without clamping
// latitude first. Use only for input already known to be in range.
func ToMercatorUnclamped(lat, lon float64) r2.Vec {
	x := lon * lonToXFactor

	latRad := lat * math.Pi / 180.0
	y := math.Log(math.Tan(latRad)+1.0/math.Cos(latRad)) * yFactor

	return r2.Vec{X: x, Y: y}
}

// ToWGS84 converts a Web Mercator point in meters back to WGS84 degrees,
// returning (lat, lon).
func ToWGS84(p r2.Vec) (lat, lon float64) {
	lon = p.X * xToLonFactor
	lat = (math.Pi/2.0 - 2.0*math.Atan(math.Exp(-p.Y*yToLatFactor))) * 180.0 / math.Pi
	return lat, lon
}

// IsValidMercator reports whether p lies within the Web Mercator square.
func IsValidMercator(p r2.Vec) bool {
	return p.X >= EarthMercatorMin && p.X <= EarthMercatorMax &&
		p.Y >= EarthMercatorMin && p.Y <= EarthMercatorMax
}
