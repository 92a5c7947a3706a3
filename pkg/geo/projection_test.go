package geo

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestRoundTrip(t *testing.T) {
	cases := []struct{ lat, lon float64 }{
		{0, 0},
		{51.5074, -0.1278},
		{-33.8688, 151.2093},
		{84.9, 179.9},
		{-84.9, -179.9},
	}
	for _, c := range cases {
		p := ToMercator(c.lat, c.lon)
		lat, lon := ToWGS84(p)
		if math.Abs(lat-c.lat) > 1e-4 {
			t.Errorf("lat round-trip: got %v want %v", lat, c.lat)
		}
		if math.Abs(lon-c.lon) > 1e-4 {
			t.Errorf("lon round-trip: got %v want %v", lon, c.lon)
		}
	}
}

func TestClampsLatitude(t *testing.T) {
	p1 := ToMercator(90.0, 0.0)
	p2 := ToMercator(MaxLatitude, 0.0)
	if math.Abs(p1.Y-p2.Y) > 1e-6 {
		t.Errorf("expected clamped latitude to match MaxLatitude projection, got %v vs %v", p1.Y, p2.Y)
	}
}

func TestIsValidMercator(t *testing.T) {
	if !IsValidMercator(r2.Vec{X: 0, Y: 0}) {
		t.Error("origin should be valid")
	}
	if !IsValidMercator(r2.Vec{X: EarthMercatorMax, Y: EarthMercatorMax}) {
		t.Error("corner should be valid")
	}
	if IsValidMercator(r2.Vec{X: EarthMercatorMax + 1, Y: 0}) {
		t.Error("out of bounds x should be invalid")
	}
}

func TestUnclampedMatchesClampedForValidInput(t *testing.T) {
	clamped := ToMercator(45.0, -90.0)
	unclamped := ToMercatorUnclamped(45.0, -90.0)
	if clamped != unclamped {
		t.Errorf("expected unclamped to match clamped for in-range input: %v vs %v", clamped, unclamped)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// London to Paris, roughly 344 km.
	d := HaversineMeters(51.5074, -0.1278, 48.8566, 2.3522)
	if d < 300000 || d > 400000 {
		t.Errorf("unexpected haversine distance: %v", d)
	}
}

func TestHaversineZeroForSamePoint(t *testing.T) {
	d := HaversineMeters(10, 10, 10, 10)
	if d != 0 {
		t.Errorf("expected zero distance, got %v", d)
	}
}
