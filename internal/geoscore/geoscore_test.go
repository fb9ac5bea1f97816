package geoscore

import (
	"math"
	"testing"

	"github.com/getupyang/geo-guess-diy/internal/model"
)

func TestDistanceMetersIdentity(t *testing.T) {
	points := []model.GeoPoint{
		{Lat: 0, Lng: 0},
		{Lat: 35.6762, Lng: 139.6503},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 89.9, Lng: -179.9},
	}
	for _, p := range points {
		if d := DistanceMeters(p, p); d != 0 {
			t.Errorf("DistanceMeters(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistanceMetersSymmetry(t *testing.T) {
	a := model.GeoPoint{Lat: 35.6762, Lng: 139.6503}
	b := model.GeoPoint{Lat: 31.2304, Lng: 121.4737}
	ab := DistanceMeters(a, b)
	ba := DistanceMeters(b, a)
	if ab != ba {
		t.Errorf("DistanceMeters not symmetric: %v vs %v", ab, ba)
	}
	if ab <= 0 {
		t.Errorf("DistanceMeters(a, b) = %v, want > 0", ab)
	}
}

func TestDistanceMetersKnownValue(t *testing.T) {
	// One degree of longitude on the equator: 2*pi*R/360.
	a := model.GeoPoint{Lat: 0, Lng: 0}
	b := model.GeoPoint{Lat: 0, Lng: 1}
	want := 2 * math.Pi * 6371000.0 / 360.0
	got := DistanceMeters(a, b)
	if math.Abs(got-want) > 0.01 {
		t.Errorf("DistanceMeters one degree = %v, want %v", got, want)
	}
}

func TestScoreFromDistance(t *testing.T) {
	tests := []struct {
		name string
		d    float64
		want int
	}{
		{"zero distance", 0, 5000},
		{"inside perfect radius", 49, 5000},
		{"just past perfect radius", 50, 4999},
		{"one decay length", 2_000_000, 1839},
		{"sixty kilometers", 60_000, 4852},
		{"across the planet", 20_000_000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreFromDistance(tt.d); got != tt.want {
				t.Errorf("ScoreFromDistance(%v) = %d, want %d", tt.d, got, tt.want)
			}
		})
	}
}

func TestScoreFromDistanceMonotonic(t *testing.T) {
	prev := ScoreFromDistance(PerfectRadiusMeters)
	for d := PerfectRadiusMeters; d < 15_000_000; d += 10_000 {
		s := ScoreFromDistance(d)
		if s > prev {
			t.Fatalf("score increased from %d to %d at d=%v", prev, s, d)
		}
		if s < 0 || s > 5000 {
			t.Fatalf("score %d out of range at d=%v", s, d)
		}
		prev = s
	}
}

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		d    float64
		want string
	}{
		{0, "0m"},
		{42, "42m"},
		{999, "999m"},
		{1000, "1.0km"},
		{1500, "1.5km"},
		{2_000_000, "2000.0km"},
	}
	for _, tt := range tests {
		if got := FormatDistance(tt.d); got != tt.want {
			t.Errorf("FormatDistance(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
