package geoscore

import (
	"fmt"
	"math"

	"github.com/getupyang/geo-guess-diy/internal/model"
)

const (
	// PerfectRadiusMeters is the radius inside which a guess counts as a
	// perfect hit. Score parity with historical data depends on this exact
	// threshold.
	PerfectRadiusMeters = 50.0

	// DecayMeters is the e-folding distance of the score curve. Historical
	// scores were produced with exactly this constant; do not tune it.
	DecayMeters = 2_000_000.0

	// MaxScore is the score of a perfect hit.
	MaxScore = 5000
)

// DistanceMeters returns the haversine distance (meters) between two WGS84
// points on a sphere of radius 6,371,000 m. Symmetric, never negative.
func DistanceMeters(a, b model.GeoPoint) float64 {
	const R = 6371000.0
	φ1 := a.Lat * math.Pi / 180.0
	φ2 := b.Lat * math.Pi / 180.0
	dφ := (b.Lat - a.Lat) * math.Pi / 180.0
	dλ := (b.Lng - a.Lng) * math.Pi / 180.0

	sinDφ := math.Sin(dφ / 2)
	sinDλ := math.Sin(dλ / 2)

	h := sinDφ*sinDφ + math.Cos(φ1)*math.Cos(φ2)*sinDλ*sinDλ
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return R * c
}

// ScoreFromDistance maps a guess distance to an integer score in [0, 5000].
// Inside PerfectRadiusMeters the score is 5000; beyond it the score decays
// exponentially and is truncated, so any distance at or past the threshold
// scores strictly below 5000.
func ScoreFromDistance(d float64) int {
	if d < PerfectRadiusMeters {
		return MaxScore
	}
	raw := float64(MaxScore) * math.Exp(-d/DecayMeters)
	score := int(math.Floor(raw))
	if score < 0 {
		return 0
	}
	if score >= MaxScore {
		return MaxScore - 1
	}
	return score
}

// Score computes the distance between truth and guess and the resulting
// score in one call.
func Score(truth, guess model.GeoPoint) (distanceMeters float64, score int) {
	d := DistanceMeters(truth, guess)
	return d, ScoreFromDistance(d)
}

// FormatDistance renders a distance for display: whole meters under 1 km,
// kilometers with one decimal otherwise. Presentation only.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0fm", meters)
	}
	return fmt.Sprintf("%.1fkm", meters/1000.0)
}
