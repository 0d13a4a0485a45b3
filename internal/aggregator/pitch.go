package aggregator

import (
	"math"

	"github.com/pable/go-match-metrics/internal/model"
)

// Native grid is 240x150 with a small margin; the canonical pitch is 120x80.
const (
	nativeOriginX = 5.0
	nativeOriginY = 5.333
	scaleX        = 120.0 / 240.0
	scaleY        = 80.0 / 150.0
	pitchWidth    = 80.0

	// Recoveries beyond this normalized x are in the team's own half.
	ownHalfThreshold = 60.0
)

// Normalize maps a native-grid point to the canonical pitch with the Y axis
// reflected. NaN input propagates.
func Normalize(x, y float64) (float64, float64) {
	nx := (x - nativeOriginX) * scaleX
	ny := pitchWidth - (y-nativeOriginY)*scaleY
	return nx, ny
}

// NormalizePoint is Normalize returning a model.Point.
func NormalizePoint(x, y float64) model.Point {
	nx, ny := Normalize(x, y)
	return model.Point{X: nx, Y: ny}
}

// ZoneOf classifies a normalized x coordinate into a half of the pitch.
func ZoneOf(normX float64) model.Zone {
	if normX > ownHalfThreshold {
		return model.ZoneOwnHalf
	}
	return model.ZoneOpponentHalf
}

// finite replaces NaN with 0 so values can be JSON encoded.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
