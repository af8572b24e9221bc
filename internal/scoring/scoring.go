// Package scoring maps session metrics onto a 0-100 delivery score.
package scoring

import (
	"math"

	"github.com/speechcoach/backend/internal/models"
)

// Score sums the pace, volume, consistency and pitch sub-scores, rounded to two decimals.
// Every band awards a nonzero floor, so the result is always within [35, 100].
func Score(wpm float64, f models.AudioFeatures) float64 {
	total := PaceScore(wpm) + VolumeScore(f.AverageVolume) + ConsistencyScore(f.VolumeVariation) + PitchScore(f.PitchVariation)
	return math.Round(total*100) / 100
}

// PaceScore awards up to 40 points for speaking rate.
func PaceScore(wpm float64) float64 {
	switch {
	case wpm >= 120 && wpm <= 160:
		return 40
	case (wpm >= 100 && wpm < 120) || (wpm > 160 && wpm <= 180):
		return 30
	case (wpm >= 80 && wpm < 100) || (wpm > 180 && wpm <= 200):
		return 20
	default:
		return 10
	}
}

// VolumeScore awards up to 30 points for average RMS volume.
func VolumeScore(volume float64) float64 {
	switch {
	case volume >= 0.02 && volume <= 0.1:
		return 30
	case (volume >= 0.01 && volume < 0.02) || (volume > 0.1 && volume <= 0.15):
		return 20
	default:
		return 10
	}
}

// ConsistencyScore awards up to 20 points for steady volume.
func ConsistencyScore(variation float64) float64 {
	switch {
	case variation < 0.02:
		return 20
	case variation < 0.05:
		return 15
	default:
		return 10
	}
}

// PitchScore awards up to 10 points for vocal variety.
func PitchScore(variation float64) float64 {
	switch {
	case variation >= 30 && variation <= 80:
		return 10
	case (variation >= 15 && variation < 30) || (variation > 80 && variation <= 100):
		return 7
	default:
		return 5
	}
}
