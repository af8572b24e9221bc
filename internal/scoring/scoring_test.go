package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/speechcoach/backend/internal/models"
)

func TestPaceScoreBands(t *testing.T) {
	tests := []struct {
		wpm  float64
		want float64
	}{
		{120, 40}, {140, 40}, {160, 40},
		{119.99, 30}, {100, 30}, {160.01, 30}, {180, 30},
		{99.9, 20}, {80, 20}, {180.5, 20}, {200, 20},
		{79.9, 10}, {0, 10}, {200.1, 10}, {400, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PaceScore(tt.wpm), "wpm=%v", tt.wpm)
	}
}

func TestVolumeScoreBands(t *testing.T) {
	assert.Equal(t, 30.0, VolumeScore(0.02))
	assert.Equal(t, 30.0, VolumeScore(0.1))
	assert.Equal(t, 20.0, VolumeScore(0.01))
	assert.Equal(t, 20.0, VolumeScore(0.15))
	assert.Equal(t, 10.0, VolumeScore(0.005))
	assert.Equal(t, 10.0, VolumeScore(0.2))
}

func TestConsistencyAndPitchBands(t *testing.T) {
	assert.Equal(t, 20.0, ConsistencyScore(0.019))
	assert.Equal(t, 15.0, ConsistencyScore(0.02))
	assert.Equal(t, 10.0, ConsistencyScore(0.05))

	assert.Equal(t, 10.0, PitchScore(30))
	assert.Equal(t, 10.0, PitchScore(80))
	assert.Equal(t, 7.0, PitchScore(15))
	assert.Equal(t, 7.0, PitchScore(100))
	assert.Equal(t, 5.0, PitchScore(14.9))
	assert.Equal(t, 5.0, PitchScore(100.1))
}

func TestScoreIdealDelivery(t *testing.T) {
	f := models.AudioFeatures{AverageVolume: 0.05, VolumeVariation: 0.01, PitchVariation: 50}
	assert.Equal(t, 100.0, Score(140, f))
}

func TestScoreNearSilent(t *testing.T) {
	f := models.AudioFeatures{DurationSeconds: 10, AverageVolume: 0.001, VolumeVariation: 0, PitchVariation: 0}
	// volume 10, consistency 20, pitch 5; pace decides the rest
	tests := []struct {
		wpm  float64
		want float64
	}{
		{140, 75},
		{110, 65},
		{90, 55},
		{0, 45},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Score(tt.wpm, f), "wpm=%v", tt.wpm)
	}
}

func TestScoreFloor(t *testing.T) {
	f := models.AudioFeatures{AverageVolume: 0, VolumeVariation: 1, PitchVariation: 0}
	assert.Equal(t, 35.0, Score(0, f))
}

func TestScoreRange(t *testing.T) {
	for _, wpm := range []float64{0, 50, 110, 150, 170, 190, 250} {
		for _, vol := range []float64{0, 0.015, 0.05, 0.12, 0.5} {
			s := Score(wpm, models.AudioFeatures{AverageVolume: vol, VolumeVariation: 0.03, PitchVariation: 20})
			assert.GreaterOrEqual(t, s, 35.0)
			assert.LessOrEqual(t, s, 100.0)
			assert.Equal(t, s, math.Round(s*100)/100)
		}
	}
}
