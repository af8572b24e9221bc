// Package audio decodes practice recordings and extracts the acoustic features used for scoring.
package audio

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/speechcoach/backend/internal/models"
)

// Analysis defaults for 16 kHz speech.
const (
	DefaultSampleRate       = 16000
	DefaultFrameLength      = 2048
	DefaultHopLength        = 512
	DefaultSilenceThreshold = 0.01
	DefaultPitchFmin        = 150.0
	DefaultPitchFmax        = 4000.0
	DefaultPitchThreshold   = 0.1
)

// ErrInvalidSampleRate is returned when the waveform's sample rate is not positive.
var ErrInvalidSampleRate = errors.New("sample rate must be positive")

// Extractor computes AudioFeatures from a mono waveform. The zero value is not usable; use NewExtractor.
type Extractor struct {
	FrameLength      int
	HopLength        int
	SilenceThreshold float64
	PitchFmin        float64
	PitchFmax        float64
	PitchThreshold   float64
}

// NewExtractor returns an Extractor with the default speech framing.
func NewExtractor() *Extractor {
	return &Extractor{
		FrameLength:      DefaultFrameLength,
		HopLength:        DefaultHopLength,
		SilenceThreshold: DefaultSilenceThreshold,
		PitchFmin:        DefaultPitchFmin,
		PitchFmax:        DefaultPitchFmax,
		PitchThreshold:   DefaultPitchThreshold,
	}
}

// Extract measures duration, frame energy, pitch, zero-crossing rate and silence of y.
// An empty waveform yields zero-valued features carrying only the sample rate.
func (e *Extractor) Extract(y []float64, sampleRate int) (models.AudioFeatures, error) {
	if sampleRate <= 0 {
		return models.AudioFeatures{}, ErrInvalidSampleRate
	}
	features := models.AudioFeatures{SampleRate: sampleRate}
	if len(y) == 0 {
		return features, nil
	}
	y = sanitize(y)

	features.DurationSeconds = float64(len(y)) / float64(sampleRate)

	rms := frameRMS(y, e.FrameLength, e.HopLength)
	features.AverageVolume, features.VolumeVariation = stat.PopMeanStdDev(rms, nil)

	silent := 0
	for _, v := range rms {
		if v < e.SilenceThreshold {
			silent++
		}
	}
	features.SilenceRatio = float64(silent) / float64(len(rms))

	tracker := newPitchTracker(sampleRate, e.FrameLength, e.HopLength, e.PitchFmin, e.PitchFmax, e.PitchThreshold)
	if pitches := tracker.track(y); len(pitches) > 0 {
		features.AveragePitchHz, features.PitchVariation = stat.PopMeanStdDev(pitches, nil)
	}

	features.SpeechRate = stat.Mean(frameZCR(y, e.FrameLength, e.HopLength), nil)
	return features, nil
}

// sanitize replaces non-finite samples with silence so every derived statistic stays finite.
func sanitize(y []float64) []float64 {
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out := make([]float64, len(y))
			copy(out, y)
			for j := i; j < len(out); j++ {
				if math.IsNaN(out[j]) || math.IsInf(out[j], 0) {
					out[j] = 0
				}
			}
			return out
		}
	}
	return y
}
