package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq, amp, seconds float64, sampleRate int) []float64 {
	n := int(seconds * float64(sampleRate))
	y := make([]float64, n)
	for i := range y {
		y[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return y
}

func TestFrameCount(t *testing.T) {
	assert.Equal(t, 1, frameCount(0, 512))
	assert.Equal(t, 32, frameCount(16000, 512))
	assert.Equal(t, 2, frameCount(512, 512))
}

func TestFrameRMSConstantSignal(t *testing.T) {
	y := make([]float64, 8192)
	for i := range y {
		y[i] = 0.5
	}
	rms := frameRMS(y, 2048, 512)
	require.Len(t, rms, 17)
	// first frame is half padding
	assert.InDelta(t, math.Sqrt(0.25*0.5), rms[0], 1e-12)
	assert.InDelta(t, 0.5, rms[8], 1e-12)
}

func TestFrameZCRAlternatingSignal(t *testing.T) {
	y := make([]float64, 4096)
	for i := range y {
		if i%2 == 0 {
			y[i] = 1
		} else {
			y[i] = -1
		}
	}
	zcr := frameZCR(y, 2048, 512)
	// a fully covered frame changes sign between every pair of samples
	assert.InDelta(t, 2047.0/2048.0, zcr[4], 1e-12)
}

func TestNegativeTreatsTinyValuesAsPositive(t *testing.T) {
	assert.False(t, negative(-1e-12))
	assert.False(t, negative(0))
	assert.True(t, negative(-0.1))
}

func TestExtractSilentWaveform(t *testing.T) {
	y := make([]float64, 10*DefaultSampleRate)

	f, err := NewExtractor().Extract(y, DefaultSampleRate)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, f.DurationSeconds, 1e-12)
	assert.Equal(t, 1.0, f.SilenceRatio)
	assert.Zero(t, f.AveragePitchHz)
	assert.Zero(t, f.PitchVariation)
	assert.Zero(t, f.AverageVolume)
	assert.Zero(t, f.VolumeVariation)
	assert.Zero(t, f.SpeechRate)
	assert.Equal(t, DefaultSampleRate, f.SampleRate)
}

func TestExtractEmptyWaveform(t *testing.T) {
	f, err := NewExtractor().Extract(nil, DefaultSampleRate)
	require.NoError(t, err)

	assert.Zero(t, f.DurationSeconds)
	assert.Zero(t, f.SilenceRatio)
	assert.Equal(t, DefaultSampleRate, f.SampleRate)
}

func TestExtractRejectsBadSampleRate(t *testing.T) {
	_, err := NewExtractor().Extract([]float64{0.1}, 0)
	require.ErrorIs(t, err, ErrInvalidSampleRate)
}

func TestExtractSineTone(t *testing.T) {
	y := sine(220, 0.5, 1, DefaultSampleRate)

	f, err := NewExtractor().Extract(y, DefaultSampleRate)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, f.DurationSeconds, 1e-12)
	assert.InDelta(t, 220, f.AveragePitchHz, 2)
	assert.Less(t, f.PitchVariation, 1.0)
	assert.InDelta(t, 0.345, f.AverageVolume, 0.005)
	assert.InDelta(t, 0.0248, f.VolumeVariation, 0.002)
	assert.InDelta(t, 0.0263, f.SpeechRate, 0.001)
	assert.Zero(t, f.SilenceRatio)
}

func TestExtractToneThenSilence(t *testing.T) {
	y := append(sine(220, 0.5, 1, DefaultSampleRate), make([]float64, DefaultSampleRate)...)

	f, err := NewExtractor().Extract(y, DefaultSampleRate)
	require.NoError(t, err)

	assert.InDelta(t, 29.0/63.0, f.SilenceRatio, 1e-12)
	assert.InDelta(t, 220, f.AveragePitchHz, 2)
}

func TestExtractSilenceRatioBounded(t *testing.T) {
	cases := [][]float64{
		{0.001},
		sine(1000, 0.005, 0.3, DefaultSampleRate),
		sine(300, 0.9, 0.05, DefaultSampleRate),
	}
	for _, y := range cases {
		f, err := NewExtractor().Extract(y, DefaultSampleRate)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, f.SilenceRatio, 0.0)
		assert.LessOrEqual(t, f.SilenceRatio, 1.0)
	}
}

func TestExtractNonFiniteSamples(t *testing.T) {
	y := sine(220, 0.5, 0.5, DefaultSampleRate)
	y[10] = math.NaN()
	y[20] = math.Inf(1)

	f, err := NewExtractor().Extract(y, DefaultSampleRate)
	require.NoError(t, err)

	for _, v := range []float64{f.AverageVolume, f.VolumeVariation, f.AveragePitchHz, f.PitchVariation, f.SpeechRate, f.SilenceRatio} {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
	// the caller's slice is left untouched
	assert.True(t, math.IsNaN(y[10]))
}

func TestParabolicShift(t *testing.T) {
	assert.Zero(t, parabolicShift(1, 2, 1))
	assert.InDelta(t, 0.5, parabolicShift(1, 2, 2), 1e-12)
	assert.Zero(t, parabolicShift(1, 1, 1))
}
