package audio

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// pitchTracker estimates one pitch per frame from STFT magnitude peaks with parabolic interpolation.
type pitchTracker struct {
	sampleRate  int
	frameLength int
	hop         int
	fmin        float64
	fmax        float64
	threshold   float64 // fraction of the frame's maximum magnitude a peak must exceed
	fft         *fourier.FFT
	window      []float64
}

func newPitchTracker(sampleRate, frameLength, hop int, fmin, fmax, threshold float64) *pitchTracker {
	window := make([]float64, frameLength)
	for i := range window {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(frameLength))
	}
	if nyquist := float64(sampleRate) / 2; fmax > nyquist {
		fmax = nyquist
	}
	return &pitchTracker{
		sampleRate:  sampleRate,
		frameLength: frameLength,
		hop:         hop,
		fmin:        math.Max(fmin, 0),
		fmax:        fmax,
		threshold:   threshold,
		fft:         fourier.NewFFT(frameLength),
		window:      window,
	}
}

// track returns the positive per-frame pitch estimates in Hz. Frames without a peak are skipped.
func (p *pitchTracker) track(y []float64) []float64 {
	padded := padConstant(y, p.frameLength)
	n := frameCount(len(y), p.hop)
	bins := p.frameLength/2 + 1

	buf := make([]float64, p.frameLength)
	coeffs := make([]complex128, bins)
	mag := make([]float64, bins)
	masked := make([]float64, bins)

	var pitches []float64
	for t := 0; t < n; t++ {
		frame := padded[t*p.hop : t*p.hop+p.frameLength]
		for i, v := range frame {
			buf[i] = v * p.window[i]
		}
		coeffs = p.fft.Coefficients(coeffs, buf)
		peak := 0.0
		for k, c := range coeffs {
			mag[k] = cmplx.Abs(c)
			if mag[k] > peak {
				peak = mag[k]
			}
		}
		if pitch := p.framePitch(mag, masked, p.threshold*peak); pitch > 0 {
			pitches = append(pitches, pitch)
		}
	}
	return pitches
}

// framePitch picks the interpolated frequency of the strongest admissible local maximum, or 0.
func (p *pitchTracker) framePitch(mag, masked []float64, ref float64) float64 {
	for k, v := range mag {
		if v > ref {
			masked[k] = v
		} else {
			masked[k] = 0
		}
	}

	binHz := float64(p.sampleRate) / float64(p.frameLength)
	bestMag := 0.0
	bestPitch := 0.0
	for k := 1; k < len(mag)-1; k++ {
		freq := float64(k) * binHz
		if freq < p.fmin || freq >= p.fmax {
			continue
		}
		if !(masked[k] > masked[k-1] && masked[k] >= masked[k+1]) {
			continue
		}
		shift := parabolicShift(mag[k-1], mag[k], mag[k+1])
		avg := 0.5 * (mag[k+1] - mag[k-1])
		m := mag[k] + 0.5*avg*shift
		// strict comparison keeps the lowest bin on ties; non-positive peaks never win
		if m > bestMag {
			bestMag = m
			bestPitch = (float64(k) + shift) * binHz
		}
	}
	return bestPitch
}

// parabolicShift is the offset of the vertex of the parabola through three neighbouring bins.
func parabolicShift(prev, cur, next float64) float64 {
	a := next + prev - 2*cur
	b := (next - prev) / 2
	if math.Abs(b) >= math.Abs(a) {
		return 0
	}
	return -b / a
}
