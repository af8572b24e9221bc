package audio

import "math"

// zeroThreshold is the magnitude at or below which a sample counts as zero (and positive) for crossings.
const zeroThreshold = 1e-10

// frameCount is the number of centred analysis frames for n samples.
func frameCount(n, hop int) int {
	return 1 + n/hop
}

// padConstant centres the signal by padding frameLength/2 zeros on each side.
func padConstant(y []float64, frameLength int) []float64 {
	half := frameLength / 2
	out := make([]float64, len(y)+2*half)
	copy(out[half:], y)
	return out
}

// padEdge centres the signal by repeating its first and last sample frameLength/2 times.
func padEdge(y []float64, frameLength int) []float64 {
	half := frameLength / 2
	out := make([]float64, len(y)+2*half)
	copy(out[half:], y)
	if len(y) == 0 {
		return out
	}
	for i := 0; i < half; i++ {
		out[i] = y[0]
		out[len(out)-1-i] = y[len(y)-1]
	}
	return out
}

// frameRMS returns the root-mean-square energy of each centred frame.
func frameRMS(y []float64, frameLength, hop int) []float64 {
	padded := padConstant(y, frameLength)
	n := frameCount(len(y), hop)
	rms := make([]float64, n)
	for t := 0; t < n; t++ {
		frame := padded[t*hop : t*hop+frameLength]
		var sum float64
		for _, v := range frame {
			sum += v * v
		}
		rms[t] = math.Sqrt(sum / float64(frameLength))
	}
	return rms
}

// frameZCR returns the fraction of sign changes in each centred frame.
func frameZCR(y []float64, frameLength, hop int) []float64 {
	padded := padEdge(y, frameLength)
	n := frameCount(len(y), hop)
	zcr := make([]float64, n)
	for t := 0; t < n; t++ {
		frame := padded[t*hop : t*hop+frameLength]
		crossings := 0
		prev := negative(frame[0])
		for _, v := range frame[1:] {
			cur := negative(v)
			if cur != prev {
				crossings++
			}
			prev = cur
		}
		zcr[t] = float64(crossings) / float64(frameLength)
	}
	return zcr
}

func negative(v float64) bool {
	if math.Abs(v) <= zeroThreshold {
		return false
	}
	return v < 0
}
