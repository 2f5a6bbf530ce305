package forcing

import (
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
)

// DefaultWindowLength is the number of samples in the smoothing window.
const DefaultWindowLength = 60

// HannWindow returns a symmetric Hann window of n samples.
func HannWindow(n int) []float64 {
	return window.Hann(n)
}

// Smooth convolves x with w, keeps the centred len(x) samples of the full
// convolution and normalizes by the window sum.
func Smooth(x, w []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 || len(w) == 0 {
		return out
	}

	norm := floats.Sum(w)
	offset := (len(w) - 1) / 2
	for i := range out {
		k := i + offset
		lo := k - len(w) + 1
		if lo < 0 {
			lo = 0
		}
		hi := k
		if hi > len(x)-1 {
			hi = len(x) - 1
		}

		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += x[j] * w[k-j]
		}
		out[i] = sum / norm
	}
	return out
}
