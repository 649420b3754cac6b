// Package spectro builds short-time spectral representations of a mono
// waveform and measures the loudness-robust pseudo-distance between two
// spectral frames that the path finder uses as its edge cost.
package spectro

import (
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// ErrEmptySpectrogram is returned when the input waveform is too short for
// the configured resolution to produce even a single frame.
var ErrEmptySpectrogram = errors.New("spectro: empty spectrogram")

// Params are the tunables for spectrogram construction.
type Params struct {
	// BaseTick is the smallest time unit of the spectrogram's time axis,
	// in centiseconds.
	BaseTick float64
	// BOverlapDegree controls the base STFT window: window length is
	// samplesInTick*BOverlapDegree, hop length is samplesInTick, so
	// consecutive windows overlap by a 1-1/BOverlapDegree fraction.
	BOverlapDegree int
	// COverlapDegree controls how many consecutive base-frame blocks are
	// averaged together to produce one current-view frame.
	COverlapDegree int
	// Precision is the base-tick count of one current-view frame at
	// mult=1.
	Precision int
}

// Spectrogram is a two-level structure: a dense base layer computed once
// from the waveform, and a current view, re-derived on demand at a
// requested resolution multiplier.
type Spectrogram struct {
	params        Params
	sampleRate    int
	samplesInTick int

	base [][]float64 // T_base x F
	curr [][]float64 // T_curr x F; nil until RebinTo is called
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Build computes the base STFT of a mono waveform sampled at sampleRate.
func Build(samples []float64, sampleRate int, p Params) (*Spectrogram, error) {
	if len(samples) == 0 {
		return nil, errors.WithMessage(ErrEmptySpectrogram, "zero-length waveform")
	}

	samplesInTick := int(p.BaseTick * float64(sampleRate) / 100)
	if samplesInTick < 1 {
		samplesInTick = 1
	}
	windowLen := samplesInTick * p.BOverlapDegree
	hop := samplesInTick
	overlap := windowLen - hop

	numFrames := ceilDiv(len(samples), hop)
	if numFrames < 1 {
		numFrames = 1
	}
	totalLen := numFrames*hop + overlap
	padded := make([]float64, totalLen)
	copy(padded, samples)

	fft := fourier.NewFFT(windowLen)
	bins := windowLen/2 + 1

	base := make([][]float64, numFrames)
	win := make([]float64, windowLen)
	var coeffs []complex128
	for i := 0; i < numFrames; i++ {
		start := i * hop
		copy(win, padded[start:start+windowLen])
		window.Hamming(win)
		coeffs = fft.Coefficients(coeffs, win)
		row := make([]float64, bins)
		for k, c := range coeffs {
			re, im := real(c), imag(c)
			row[k] = re*re + im*im
		}
		base[i] = row
	}

	if len(base) == 0 {
		return nil, errors.WithMessage(ErrEmptySpectrogram, "no frames produced")
	}

	return &Spectrogram{
		params:        p,
		sampleRate:    sampleRate,
		samplesInTick: samplesInTick,
		base:          base,
	}, nil
}

// BaseLen is T_base, the number of base-tick frames.
func (s *Spectrogram) BaseLen() int { return len(s.base) }

// Precision is the base-tick count of one current-view frame at mult=1, as
// configured in Params. The driver needs this to choose its starting MULT.
func (s *Spectrogram) Precision() int { return s.params.Precision }

// RebinTo recomputes the current view at the given resolution multiplier:
// block size is Precision*mult base frames, averaged COverlapDegree-fold.
// mult must be >= 1.
func (s *Spectrogram) RebinTo(mult int) {
	if mult < 1 {
		panic("spectro: RebinTo requires mult >= 1")
	}
	tick := s.params.Precision * mult
	tBase := len(s.base)
	freq := len(s.base[0])
	windowNumber := ceilDiv(tBase, tick)
	if windowNumber < 1 {
		windowNumber = 1
	}
	specReshape := (windowNumber + s.params.COverlapDegree - 1) * tick

	curr := make([][]float64, windowNumber)
	for i := 0; i < windowNumber; i++ {
		row := make([]float64, freq)
		lo, hi := i*tick, (i+s.params.COverlapDegree)*tick
		count := 0
		for t := lo; t < hi && t < specReshape; t++ {
			if t >= tBase {
				count++ // zero-padded tail still contributes to the average's denominator
				continue
			}
			frame := s.base[t]
			for f := 0; f < freq; f++ {
				row[f] += frame[f]
			}
			count++
		}
		if count > 0 {
			inv := 1 / float64(count)
			for f := 0; f < freq; f++ {
				row[f] *= inv
			}
		}
		curr[i] = row
	}
	s.curr = curr
}

// Len is T_curr, the length of the current view. RebinTo must have been
// called at least once.
func (s *Spectrogram) Len() int { return len(s.curr) }

// Frame returns the i-th frame of the current view.
func (s *Spectrogram) Frame(i int) []float64 { return s.curr[i] }

// RandomFrame returns a uniformly random frame of the current view, for
// av_cost sampling.
func (s *Spectrogram) RandomFrame(rng *rand.Rand) []float64 {
	return s.curr[rng.Intn(len(s.curr))]
}
