// Package audio turns a live microphone stream into a continuous RGB signal.
// Per tick it reads the newest chunk of samples, computes a magnitude
// spectrum, folds the bass, mid and treble band energies through a noise
// gate with linear decay and self-calibrating normalization, and maps the
// result to a color frame.
package audio

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// DefaultChunkSize is the number of samples analyzed per tick.
	DefaultChunkSize = 1024
	// DefaultSampleRate is the capture rate in Hz.
	DefaultSampleRate = 44100

	noiseGate     = 0.02
	fadeThreshold = 0.05
	decaySeconds  = 1.0
	minRGB        = 25
)

type bandRange struct {
	low  float64
	high float64
}

// Band edges in Hz.
var bandRanges = [3]bandRange{
	{20, 250},     // bass
	{250, 4000},   // mid
	{4000, 20000}, // treble
}

// analyzer computes per-band mean spectral magnitudes for fixed-size chunks.
// The FFT is sized to the next power of two at or above the chunk length,
// with no overlap and no windowing.
type analyzer struct {
	fft   *fourier.FFT
	rate  float64
	buf   []float64
	coeff []complex128
	bins  [3][]int
}

func newAnalyzer(chunkSize, sampleRate int) *analyzer {
	n := nextPow2(chunkSize)
	a := &analyzer{
		fft:   fourier.NewFFT(n),
		rate:  float64(sampleRate),
		buf:   make([]float64, n),
		coeff: make([]complex128, n/2+1),
	}
	// Bin membership never changes for a fixed chunk size, precompute it.
	for bi, r := range bandRanges {
		for i := 0; i <= n/2; i++ {
			hz := a.fft.Freq(i) * a.rate
			if hz >= r.low && hz <= r.high {
				a.bins[bi] = append(a.bins[bi], i)
			}
		}
	}
	return a
}

// bandLevels returns the mean magnitude per band for one chunk of samples.
// Chunks shorter than the FFT size are zero-padded.
func (a *analyzer) bandLevels(samples []float64) [3]float64 {
	n := copy(a.buf, samples)
	for i := n; i < len(a.buf); i++ {
		a.buf[i] = 0
	}
	a.fft.Coefficients(a.coeff, a.buf)

	var levels [3]float64
	for bi, bins := range a.bins {
		if len(bins) == 0 {
			continue
		}
		var sum float64
		for _, i := range bins {
			sum += cmplx.Abs(a.coeff[i])
		}
		levels[bi] = sum / float64(len(bins))
	}
	return levels
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// bandState tracks one band's envelope. The current level either adopts a
// fresh measurement above the noise gate or decays linearly toward zero.
// The running maximum only ever grows; it is never reset while the engine
// lives, so normalization self-calibrates over the session.
type bandState struct {
	current float64
	max     float64
}

// observe folds one measured level into the band.
func (b *bandState) observe(level, decayStep float64) {
	if level > noiseGate {
		b.current = level
		if level > b.max {
			b.max = level
		}
		return
	}
	b.current = math.Max(b.current-decayStep, 0)
}

// normalized returns the current level scaled by the running maximum.
func (b *bandState) normalized() float64 {
	if b.max <= 0 {
		return 0
	}
	return b.current / b.max
}

// levelToChannel maps a normalized band level to one 8-bit color channel.
// Levels at or below the fade threshold go dark rather than dim.
func levelToChannel(level, multiplier float64) uint8 {
	if level <= fadeThreshold {
		return 0
	}
	v := math.Round(minRGB + (255-minRGB)*level*multiplier)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
