// Package visualizer turns decoded PCM blocks into smoothed loudness bins.
package visualizer

import (
	"encoding/binary"
	"math"

	"github.com/samber/lo"
)

const (
	Bins     = 16 // Number of loudness bins
	MaxLevel = 8  // Highest discrete level returned by Levels

	smoothing = 0.7  // Weight of the previous bin value
	decay     = 0.85 // Applied to bins a short block does not reach
)

// Aggregator keeps one smoothed RMS value per bin in [0, 1].
// It does no locking of its own; the owner must serialize access.
type Aggregator struct {
	levels [Bins]float64
}

// New creates an aggregator with all bins at zero.
func New() *Aggregator {
	return &Aggregator{}
}

// Update folds one block of interleaved PCM16 samples into the bins.
// Only channel 0 of each frame is read.
func (a *Aggregator) Update(samples []int16, channels int) {
	if len(samples) == 0 {
		return
	}
	if channels < 1 {
		channels = 1
	}

	frames := len(samples) / channels
	if frames == 0 {
		return
	}

	framesPerBin := max(frames/Bins, 1)

	for b := range a.levels {
		start := b * framesPerBin
		if start >= frames {
			a.levels[b] *= decay
			continue
		}
		end := min(start+framesPerBin, frames)

		var sumSq float64
		for f := start; f < end; f++ {
			n := float64(samples[f*channels]) / 32768.0
			sumSq += n * n
		}
		rms := math.Sqrt(sumSq / float64(end-start))

		a.levels[b] = math.Min(a.levels[b]*smoothing+rms*(1-smoothing), 1.0)
	}
}

// Clear resets all bins to zero.
func (a *Aggregator) Clear() {
	a.levels = [Bins]float64{}
}

// Levels copies min(len(dst), Bins) bins scaled to [0, MaxLevel] and returns the count.
func (a *Aggregator) Levels(dst []uint8) int {
	count := min(len(dst), Bins)
	for i := 0; i < count; i++ {
		v := lo.Clamp(a.levels[i], 0, 1)
		dst[i] = uint8(v * MaxLevel)
	}
	return count
}

// raw returns the unscaled bin values.
func (a *Aggregator) raw() [Bins]float64 {
	return a.levels
}

// FromPCM16LE reinterprets little endian 16-bit PCM bytes as samples.
// A trailing odd byte is ignored.
func FromPCM16LE(p []byte) []int16 {
	samples := make([]int16, len(p)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(p[i*2:]))
	}
	return samples
}
