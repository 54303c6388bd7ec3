// Package audio provides PCM stream format types shared by decoders and output devices.
package audio

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrNewFormat is returned by a decoder read when the stream format changed.
// The caller must query the new format and reconfigure its output before reading on.
var ErrNewFormat = errors.New("stream format changed")

// Encoding represents a PCM sample encoding.
type Encoding int

const (
	EncodingUnknown  Encoding = iota
	EncodingSigned16          // Signed 16-bit little endian
	EncodingSigned8           // Signed 8-bit
	EncodingFloat32           // 32-bit float little endian
)

// String returns the string representation of the encoding.
func (e Encoding) String() string {
	switch e {
	case EncodingSigned16:
		return "s16le"
	case EncodingSigned8:
		return "s8"
	case EncodingFloat32:
		return "f32le"
	default:
		return "unknown"
	}
}

// SampleSize returns the size of one sample in bytes (0 when unknown).
func (e Encoding) SampleSize() int {
	switch e {
	case EncodingSigned16:
		return 2
	case EncodingSigned8:
		return 1
	case EncodingFloat32:
		return 4
	default:
		return 0
	}
}

// Format describes a PCM stream.
type Format struct {
	Rate     int // Samples per second per channel
	Channels int
	Encoding Encoding
}

// Validate checks that the format can be played.
func (f Format) Validate() error {
	if f.Rate <= 0 {
		return errors.Newf("invalid sample rate %d", f.Rate)
	}
	if f.Channels <= 0 {
		return errors.Newf("invalid channel count %d", f.Channels)
	}
	if f.Encoding.SampleSize() == 0 {
		return errors.Newf("unsupported encoding %s", f.Encoding)
	}
	return nil
}

// FrameSize returns the size of one interleaved frame in bytes.
func (f Format) FrameSize() int {
	return f.Channels * f.Encoding.SampleSize()
}

// Duration returns the play time of n bytes in this format.
func (f Format) Duration(n int) time.Duration {
	fs := f.FrameSize()
	if fs == 0 || f.Rate == 0 {
		return 0
	}
	frames := n / fs
	return time.Duration(frames) * time.Second / time.Duration(f.Rate)
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch/%s", f.Rate, f.Channels, f.Encoding)
}
