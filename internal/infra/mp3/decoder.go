// Package mp3 decodes MP3 files into interleaved 16-bit PCM using go-mp3.
package mp3

import (
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/osa030/blackhand/internal/domain/audio"
)

const (
	// go-mp3 always produces stereo signed 16-bit little endian output.
	channels    = 2
	bytesPerPCM = 2

	// BlockSize is one MPEG-1 Layer III frame of decoded output.
	BlockSize = 1152 * channels * bytesPerPCM
)

// Errors
var (
	ErrOpenFailed = errors.New("failed to open mp3 file")
)

// Decoder streams decoded PCM from an MP3 file.
type Decoder struct {
	file *os.File
	dec  *gomp3.Decoder
	path string
}

// Open opens path and prepares it for decoding.
func Open(path string) (*Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "open %s", path), ErrOpenFailed)
	}

	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		_ = f.Close()
		return nil, errors.Mark(errors.Wrapf(err, "decode header of %s", path), ErrOpenFailed)
	}

	return &Decoder{file: f, dec: dec, path: path}, nil
}

// Format returns the output format. go-mp3 keeps the sample rate fixed for
// the whole stream, so the format never changes mid-track.
func (d *Decoder) Format() (audio.Format, error) {
	rate := d.dec.SampleRate()
	if rate <= 0 {
		return audio.Format{}, errors.Newf("invalid sample rate %d in %s", rate, d.path)
	}
	return audio.Format{
		Rate:     rate,
		Channels: channels,
		Encoding: audio.EncodingSigned16,
	}, nil
}

// BlockSize returns the preferred read size in bytes.
func (d *Decoder) BlockSize() int {
	return BlockSize
}

// Read decodes into p. It returns io.EOF at the end of the stream.
func (d *Decoder) Read(p []byte) (int, error) {
	n, err := d.dec.Read(p)
	if err == nil || errors.Is(err, io.EOF) {
		return n, err
	}
	return n, errors.Wrapf(err, "decode %s", d.path)
}

// Length returns the decoded stream length in bytes, or -1 if unknown.
func (d *Decoder) Length() int64 {
	return d.dec.Length()
}

// Duration returns the play time of the whole stream, or 0 if unknown.
func (d *Decoder) Duration() time.Duration {
	length := d.Length()
	if length <= 0 {
		return 0
	}
	format, err := d.Format()
	if err != nil {
		return 0
	}
	return format.Duration(int(length))
}

// Close releases the underlying file.
func (d *Decoder) Close() error {
	return d.file.Close()
}

// ProbeDuration opens path just long enough to compute its duration.
func ProbeDuration(path string) (time.Duration, error) {
	d, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer d.Close()

	duration := d.Duration()
	if duration == 0 {
		return 0, errors.Newf("unknown length for %s", path)
	}
	return duration, nil
}
