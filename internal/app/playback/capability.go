package playback

import "github.com/osa030/blackhand/internal/domain/audio"

// Decoder produces PCM blocks from one audio file.
type Decoder interface {
	// Format returns the current output format.
	Format() (audio.Format, error)
	// BlockSize returns the recommended read buffer size in bytes.
	BlockSize() int
	// Read decodes the next block into p. It returns io.EOF at end of stream
	// and audio.ErrNewFormat when the format changed; any other error is fatal.
	Read(p []byte) (int, error)
	Close() error
}

// Output is an audio output device bound to one worker.
type Output interface {
	Open() error
	Start(f audio.Format) error
	Play(p []byte) (int, error)
	Pause() error
	Resume() error
	// Stop drops queued audio and ends the current stream.
	Stop() error
	Close() error
}

// DecoderFunc opens a decoder for path.
type DecoderFunc func(path string) (Decoder, error)

// OutputFunc creates an unopened output device.
type OutputFunc func() Output
