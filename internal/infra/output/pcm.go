package output

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/osa030/blackhand/internal/domain/audio"
)

// toStereo converts interleaved PCM bytes into stereo float frames in [-1, 1].
// Mono input is duplicated to both sides; channels beyond the second are dropped.
// A trailing partial frame is ignored.
func toStereo(f audio.Format, p []byte) ([][2]float64, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	size := f.Encoding.SampleSize()
	frameSize := f.FrameSize()
	frames := make([][2]float64, len(p)/frameSize)

	for i := range frames {
		frame := p[i*frameSize:]
		left, err := sample(f.Encoding, frame)
		if err != nil {
			return nil, err
		}
		right := left
		if f.Channels > 1 {
			if right, err = sample(f.Encoding, frame[size:]); err != nil {
				return nil, err
			}
		}
		frames[i] = [2]float64{left, right}
	}
	return frames, nil
}

func sample(e audio.Encoding, b []byte) (float64, error) {
	switch e {
	case audio.EncodingSigned16:
		return float64(int16(binary.LittleEndian.Uint16(b))) / 32768, nil
	case audio.EncodingSigned8:
		return float64(int8(b[0])) / 128, nil
	case audio.EncodingFloat32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b))), nil
	default:
		return 0, errors.Newf("unsupported encoding %s", e)
	}
}
