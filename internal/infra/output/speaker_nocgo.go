//go:build !((linux && cgo) || windows || darwin)

package output

import (
	"github.com/cockroachdb/errors"

	"github.com/osa030/blackhand/internal/domain/audio"
)

// AudioAvailable indicates whether the speaker driver can produce sound in this build.
// The speaker needs cgo on linux for the native sound libraries.
const AudioAvailable = false

// SpeakerDriver is registered so configs stay portable, but its devices
// fail to open in this build.
type SpeakerDriver struct{}

func (d *SpeakerDriver) Name() string {
	return "speaker"
}

func (d *SpeakerDriver) Description() string {
	return "Plays audio on the default sound device (unavailable: built without cgo)"
}

func (d *SpeakerDriver) Configure(settings map[string]any) error {
	return nil
}

func (d *SpeakerDriver) New() Device {
	return unavailableDevice{}
}

type unavailableDevice struct{}

func (unavailableDevice) Open() error {
	return errors.Wrap(ErrUnavailable, "speaker driver requires cgo")
}

func (unavailableDevice) Start(audio.Format) error   { return ErrUnavailable }
func (unavailableDevice) Play(p []byte) (int, error) { return 0, ErrUnavailable }
func (unavailableDevice) Pause() error               { return ErrUnavailable }
func (unavailableDevice) Resume() error              { return ErrUnavailable }
func (unavailableDevice) Stop() error                { return nil }
func (unavailableDevice) Close() error               { return nil }

func init() {
	Register("speaker", func() Driver {
		return &SpeakerDriver{}
	})
}
