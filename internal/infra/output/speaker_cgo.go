//go:build (linux && cgo) || windows || darwin

package output

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/blackhand/internal/domain/audio"
)

// AudioAvailable indicates whether the speaker driver can produce sound in this build.
const AudioAvailable = true

// SpeakerConfig represents the configuration for SpeakerDriver.
type SpeakerConfig struct {
	DeviceRate  int `yaml:"device_rate" mapstructure:"device_rate" default:"44100" validate:"gte=8000,lte=192000"`
	BufferMS    int `yaml:"buffer_ms" mapstructure:"buffer_ms" default:"100" validate:"gte=10,lte=1000"`
	QueueBlocks int `yaml:"queue_blocks" mapstructure:"queue_blocks" default:"4" validate:"gte=1,lte=64"`
	Quality     int `yaml:"quality" mapstructure:"quality" default:"4" validate:"gte=1,lte=6"`
}

// SpeakerDriver plays audio on the system sound device through beep.
type SpeakerDriver struct {
	config SpeakerConfig
}

func (d *SpeakerDriver) Name() string {
	return "speaker"
}

func (d *SpeakerDriver) Description() string {
	return "Plays audio on the default sound device"
}

func (d *SpeakerDriver) Configure(settings map[string]any) error {
	var config SpeakerConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}
	d.config = config
	zlog.Debug().Msgf("output: speaker driver config: %+v", config)
	return nil
}

func (d *SpeakerDriver) New() Device {
	if d.config.DeviceRate == 0 {
		_ = d.Configure(nil)
	}
	return &SpeakerDevice{config: d.config}
}

// The speaker package drives a single process-wide device.
var (
	speakerOnce sync.Once
	speakerRate beep.SampleRate
	speakerErr  error
)

func initSpeaker(config SpeakerConfig) error {
	speakerOnce.Do(func() {
		speakerRate = beep.SampleRate(config.DeviceRate)
		bufferSize := speakerRate.N(time.Duration(config.BufferMS) * time.Millisecond)
		speakerErr = speaker.Init(speakerRate, bufferSize)
		if speakerErr == nil {
			zlog.Info().Msgf("output: speaker initialized: rate=%d buffer=%d", speakerRate, bufferSize)
		}
	})
	return speakerErr
}

// SpeakerDevice feeds decoded blocks to the speaker mixer.
type SpeakerDevice struct {
	config SpeakerConfig

	mu     sync.Mutex
	opened bool
	closed bool
	format audio.Format
	stream *pcmStream
	ctrl   *beep.Ctrl
}

func (d *SpeakerDevice) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if err := initSpeaker(d.config); err != nil {
		return errors.Wrap(err, "failed to initialize speaker")
	}
	d.opened = true
	return nil
}

func (d *SpeakerDevice) Start(f audio.Format) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if !d.opened {
		return errors.New("output not opened")
	}
	if err := f.Validate(); err != nil {
		return errors.Wrap(err, "unsupported format")
	}
	d.stopLocked()

	stream := newPCMStream(d.config.QueueBlocks)
	var source beep.Streamer = stream
	if beep.SampleRate(f.Rate) != speakerRate {
		source = beep.Resample(d.config.Quality, beep.SampleRate(f.Rate), speakerRate, stream)
	}

	d.format = f
	d.stream = stream
	d.ctrl = &beep.Ctrl{Streamer: source}
	speaker.Play(d.ctrl)
	return nil
}

// Play queues p for the mixer. It blocks while the queue is full.
func (d *SpeakerDevice) Play(p []byte) (int, error) {
	d.mu.Lock()
	stream, format := d.stream, d.format
	d.mu.Unlock()

	if stream == nil {
		return 0, ErrNotStarted
	}

	frames, err := toStereo(format, p)
	if err != nil {
		return 0, err
	}
	if len(frames) > 0 {
		stream.push(frames)
	}
	return len(p), nil
}

func (d *SpeakerDevice) Pause() error {
	return d.setPaused(true)
}

func (d *SpeakerDevice) Resume() error {
	return d.setPaused(false)
}

func (d *SpeakerDevice) setPaused(paused bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctrl == nil {
		return ErrNotStarted
	}
	speaker.Lock()
	d.ctrl.Paused = paused
	speaker.Unlock()
	return nil
}

func (d *SpeakerDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	return nil
}

// stopLocked detaches the stream from the mixer and drops queued audio.
func (d *SpeakerDevice) stopLocked() {
	if d.ctrl == nil {
		return
	}
	speaker.Lock()
	d.ctrl.Streamer = nil
	speaker.Unlock()

	d.stream.drain()
	d.ctrl = nil
	d.stream = nil
}

func (d *SpeakerDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.closed = true
	return nil
}

func init() {
	Register("speaker", func() Driver {
		return &SpeakerDriver{}
	})
}
