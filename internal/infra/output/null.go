package output

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/blackhand/internal/domain/audio"
)

// NullConfig represents the configuration for NullDriver.
type NullConfig struct {
	// Unpaced discards audio as fast as it arrives instead of in real time.
	Unpaced bool `yaml:"unpaced" mapstructure:"unpaced"`
}

// NullDriver discards audio at the rate a real device would consume it.
type NullDriver struct {
	config NullConfig
}

func (d *NullDriver) Name() string {
	return "null"
}

func (d *NullDriver) Description() string {
	return "Discards audio in real time (headless playback, tests)"
}

func (d *NullDriver) Configure(settings map[string]any) error {
	var config NullConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}
	d.config = config
	zlog.Debug().Msgf("output: null driver config: %+v", config)
	return nil
}

func (d *NullDriver) New() Device {
	return newNullDevice(!d.config.Unpaced)
}

// NullDevice is a Device that consumes audio without producing sound.
type NullDevice struct {
	mu      sync.Mutex
	paced   bool
	sleep   func(time.Duration)
	opened  bool
	closed  bool
	paused  bool
	format  *audio.Format
	written int64
}

func newNullDevice(paced bool) *NullDevice {
	return &NullDevice{paced: paced, sleep: time.Sleep}
}

func (d *NullDevice) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.opened = true
	return nil
}

func (d *NullDevice) Start(f audio.Format) error {
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
	d.format = &f
	d.paused = false
	return nil
}

// Play accepts p and, when paced, blocks for its play time.
func (d *NullDevice) Play(p []byte) (int, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return 0, ErrClosed
	}
	if d.format == nil {
		d.mu.Unlock()
		return 0, ErrNotStarted
	}
	wait := d.format.Duration(len(p))
	d.written += int64(len(p))
	paced := d.paced
	d.mu.Unlock()

	if paced && wait > 0 {
		d.sleep(wait)
	}
	return len(p), nil
}

func (d *NullDevice) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = true
	return nil
}

func (d *NullDevice) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = false
	return nil
}

func (d *NullDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.format = nil
	d.paused = false
	return nil
}

func (d *NullDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.format = nil
	return nil
}

// Written returns the number of bytes accepted so far.
func (d *NullDevice) Written() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.written
}

// Paused reports whether the device is paused.
func (d *NullDevice) Paused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.paused
}

func init() {
	Register("null", func() Driver {
		return &NullDriver{}
	})
}
