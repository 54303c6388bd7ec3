// Package output provides the audio output drivers used by playback workers.
package output

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"

	"github.com/osa030/blackhand/internal/domain/audio"
)

// Errors
var (
	ErrUnknownDriver = errors.New("unknown output driver")
	ErrNotStarted    = errors.New("output not started")
	ErrClosed        = errors.New("output closed")
	ErrUnavailable   = errors.New("audio output not available in this build")
)

// Device is one output stream, owned by a single worker.
type Device interface {
	Open() error
	Start(f audio.Format) error
	Play(p []byte) (int, error)
	Pause() error
	Resume() error
	Stop() error
	Close() error
}

// Driver creates devices of one kind.
type Driver interface {
	// Name returns the driver name (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// Configure decodes, defaults and validates the driver settings.
	Configure(settings map[string]any) error
	// New returns an unopened device.
	New() Device
}

// registry holds registered driver factories.
var registry = make(map[string]func() Driver)

// Register registers a driver factory.
func Register(name string, factory func() Driver) {
	registry[name] = factory
}

// GetRegistered returns all registered driver factories.
func GetRegistered() map[string]func() Driver {
	return registry
}

// Names returns the registered driver names in sorted order.
func Names() []string {
	names := lo.Keys(registry)
	slices.Sort(names)
	return names
}

// Lookup creates the named driver and configures it with settings.
func Lookup(name string, settings map[string]any) (Driver, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownDriver, "%q (available: %v)", name, Names())
	}

	d := factory()
	if err := d.Configure(settings); err != nil {
		return nil, errors.Wrapf(err, "invalid settings for output driver %q", name)
	}
	return d, nil
}

// decodeSettings fills config from settings, applies defaults and validates it.
func decodeSettings(settings map[string]any, config any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           config,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}

	if err := decoder.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}

	if err := defaults.Set(config); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}

	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	return nil
}
