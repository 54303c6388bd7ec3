package playback

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/blackhand/internal/app/visualizer"
	"github.com/osa030/blackhand/internal/domain/catalog"
	"github.com/osa030/blackhand/internal/domain/track"
)

// Errors
var (
	ErrInvalidIndex  = errors.New("track index out of range")
	ErrTrackNotFound = errors.New("track not found")
	ErrSpawnFailed   = errors.New("failed to start playback worker")
)

const (
	DefaultPollInterval = 20 * time.Millisecond
	DefaultEventBuffer  = 10
)

// Config holds controller configuration.
type Config struct {
	OpenDecoder  DecoderFunc      // Opens the decoder for a track path
	NewOutput    OutputFunc       // Creates the output device for a worker
	PollInterval time.Duration    // Worker sleep while paused
	EventBuffer  int              // Capacity of the event channel
	Clock        func() time.Time // Time source for elapsed-time bookkeeping
}

func (c *Config) setDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = DefaultEventBuffer
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
}

// Controller owns the catalog, the shared playback state and the lifecycle of
// at most one decode-play worker. All methods are safe for concurrent use.
type Controller struct {
	// Serializes Play, Stop and Close so that at most one worker exists.
	opMu sync.Mutex

	// Guards every field below up to the catalog.
	mu            sync.Mutex
	state         State
	currentIndex  int
	startTime     time.Time
	pauseOffset   time.Duration
	stopRequested bool
	workerRunning bool
	workerDone    chan struct{}
	viz           *visualizer.Aggregator
	closed        bool

	// Read-only after construction
	catalog *catalog.Catalog
	config  Config

	// Events
	eventCh chan Event

	// Context
	ctx    context.Context
	cancel context.CancelFunc
}

// NewController creates a stopped controller over cat.
// Canceling ctx makes subsequent Play calls fail; call Close to stop a live worker.
func NewController(ctx context.Context, config Config, cat *catalog.Catalog) *Controller {
	config.setDefaults()
	if cat == nil {
		cat = catalog.New()
	}

	ctx, cancel := context.WithCancel(ctx)
	return &Controller{
		state:        StateStopped,
		currentIndex: -1,
		viz:          visualizer.New(),
		catalog:      cat,
		config:       config,
		eventCh:      make(chan Event, config.EventBuffer),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Events returns the event channel. It is closed by Close.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// Count returns the number of tracks in the catalog.
func (c *Controller) Count() int {
	return c.catalog.Len()
}

// Get returns the track at index.
func (c *Controller) Get(index int) (track.AudioFile, error) {
	t, ok := c.catalog.Get(index)
	if !ok {
		return track.AudioFile{}, errors.Wrapf(ErrTrackNotFound, "index %d", index)
	}
	return t, nil
}

// Play stops any active worker and starts playing the track at index.
func (c *Controller) Play(index int) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	t, ok := c.catalog.Get(index)
	if !ok {
		return errors.Wrapf(ErrInvalidIndex, "index %d (catalog has %d tracks)", index, c.catalog.Len())
	}

	c.stopWorker()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pauseOffset = 0
	c.stopRequested = false
	c.viz.Clear()
	c.state = StatePlaying
	c.currentIndex = index
	c.startTime = c.config.Clock()

	if err := c.spawnLocked(t, index); err != nil {
		c.state = StateStopped
		c.currentIndex = -1
		c.startTime = time.Time{}
		zlog.Warn().Msgf("playback: could not start track: index=%d track=%s err=%v", index, t.Title, err)
		return err
	}

	zlog.Info().Msgf("playback: started: index=%d track=%q path=%s", index, t.DisplayName(), t.Path)
	c.sendEventLocked(Event{
		Type:  EventTrackStarted,
		Index: index,
		Track: &t,
		State: c.state,
	})

	return nil
}

// spawnLocked starts the worker goroutine for t.
// Must be called with lock held.
func (c *Controller) spawnLocked(t track.AudioFile, index int) error {
	if c.closed {
		return errors.Wrap(ErrSpawnFailed, "controller is closed")
	}
	if err := c.ctx.Err(); err != nil {
		return errors.Wrapf(ErrSpawnFailed, "lifecycle context done: %v", err)
	}
	if c.config.OpenDecoder == nil || c.config.NewOutput == nil {
		return errors.Wrap(ErrSpawnFailed, "no decoder or output configured")
	}

	done := make(chan struct{})
	c.workerDone = done
	c.workerRunning = true
	go c.runWorker(t, index, done)

	return nil
}

// Pause pauses playback. It is a no-op unless playing.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePlaying {
		return
	}

	c.pauseOffset += c.config.Clock().Sub(c.startTime)
	c.state = StatePaused

	zlog.Debug().Msgf("playback: paused: index=%d elapsed=%v", c.currentIndex, c.pauseOffset)
	c.sendEventLocked(Event{
		Type:  EventStateChanged,
		Index: c.currentIndex,
		State: c.state,
	})
}

// Resume resumes paused playback. It is a no-op unless paused.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePaused {
		return
	}

	c.startTime = c.config.Clock()
	c.state = StatePlaying

	zlog.Debug().Msgf("playback: resumed: index=%d elapsed=%v", c.currentIndex, c.pauseOffset)
	c.sendEventLocked(Event{
		Type:  EventStateChanged,
		Index: c.currentIndex,
		State: c.state,
	})
}

// Stop stops playback and waits for the worker to exit.
// It is safe to call at any time and any number of times.
func (c *Controller) Stop() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	index := c.CurrentIndex()
	if !c.stopWorker() {
		return
	}

	zlog.Info().Msgf("playback: stopped: index=%d", index)
	c.mu.Lock()
	c.sendEventLocked(Event{
		Type:  EventStopped,
		Index: index,
		State: StateStopped,
	})
	c.mu.Unlock()
}

// stopWorker requests the active worker to stop, joins it and resets the
// shared state. It reports whether a worker was running.
// Must be called with opMu held.
func (c *Controller) stopWorker() bool {
	c.mu.Lock()
	running := c.workerRunning
	done := c.workerDone
	if running {
		c.stopRequested = true
	}
	c.mu.Unlock()

	if running {
		<-done
	}

	c.mu.Lock()
	c.resetLocked()
	c.stopRequested = false
	c.workerDone = nil
	c.mu.Unlock()

	return running
}

// resetLocked puts the shared state back to stopped.
// Must be called with lock held.
func (c *Controller) resetLocked() {
	c.state = StateStopped
	c.currentIndex = -1
	c.startTime = time.Time{}
	c.pauseOffset = 0
	c.viz.Clear()
}

// State returns the current playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentIndex returns the catalog index being played, or -1.
func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentIndex
}

// Elapsed returns the play time of the current track, excluding pauses.
func (c *Controller) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StatePlaying:
		return c.pauseOffset + c.config.Clock().Sub(c.startTime)
	case StatePaused:
		return c.pauseOffset
	default:
		return 0
	}
}

// Visualizer copies up to len(dst) loudness levels in [0, visualizer.MaxLevel]
// into dst and returns how many were written.
func (c *Controller) Visualizer(dst []uint8) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viz.Levels(dst)
}

// Close stops any active worker and releases the controller.
// Play fails after Close; the event channel is closed.
func (c *Controller) Close() {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.stopWorker()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	close(c.eventCh)
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (c *Controller) sendEventLocked(e Event) {
	if c.closed {
		return
	}
	select {
	case c.eventCh <- e:
	default:
		zlog.Debug().Msgf("playback: event channel full, dropping %s", e.Type)
	}
}
