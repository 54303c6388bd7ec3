package playback

import (
	"io"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/blackhand/internal/app/visualizer"
	"github.com/osa030/blackhand/internal/domain/audio"
	"github.com/osa030/blackhand/internal/domain/track"
)

// exitReason tells why a worker left its decode loop.
type exitReason int

const (
	exitStopped exitReason = iota // stopRequested observed
	exitEnded                     // end of stream
	exitFailed                    // decode or output error
)

// runWorker decodes and plays t until end of stream, an error, or a stop request.
// done is closed once the worker has released all its resources.
func (c *Controller) runWorker(t track.AudioFile, index int, done chan<- struct{}) {
	defer close(done)

	start := time.Now()
	reason, err := c.decodeAndPlay(t.Path)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.workerRunning = false
	if c.stopRequested {
		zlog.Debug().Msgf("playback: worker stopped on request: index=%d track=%s ran=%v",
			index, t.Title, time.Since(start).Truncate(time.Millisecond))
		return
	}

	c.resetLocked()

	e := Event{Index: index, Track: &t, State: c.state}
	if reason == exitFailed {
		zlog.Warn().Err(err).Msgf("playback: track failed: index=%d path=%s", index, t.Path)
		e.Type = EventTrackFailed
		e.Err = err
	} else {
		zlog.Info().Msgf("playback: track ended: index=%d track=%s ran=%v",
			index, t.Title, time.Since(start).Truncate(time.Millisecond))
		e.Type = EventTrackEnded
	}
	c.sendEventLocked(e)
}

// decodeAndPlay runs the decode loop for one file. It owns the decoder and the
// output device and releases both before returning.
func (c *Controller) decodeAndPlay(path string) (exitReason, error) {
	dec, err := c.config.OpenDecoder(path)
	if err != nil {
		return exitFailed, errors.Wrapf(err, "failed to open decoder for %s", path)
	}
	defer func() {
		if err := dec.Close(); err != nil {
			zlog.Debug().Msgf("playback: failed to close decoder: %v", err)
		}
	}()

	format, err := dec.Format()
	if err != nil {
		return exitFailed, errors.Wrap(err, "failed to read stream format")
	}

	out := c.config.NewOutput()
	if err := out.Open(); err != nil {
		return exitFailed, errors.Wrap(err, "failed to open output device")
	}
	defer func() {
		if err := out.Stop(); err != nil {
			zlog.Debug().Msgf("playback: failed to stop output: %v", err)
		}
		if err := out.Close(); err != nil {
			zlog.Debug().Msgf("playback: failed to close output: %v", err)
		}
	}()

	if err := out.Start(format); err != nil {
		return exitFailed, errors.Wrapf(err, "failed to start output with format %s", format)
	}

	blockSize := dec.BlockSize()
	if blockSize <= 0 {
		return exitFailed, errors.Newf("invalid decoder block size %d", blockSize)
	}
	buf := make([]byte, blockSize)

	zlog.Debug().Msgf("playback: worker running: path=%s format=%s block=%d", path, format, blockSize)

	pausedLocally := false
	for {
		c.mu.Lock()
		stop := c.stopRequested
		st := c.state
		c.mu.Unlock()

		if stop {
			return exitStopped, nil
		}

		if st == StatePaused {
			if !pausedLocally {
				if err := out.Pause(); err != nil {
					return exitFailed, errors.Wrap(err, "failed to pause output")
				}
				pausedLocally = true
			}
			time.Sleep(c.config.PollInterval)
			continue
		}

		if pausedLocally {
			if err := out.Resume(); err != nil {
				return exitFailed, errors.Wrap(err, "failed to resume output")
			}
			pausedLocally = false
		}

		n, err := dec.Read(buf)
		if errors.Is(err, audio.ErrNewFormat) {
			if format, err = c.reformat(dec, out); err != nil {
				return exitFailed, err
			}
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return exitFailed, errors.Wrap(err, "decode failed")
		}

		if n > 0 {
			if _, perr := out.Play(buf[:n]); perr != nil {
				return exitFailed, errors.Wrap(perr, "failed to write to output")
			}

			if format.Encoding == audio.EncodingSigned16 {
				samples := visualizer.FromPCM16LE(buf[:n])
				c.mu.Lock()
				c.viz.Update(samples, format.Channels)
				c.mu.Unlock()
			}
		}

		if err != nil {
			return exitEnded, nil
		}
	}
}

// reformat restarts the output with the decoder's new format.
func (c *Controller) reformat(dec Decoder, out Output) (audio.Format, error) {
	format, err := dec.Format()
	if err != nil {
		return audio.Format{}, errors.Wrap(err, "failed to read new stream format")
	}
	if err := out.Stop(); err != nil {
		return audio.Format{}, errors.Wrap(err, "failed to stop output for format change")
	}
	if err := out.Start(format); err != nil {
		return audio.Format{}, errors.Wrapf(err, "failed to restart output with format %s", format)
	}

	zlog.Debug().Msgf("playback: stream format changed: %s", format)
	return format, nil
}
