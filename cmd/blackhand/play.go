package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/blackhand/internal/app/notification"
	"github.com/osa030/blackhand/internal/app/playback"
	"github.com/osa030/blackhand/internal/app/visualizer"
	"github.com/osa030/blackhand/internal/domain/catalog"
	"github.com/osa030/blackhand/internal/infra/config"
)

const statusInterval = 100 * time.Millisecond

// runPlay plays one track until it ends, fails, or the process is signaled.
func runPlay(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, index int, showStatus bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctrl, err := newController(ctx, cfg, cat)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	t, err := ctrl.Get(index)
	if err != nil {
		return errors.Wrapf(err, "catalog has %d tracks", ctrl.Count())
	}

	// finished receives the terminal event of the track.
	finished := make(chan playback.Event, 1)
	notifier := notification.NewManager(0)
	notifier.Subscribe(notification.StreamFunc(func(n notification.Notification) error {
		zlog.Debug().Msgf("event #%d: %s index=%d state=%s", n.SequenceNo, n.Event.Type, n.Event.Index, n.Event.State)
		return nil
	}))
	notifier.Subscribe(notification.StreamFunc(func(n notification.Notification) error {
		switch n.Event.Type {
		case playback.EventTrackEnded, playback.EventTrackFailed, playback.EventStopped:
			select {
			case finished <- n.Event:
			default:
			}
		}
		return nil
	}))

	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		notifier.Forward(ctx, ctrl.Events())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if err := ctrl.Play(index); err != nil {
		return err
	}

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()
	levels := make([]uint8, visualizer.Bins)

	for {
		select {
		case <-ticker.C:
			if showStatus {
				ctrl.Visualizer(levels)
				fmt.Fprintf(os.Stdout, "\r\033[K%s", statusLine(ctrl.State(), t, ctrl.Elapsed(), levels))
			}
		case sig := <-sigCh:
			zlog.Info().Msgf("Received %s, stopping playback", sig)
			ctrl.Stop()
		case e := <-finished:
			if showStatus {
				fmt.Fprintln(os.Stdout)
			}
			ctrl.Close()
			<-forwarded
			if e.Type == playback.EventTrackFailed {
				return errors.Wrapf(e.Err, "playback of %q failed", t.DisplayName())
			}
			zlog.Info().Msgf("Playback finished: %s (%s)", t.DisplayName(), e.Type)
			return nil
		}
	}
}
