package playback

import "github.com/osa030/blackhand/internal/domain/track"

// EventType represents a playback event type.
type EventType int

const (
	EventTrackStarted EventType = iota // Worker spawned for a track
	EventTrackEnded                    // Track reached end of stream
	EventTrackFailed                   // Worker exited on a decode or output error
	EventStateChanged                  // Pause or resume
	EventStopped                       // Explicit stop
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackStarted:
		return "track_started"
	case EventTrackEnded:
		return "track_ended"
	case EventTrackFailed:
		return "track_failed"
	case EventStateChanged:
		return "state_changed"
	case EventStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type  EventType
	Index int              // Catalog index (-1 when not applicable)
	Track *track.AudioFile // Track concerned (nil for some events)
	State State            // Playback state after the event
	Err   error            // Cause for EventTrackFailed
}
