// Package catalog provides the ordered, append-only track catalog.
package catalog

import (
	"time"

	"github.com/osa030/blackhand/internal/domain/track"
)

// Catalog holds the tracks discovered by a library scan in discovery order.
// It is built once and is read-only afterwards, so concurrent reads need no locking.
type Catalog struct {
	tracks []track.AudioFile
}

// New creates a catalog from the given tracks.
func New(tracks ...track.AudioFile) *Catalog {
	c := &Catalog{}
	c.tracks = append(c.tracks, tracks...)
	return c
}

// Append adds a track at the end of the catalog.
func (c *Catalog) Append(t track.AudioFile) {
	c.tracks = append(c.tracks, t)
}

// Len returns the number of tracks.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.tracks)
}

// Get returns the track at index.
func (c *Catalog) Get(index int) (track.AudioFile, bool) {
	if c == nil || index < 0 || index >= len(c.tracks) {
		return track.AudioFile{}, false
	}
	return c.tracks[index], true
}

// Tracks returns a copy of all tracks.
func (c *Catalog) Tracks() []track.AudioFile {
	if c == nil {
		return nil
	}
	result := make([]track.AudioFile, len(c.tracks))
	copy(result, c.tracks)
	return result
}

// Genres returns the distinct genres in first-seen order.
func (c *Catalog) Genres() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]bool)
	genres := make([]string, 0)
	for _, t := range c.tracks {
		if !seen[t.Genre] {
			seen[t.Genre] = true
			genres = append(genres, t.Genre)
		}
	}
	return genres
}

// TotalDuration returns the sum of all known track durations.
func (c *Catalog) TotalDuration() time.Duration {
	if c == nil {
		return 0
	}
	var total time.Duration
	for _, t := range c.tracks {
		total += t.Duration
	}
	return total
}
