// Package track provides the AudioFile domain entity.
package track

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrInvalidAudioFile is returned when an entry cannot be built from a path.
var ErrInvalidAudioFile = errors.New("invalid audio file")

// Extension is the only file extension picked up by the library scanner.
const Extension = ".mp3"

// AudioFile represents a single track discovered on disk.
// Values are immutable once created.
type AudioFile struct {
	Path     string        // Full path to the file
	Title    string        // File name minus extension, underscores replaced by spaces
	Author   string        // Name of the parent directory
	Genre    string        // Name of the grandparent directory
	Duration time.Duration // Track length (zero when unknown)
}

// NewAudioFile builds an AudioFile for root/<genre>/<author>/<file>.
func NewAudioFile(path, genre, author string) (AudioFile, error) {
	title := TitleFromFilename(filepath.Base(path))

	fields := []struct{ name, value string }{
		{"path", path},
		{"title", title},
		{"author", author},
		{"genre", genre},
	}
	for _, f := range fields {
		if f.value == "" {
			return AudioFile{}, errors.Wrapf(ErrInvalidAudioFile, "empty %s", f.name)
		}
	}

	return AudioFile{
		Path:   path,
		Title:  title,
		Author: author,
		Genre:  genre,
	}, nil
}

// TitleFromFilename strips the last extension and turns underscores into spaces.
func TitleFromFilename(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	return strings.ReplaceAll(name, "_", " ")
}

// WithDuration returns a copy of the file with its duration set.
func (f AudioFile) WithDuration(d time.Duration) AudioFile {
	f.Duration = d
	return f
}

// DisplayName returns "Author - Title".
func (f AudioFile) DisplayName() string {
	return f.Author + " - " + f.Title
}
