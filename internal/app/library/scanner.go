// Package library builds the track catalog from a root/<genre>/<author>/<file>.mp3 tree.
package library

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/osa030/blackhand/internal/domain/catalog"
	"github.com/osa030/blackhand/internal/domain/track"
)

// RootMode is the permission used when the library root has to be created.
const RootMode fs.FileMode = 0o755

// DurationProber returns the play length of an audio file.
type DurationProber func(path string) (time.Duration, error)

// Option configures a scan.
type Option func(*scanner)

// WithDurationProber fills AudioFile.Duration using the given prober.
func WithDurationProber(p DurationProber) Option {
	return func(s *scanner) {
		s.probe = p
	}
}

type scanner struct {
	root    string
	probe   DurationProber
	catalog *catalog.Catalog

	skipped int
}

// Scan walks root and returns the discovered tracks.
// The root is created when missing. Only a failure to create or open the root
// is returned as an error; unreadable branches and bad entries are skipped.
func Scan(root string, opts ...Option) (*catalog.Catalog, error) {
	s := &scanner{
		root:    root,
		catalog: catalog.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := ensureRoot(root); err != nil {
		return nil, err
	}

	genres, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open library root %s", root)
	}

	start := time.Now()
	for _, genre := range visibleDirs(root, genres) {
		s.scanGenre(genre)
	}

	zlog.Info().Msgf("scanner: library scan complete: root=%s tracks=%d genres=%d skipped=%d elapsed=%v",
		root, s.catalog.Len(), len(s.catalog.Genres()), s.skipped, time.Since(start).Truncate(time.Millisecond))

	return s.catalog, nil
}

func ensureRoot(root string) error {
	_, err := os.Stat(root)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "failed to stat library root %s", root)
	}

	zlog.Info().Msgf("scanner: creating library root: %s", root)
	if err := os.Mkdir(root, RootMode); err != nil {
		return errors.Wrapf(err, "failed to create library root %s", root)
	}
	return nil
}

func (s *scanner) scanGenre(genre string) {
	genrePath := filepath.Join(s.root, genre)
	authors, err := os.ReadDir(genrePath)
	if err != nil {
		zlog.Warn().Msgf("scanner: skipping genre directory: path=%s err=%v", genrePath, err)
		return
	}

	for _, author := range visibleDirs(genrePath, authors) {
		s.scanAuthor(genre, author)
	}
}

func (s *scanner) scanAuthor(genre, author string) {
	authorPath := filepath.Join(s.root, genre, author)
	files, err := os.ReadDir(authorPath)
	if err != nil {
		zlog.Warn().Msgf("scanner: skipping author directory: path=%s err=%v", authorPath, err)
		return
	}

	for _, name := range audioFiles(authorPath, files) {
		s.add(filepath.Join(authorPath, name), genre, author)
	}
}

func (s *scanner) add(path, genre, author string) {
	f, err := track.NewAudioFile(path, genre, author)
	if err != nil {
		s.skipped++
		zlog.Warn().Msgf("scanner: discarding entry: path=%q err=%v", path, err)
		return
	}

	if s.probe != nil {
		d, err := s.probe(path)
		if err != nil {
			zlog.Debug().Msgf("scanner: could not probe duration: path=%s err=%v", path, err)
		} else {
			f = f.WithDuration(d)
		}
	}

	s.catalog.Append(f)
}

// visibleDirs returns the names of non-hidden entries that are directories,
// following symlinks.
func visibleDirs(parent string, entries []os.DirEntry) []string {
	dirs := lo.Filter(entries, func(e os.DirEntry, _ int) bool {
		return !isHidden(e.Name()) && isDir(parent, e)
	})
	return lo.Map(dirs, func(e os.DirEntry, _ int) string { return e.Name() })
}

// audioFiles returns the names of non-hidden, non-directory entries with the
// exact track extension.
func audioFiles(parent string, entries []os.DirEntry) []string {
	files := lo.Filter(entries, func(e os.DirEntry, _ int) bool {
		name := e.Name()
		return !isHidden(name) && filepath.Ext(name) == track.Extension && !isDir(parent, e)
	})
	return lo.Map(files, func(e os.DirEntry, _ int) string { return e.Name() })
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func isDir(parent string, e os.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.IsDir()
	}
	info, err := os.Stat(filepath.Join(parent, e.Name()))
	if err != nil {
		return false
	}
	return info.IsDir()
}
