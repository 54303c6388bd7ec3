package library

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/blackhand/internal/domain/catalog"
)

func touch(t *testing.T, root string, parts ...string) string {
	t.Helper()
	path := filepath.Join(append([]string{root}, parts...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0o644))
	return path
}

func titles(c *catalog.Catalog) []string {
	result := make([]string, 0, c.Len())
	for _, tr := range c.Tracks() {
		result = append(result, tr.Title)
	}
	return result
}

func TestScan_SingleTrack(t *testing.T) {
	root := t.TempDir()
	path := touch(t, root, "Rock", "X", "Song_One.mp3")

	c, err := Scan(root)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	got, ok := c.Get(0)
	require.True(t, ok)
	assert.Equal(t, path, got.Path)
	assert.Equal(t, "Song One", got.Title)
	assert.Equal(t, "X", got.Author)
	assert.Equal(t, "Rock", got.Genre)
	assert.Zero(t, got.Duration)

	_, ok = c.Get(1)
	assert.False(t, ok)
}

func TestScan_CreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "audio")

	c, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, RootMode, info.Mode().Perm()&RootMode)
}

func TestScan_RootCannotBeCreated(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := Scan(filepath.Join(blocker, "audio"))
	assert.Error(t, err)
}

func TestScan_RootIsAFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(root, nil, 0o644))

	_, err := Scan(root)
	assert.Error(t, err)
}

func TestScan_Filtering(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Rock", "X", "keep.mp3")
	touch(t, root, "Rock", "X", "upper.MP3")
	touch(t, root, "Rock", "X", "mixed.Mp3")
	touch(t, root, "Rock", "X", "notes.txt")
	touch(t, root, "Rock", "X", ".hidden.mp3")
	touch(t, root, "Rock", ".hidden_author", "a.mp3")
	touch(t, root, ".hidden_genre", "Y", "b.mp3")
	touch(t, root, "loose.mp3")                          // file at genre level
	touch(t, root, "Rock", "loose.mp3")                  // file at author level
	touch(t, root, "Rock", "X", "deeper", "nested.mp3")  // too deep
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Rock", "X", "dir.mp3"), 0o755))

	c, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, titles(c))
}

func TestScan_DiscoveryOrder(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Jazz", "B", "z.mp3")
	touch(t, root, "Jazz", "A", "y.mp3")
	touch(t, root, "Blues", "C", "x.mp3")
	touch(t, root, "Blues", "C", "w.mp3")

	c, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"w", "x", "y", "z"}, titles(c))
	assert.Equal(t, []string{"Blues", "Jazz"}, c.Genres())
}

func TestScan_DuplicateTitlesAreKept(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Rock", "X", "same.mp3")
	touch(t, root, "Pop", "Y", "same.mp3")

	c, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestScan_FollowsSymlinkedDirectories(t *testing.T) {
	root := t.TempDir()
	elsewhere := t.TempDir()
	touch(t, elsewhere, "Z", "linked.mp3")
	if err := os.Symlink(elsewhere, filepath.Join(root, "Linked")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	c, err := Scan(root)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	got, _ := c.Get(0)
	assert.Equal(t, "Linked", got.Genre)
	assert.Equal(t, "Z", got.Author)
}

func TestScan_DurationProber(t *testing.T) {
	root := t.TempDir()
	good := touch(t, root, "Rock", "X", "good.mp3")
	touch(t, root, "Rock", "X", "bad.mp3")

	prober := func(path string) (time.Duration, error) {
		if path == good {
			return 3 * time.Minute, nil
		}
		return 0, errors.New("probe failed")
	}

	c, err := Scan(root, WithDurationProber(prober))
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	for _, tr := range c.Tracks() {
		if tr.Path == good {
			assert.Equal(t, 3*time.Minute, tr.Duration)
		} else {
			assert.Zero(t, tr.Duration, "probe failure keeps the entry with no duration")
		}
	}
}

func TestScan_KeepsNonUTF8Names(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Rock", "X", "ok.mp3")
	raw := filepath.Join(root, "Rock", "X", "Caf\xe9_Song.mp3")
	if err := os.WriteFile(raw, nil, 0o644); err != nil {
		t.Skipf("filesystem rejects non-UTF-8 names: %v", err)
	}

	c, err := Scan(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Caf\xe9 Song", "ok"}, titles(c))
}

func TestScan_UnreadableDirectoriesAreSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}

	root := t.TempDir()
	touch(t, root, "Blues", "A", "kept_one.mp3")
	touch(t, root, "Jazz", "Locked", "hidden.mp3")
	touch(t, root, "Jazz", "Open", "kept_two.mp3")
	touch(t, root, "Rock", "X", "hidden.mp3")

	lockedGenre := filepath.Join(root, "Rock")
	lockedAuthor := filepath.Join(root, "Jazz", "Locked")
	for _, dir := range []string{lockedGenre, lockedAuthor} {
		require.NoError(t, os.Chmod(dir, 0o000))
		t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })
	}

	c, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"kept one", "kept two"}, titles(c))
}
