package track

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		expected string
	}{
		{
			name:     "underscores become spaces",
			filename: "Song_One.mp3",
			expected: "Song One",
		},
		{
			name:     "only last extension is stripped",
			filename: "live.at.home.mp3",
			expected: "live.at.home",
		},
		{
			name:     "no extension",
			filename: "untitled",
			expected: "untitled",
		},
		{
			name:     "leading and trailing underscores",
			filename: "_intro_.mp3",
			expected: " intro ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TitleFromFilename(tt.filename))
		})
	}
}

func TestNewAudioFile(t *testing.T) {
	f, err := NewAudioFile("/music/Rock/X/Song_One.mp3", "Rock", "X")
	require.NoError(t, err)

	assert.Equal(t, "/music/Rock/X/Song_One.mp3", f.Path)
	assert.Equal(t, "Song One", f.Title)
	assert.Equal(t, "X", f.Author)
	assert.Equal(t, "Rock", f.Genre)
	assert.Zero(t, f.Duration)
	assert.Equal(t, "X - Song One", f.DisplayName())
}

func TestNewAudioFile_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		genre  string
		author string
	}{
		{name: "empty title", path: "/music/Rock/X/.mp3", genre: "Rock", author: "X"},
		{name: "empty author", path: "/music/Rock/X/a.mp3", genre: "Rock", author: ""},
		{name: "empty genre", path: "/music/Rock/X/a.mp3", genre: "", author: "X"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAudioFile(tt.path, tt.genre, tt.author)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidAudioFile))
		})
	}
}

func TestAudioFile_WithDuration(t *testing.T) {
	f, err := NewAudioFile("/m/Jazz/Y/b.mp3", "Jazz", "Y")
	require.NoError(t, err)

	g := f.WithDuration(3 * time.Minute)
	assert.Equal(t, 3*time.Minute, g.Duration)
	assert.Zero(t, f.Duration, "original value must not change")
}

func TestNewAudioFile_NonUTF8Names(t *testing.T) {
	f, err := NewAudioFile("/music/Rock/\xff\xfe/Caf\xe9_Song.mp3", "Rock", "\xff\xfe")
	require.NoError(t, err)
	assert.Equal(t, "Caf\xe9 Song", f.Title)
	assert.Equal(t, "\xff\xfe", f.Author)
}

func TestNewAudioFile_FirstEmptyFieldReported(t *testing.T) {
	for i := 0; i < 20; i++ {
		_, err := NewAudioFile("/music/.mp3", "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty title")
	}
}
