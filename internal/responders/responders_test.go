package responders

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"podrelay/internal/podcast"
)

func TestShapeToMusicSetBareUsername(t *testing.T) {
	ms, ok := shapeToMusicSet("/alice")
	assert.True(t, ok)
	assert.Equal(t, "alice", ms.Username)
	assert.Equal(t, podcast.MusicTypeUnset, ms.MusicType)
}

func TestShapeToMusicSetWithMusicType(t *testing.T) {
	ms, ok := shapeToMusicSet("/alice/shows")
	assert.True(t, ok)
	assert.Equal(t, podcast.MusicTypeShows, ms.MusicType)
}

func TestShapeToMusicSetPlaylist(t *testing.T) {
	ms, ok := shapeToMusicSet("/alice/playlist/road-trip")
	assert.True(t, ok)
	assert.Equal(t, podcast.MusicTypePlaylist, ms.MusicType)
	assert.Equal(t, "road-trip", ms.PlaylistSlug)
}

func TestShapeToMusicSetRejectsDottedFirstComponent(t *testing.T) {
	_, ok := shapeToMusicSet("/track.mp3")
	assert.False(t, ok)
}

func TestShapeToMusicSetRejectsUnknownSecondComponent(t *testing.T) {
	_, ok := shapeToMusicSet("/alice/nonsense")
	assert.False(t, ok)
}

func TestParsePodcastPathStripsXMLSuffix(t *testing.T) {
	ms, ok := parsePodcastPath("/alice/shows.xml")
	assert.True(t, ok)
	assert.Equal(t, "alice", ms.Username)
	assert.Equal(t, podcast.MusicTypeShows, ms.MusicType)
}
