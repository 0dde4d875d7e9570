package podcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalRSSIncludesDeclarationAndItems(t *testing.T) {
	p := Podcast{
		Title:              "alice's shows",
		Link:               "https://remote.example/alice/shows/",
		Language:           "en-us",
		Description:        "alice's shows",
		AuthorAndOwnerName: "alice",
		CreatedAt:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Episodes: []Episode{
			{
				Title:   "track one",
				Link:    "https://remote.example/alice/shows/track-one",
				PubDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
				Enclosure: Enclosure{
					LocalURL:    "http://localhost:6499/alice/track-one.m4a",
					LengthBytes: 1024,
					MimeType:    "audio/mp4",
				},
			},
		},
	}

	body, err := MarshalRSS(p)
	require.NoError(t, err)
	s := string(body)
	assert.Contains(t, s, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, s, "<title>alice&#39;s shows</title>")
	assert.Contains(t, s, `url="http://localhost:6499/alice/track-one.m4a"`)
	assert.Contains(t, s, `length="1024"`)
}

func TestMarshalRSSEmptyEpisodesStillValid(t *testing.T) {
	p := Podcast{Title: "alice's shows", CreatedAt: time.Now()}
	body, err := MarshalRSS(p)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}
