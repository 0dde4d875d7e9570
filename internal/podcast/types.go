// Package podcast holds the feed-level and episode-level data model (spec
// §3), the in-memory podcast cache (F), the RSS serializer, and the
// MusicSet request-shape parsing that the podcast-XML responder depends on.
package podcast

import (
	"strings"
	"time"
)

// MusicType enumerates the feed variants a MusicSet may request.
type MusicType string

const (
	MusicTypeUnset     MusicType = ""
	MusicTypeStream    MusicType = "stream"
	MusicTypeShows     MusicType = "shows"
	MusicTypeFavorites MusicType = "favorites"
	MusicTypeHistory   MusicType = "history"
	MusicTypePlaylist  MusicType = "playlist"
)

// musicTypeAliases maps the path-shape vocabulary (spec §4.3/§6) onto the
// canonical MusicType the remote client understands (spec §3: "uploads →
// shows", "listens → history").
var musicTypeAliases = map[string]MusicType{
	"stream":    MusicTypeStream,
	"shows":     MusicTypeShows,
	"uploads":   MusicTypeShows,
	"favorites": MusicTypeFavorites,
	"history":   MusicTypeHistory,
	"listens":   MusicTypeHistory,
}

// MusicSet identifies a feed to build: a username, an optional music type,
// and (for playlists) a slug.
type MusicSet struct {
	Username     string
	MusicType    MusicType
	PlaylistSlug string
}

// NewMusicSet validates and normalizes the triple per spec §3: username is
// required and has any trailing possessive "'s" stripped; playlistSlug is
// required iff musicType is playlist.
func NewMusicSet(username string, musicType MusicType, playlistSlug string) (MusicSet, bool) {
	username = trimPossessive(username)
	if username == "" {
		return MusicSet{}, false
	}
	if musicType == MusicTypePlaylist && playlistSlug == "" {
		return MusicSet{}, false
	}
	if musicType != MusicTypePlaylist && playlistSlug != "" {
		return MusicSet{}, false
	}
	return MusicSet{Username: username, MusicType: musicType, PlaylistSlug: playlistSlug}, true
}

// possessiveSuffixes lists the apostrophe variants a trailing "'s" can take
// once a path segment has been percent-decoded: straight ', right single
// quote ’, and left single quote ‘ (some clients send the latter in place of
// a true apostrophe).
var possessiveSuffixes = []string{"'s", "’s", "‘s"}

func trimPossessive(username string) string {
	for _, suffix := range possessiveSuffixes {
		if trimmed := strings.TrimSuffix(username, suffix); trimmed != username {
			return trimmed
		}
	}
	return username
}

// ResolveMusicType maps a path-shape token to a canonical MusicType,
// returning false if the token isn't recognized (spec §6's recognized set).
func ResolveMusicType(token string) (MusicType, bool) {
	mt, ok := musicTypeAliases[strings.ToLower(token)]
	return mt, ok
}

// FingerprintKey is the podcast-cache key for a MusicSet: "username's
// musicType" or "username's playlistSlug" (spec §3).
func (m MusicSet) FingerprintKey() string {
	if m.MusicType == MusicTypePlaylist {
		return m.Username + "'s " + m.PlaylistSlug
	}
	return m.Username + "'s " + string(m.MusicType)
}

// Enclosure describes the audio file a podcast episode points at.
type Enclosure struct {
	LocalURL     string
	RemoteURL    string
	LengthBytes  int64
	LastModified time.Time
	MimeType     string
}

// Episode is one item in a Podcast's feed.
type Episode struct {
	Title           string
	Description     string
	Link            string
	PubDate         time.Time
	Author          string
	DurationSeconds int64
	ImageURL        string
	Enclosure       Enclosure
}

// Podcast is the assembled feed-level value a podcast-XML response
// serializes (spec §3).
type Podcast struct {
	UserID             string
	Title              string
	Link               string
	Language           string
	Description        string
	AuthorAndOwnerName string
	ImageURL           string
	CreatedAt          time.Time
	Episodes           []Episode
}

// Download is the unit the download queue (G) operates on. Identity for
// deduplication uses (LengthBytes, LastModified, LocalFilePath) —
// RemoteURL is intentionally excluded (spec §3: the remote serves identical
// bytes from many shard hostnames).
type Download struct {
	RemoteURL     string
	LengthBytes   int64
	LastModified  time.Time
	LocalFilePath string
}

// Equal implements the identity spec §3 defines for queue deduplication.
func (d Download) Equal(other Download) bool {
	return d.LengthBytes == other.LengthBytes &&
		d.LastModified.Equal(other.LastModified) &&
		d.LocalFilePath == other.LocalFilePath
}

// DownloadFor derives the Download the queue should track for ep, given its
// already-resolved local file path.
func DownloadFor(ep Episode, localFilePath string) Download {
	return Download{
		RemoteURL:     ep.Enclosure.RemoteURL,
		LengthBytes:   ep.Enclosure.LengthBytes,
		LastModified:  ep.Enclosure.LastModified,
		LocalFilePath: localFilePath,
	}
}
