// Package responders implements component C: the handler for each of the
// five request shapes the router (component I) dispatches to. Every
// responder honors HEAD by omitting the body while still emitting the
// headers a GET would produce (spec §4.3).
package responders

import (
	"context"
	"strings"

	"podrelay/internal/httprequest"
	"podrelay/internal/httpresp"
	"podrelay/internal/podcast"
)

// Responder is the shape every handler implements. The teacher's worker
// wraps the socket as a separate ISO-8859-1 reader and UTF-8 writer plus a
// raw byte stream (spec §4.7 step 1); here a single buffered *httpresp.Writer
// serves both header and body writes, since Go's bufio.Writer carries no
// encoding of its own to separate.
type Responder interface {
	Respond(ctx context.Context, req *httprequest.Request, w *httpresp.Writer) error
}

// recognizedPlaylistTokens lists the path component that introduces a
// playlist slug (spec §6 accepts both the singular and plural form).
var recognizedPlaylistTokens = map[string]bool{"playlist": true, "playlists": true}

// shapeToMusicSet inspects path and, if its components look like
// <user>, <user>/<musicType>, or <user>/playlist(s)/<slug> — with no dot in
// the first component — returns the MusicSet it represents (spec §4.3's
// routing-rewrite rule). It does not consider a trailing ".xml"; callers
// that might be looking at an already-dotted podcast-XML path should strip
// that suffix first via parsePodcastPath.
func shapeToMusicSet(path string) (podcast.MusicSet, bool) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return podcast.MusicSet{}, false
	}
	parts := strings.Split(trimmed, "/")
	user := parts[0]
	if strings.Contains(user, ".") {
		return podcast.MusicSet{}, false
	}

	switch len(parts) {
	case 1:
		return podcast.NewMusicSet(user, podcast.MusicTypeUnset, "")
	case 2:
		mt, ok := podcast.ResolveMusicType(parts[1])
		if !ok {
			return podcast.MusicSet{}, false
		}
		return podcast.NewMusicSet(user, mt, "")
	case 3:
		if !recognizedPlaylistTokens[strings.ToLower(parts[1])] {
			return podcast.MusicSet{}, false
		}
		return podcast.NewMusicSet(user, podcast.MusicTypePlaylist, parts[2])
	default:
		return podcast.MusicSet{}, false
	}
}

// parsePodcastPath strips an optional ".xml" suffix before applying
// shapeToMusicSet, for paths the router already identified as podcast-XML
// requests by their extension.
func parsePodcastPath(path string) (podcast.MusicSet, bool) {
	return shapeToMusicSet(strings.TrimSuffix(path, ".xml"))
}
