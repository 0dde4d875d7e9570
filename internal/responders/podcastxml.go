package responders

import (
	"context"
	"mime"
	"os"
	"path/filepath"
	"time"

	"podrelay/internal/apperr"
	"podrelay/internal/config"
	"podrelay/internal/downloadqueue"
	"podrelay/internal/fsresolve"
	"podrelay/internal/httprequest"
	"podrelay/internal/httpresp"
	"podrelay/internal/metrics"
	"podrelay/internal/podcast"
	"podrelay/internal/remote"
)

// PodcastXML implements the podcast-XML responder (spec §4.3): builds a
// MusicSet from the request path, resolves it to a Podcast via the
// default-view and podcast caches (falling back to the remote client on a
// miss), enqueues its episodes into the download queue, and serializes the
// result as RSS.
type PodcastXML struct {
	Resolver     *fsresolve.Resolver
	Remote       *remote.Client
	PodcastCache *podcast.Cache[podcast.Podcast]
	DefaultViews *podcast.DefaultViewStore
	Queue        *downloadqueue.Queue
	Settings     *config.Settings
}

func (p *PodcastXML) Respond(ctx context.Context, req *httprequest.Request, w *httpresp.Writer) error {
	ms, ok := parsePodcastPath(req.Path)
	if !ok {
		return apperr.NotFound("no such podcast")
	}
	return p.respondToMusicSet(ctx, req, w, ms)
}

func (p *PodcastXML) respondToMusicSet(ctx context.Context, req *httprequest.Request, w *httpresp.Writer, ms podcast.MusicSet) error {
	if ms.MusicType == podcast.MusicTypeUnset {
		mt, err := p.resolveDefaultView(ctx, ms.Username)
		if err != nil {
			return err
		}
		ms.MusicType = mt
	}

	cacheKey := ms.FingerprintKey()
	pc, hit := p.PodcastCache.Get(cacheKey)
	if hit {
		metrics.PodcastCacheHitsTotal.Inc()
	} else {
		metrics.PodcastCacheMissesTotal.Inc()
		fetched, err := p.fetchPodcast(ctx, req, ms)
		if err != nil {
			return err
		}
		p.PodcastCache.Insert(cacheKey, fetched, true)
		pc = fetched
	}

	if len(pc.Episodes) == 0 {
		return apperr.NotFound("podcast has no episodes")
	}

	if notMod, perr := httpresp.NotModifiedSince(req.Header("If-Modified-Since"), pc.CreatedAt); perr == nil && notMod {
		return w.NotModified()
	}

	newlyEnqueued := false
	for _, ep := range pc.Episodes {
		localPath, withinRoot, err := p.Resolver.GetLocalPath(ep.Enclosure.LocalURL)
		if err != nil || !withinRoot {
			continue
		}
		if p.Queue.Enqueue(podcast.DownloadFor(ep, localPath)) {
			newlyEnqueued = true
		}
	}
	if newlyEnqueued {
		p.Queue.ProcessQueue(ctx, nil)
	}

	body, err := podcast.MarshalRSS(pc)
	if err != nil {
		return apperr.LocalIO("failed to serialize podcast", err)
	}
	if err := w.WriteOK(pc.CreatedAt, "text/xml; charset=UTF-8", int64(len(body)), nil); err != nil {
		return err
	}
	if req.IsHead() {
		return w.Flush()
	}
	return w.WriteBytes(body)
}

func (p *PodcastXML) resolveDefaultView(ctx context.Context, username string) (podcast.MusicType, error) {
	if mt, ok := p.DefaultViews.Get(username); ok {
		return mt, nil
	}
	mt, err := p.Remote.ResolveDefaultView(ctx, username)
	if err != nil {
		return "", err
	}
	_ = p.DefaultViews.Set(username, mt)
	return mt, nil
}

func (p *PodcastXML) fetchPodcast(ctx context.Context, req *httprequest.Request, ms podcast.MusicSet) (podcast.Podcast, error) {
	episodeMaxCount, _ := p.Settings.GetInt("episode_max_count")
	hostPort := req.Host()
	if hostPort == "" {
		hostPort = p.Settings.Get("http_hostname") + ":" + p.Settings.Get("http_port")
	}
	return p.Remote.Query(ctx, ms, hostPort, episodeMaxCount, p.Settings.SubscribedUsernames(), p.localExists)
}

// localExists answers the remote client's per-episode "does this already
// exist locally" question by resolving the synthesized local URL back to a
// filesystem path and stat-ing it, so a HEAD probe can be skipped for
// episodes already on disk (spec §4.4).
func (p *PodcastXML) localExists(localURL string) (exists bool, size int64, modTime time.Time, mimeType string, ok bool) {
	path, withinRoot, err := p.Resolver.GetLocalPath(localURL)
	if err != nil || !withinRoot {
		return false, 0, time.Time{}, "", false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, 0, time.Time{}, "", true
	}
	guessed := mime.TypeByExtension(filepath.Ext(path))
	if guessed == "" {
		guessed = "application/octet-stream"
	}
	return true, info.Size(), info.ModTime(), guessed, true
}
