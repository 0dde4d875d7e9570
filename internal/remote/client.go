// Package remote implements component D: querying the remote's public
// GraphQL API with cursor pagination, decoding obfuscated enclosure URLs,
// and resolving per-episode HEAD metadata concurrently; and feeds component
// E (internal/podcast's Build) with the assembled candidates.
package remote

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"podrelay/internal/apperr"
	"podrelay/internal/podcast"
)

const (
	pageSize          = 20
	queryTimeout      = 30 * time.Second
	headProbeTimeout  = 10 * time.Second
	maxConcurrentHEAD = 8
)

// Client is the process-wide GraphQL + HEAD-probe client (spec §4.4: "one
// client instance is reused across a process to share its underlying
// connection pool").
type Client struct {
	endpoint   string
	webBase    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	sem        *semaphore.Weighted
}

// New builds a Client. endpoint is the remote's GraphQL URL; webBase is the
// public web root used to synthesize profile/playlist links (spec §4.4's
// feed-level metadata link field).
func New(endpoint, webBase, userAgent string, limiter *rate.Limiter) *Client {
	return &Client{
		endpoint:  endpoint,
		webBase:   webBase,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: queryTimeout,
		},
		limiter: limiter,
		sem:     semaphore.NewWeighted(maxConcurrentHEAD),
	}
}

// localExistsFunc reports whether an episode's local file already exists,
// so the caller can skip a HEAD probe and fill metadata from disk instead
// (spec §4.4).
type localExistsFunc func(localPath string) (exists bool, size int64, modTime time.Time, mimeType string, ok bool)

// Query is the synchronous façade spec §4.4 describes: it runs the full
// pagination + decode + HEAD-resolution pipeline on a background goroutine
// and blocks on a single-slot handoff with a 30-second timeout.
func (c *Client) Query(ctx context.Context, ms podcast.MusicSet, hostPort string, episodeMaxCount int, subscribedUsernames map[string]bool, localExists localExistsFunc) (podcast.Podcast, error) {
	type result struct {
		podcast podcast.Podcast
		err     error
	}
	ch := make(chan result, 1)

	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	go func() {
		p, err := c.runQuery(queryCtx, ms, hostPort, episodeMaxCount, subscribedUsernames, localExists)
		ch <- result{p, err}
	}()

	select {
	case res := <-ch:
		return res.podcast, res.err
	case <-queryCtx.Done():
		return podcast.Podcast{}, apperr.Remote("remote query timed out", queryCtx.Err())
	}
}

func (c *Client) runQuery(ctx context.Context, ms podcast.MusicSet, hostPort string, episodeMaxCount int, subscribedUsernames map[string]bool, localExists localExistsFunc) (podcast.Podcast, error) {
	meta, err := c.fetchFeedMeta(ctx, ms, subscribedUsernames)
	if err != nil {
		return podcast.Podcast{}, err
	}

	rawEpisodes, err := c.paginate(ctx, ms, episodeMaxCount)
	if err != nil {
		return podcast.Podcast{}, err
	}

	candidates, err := c.buildCandidates(ctx, ms, hostPort, rawEpisodes, localExists)
	if err != nil {
		return podcast.Podcast{}, err
	}

	return podcast.Build(meta, time.Now(), candidates), nil
}
