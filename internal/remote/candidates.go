package remote

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"podrelay/internal/apperr"
	"podrelay/internal/podcast"
)

// buildCandidates applies the per-episode filtering, enclosure-URL
// decoding, local-URL synthesis, and HEAD-metadata resolution spec §4.4
// describes, turning raw GraphQL nodes into podcast.EpisodeCandidate
// values ready for podcast.Build.
func (c *Client) buildCandidates(ctx context.Context, ms podcast.MusicSet, hostPort string, nodes []rawEpisodeNode, localExists localExistsFunc) ([]podcast.EpisodeCandidate, error) {
	candidates := make([]podcast.EpisodeCandidate, len(nodes))
	seenEnclosureURLs := make(map[string]bool)
	needsHEAD := make([]int, 0, len(nodes))

	for i, n := range nodes {
		if n.SubscriberExclusive || !n.Playable {
			continue // skipped silently; the episode gets no candidate
		}
		if n.StreamInfo.URL == "" {
			return nil, apperr.Remote(fmt.Sprintf("episode %q missing streamInfo.url", n.Title), nil)
		}

		remoteURL, err := decodeEnclosureURL(n.StreamInfo.URL)
		if err != nil {
			continue // synchronous decode failure: drop just this episode (spec §4.4)
		}

		if ms.MusicType == podcast.MusicTypeHistory {
			if seenEnclosureURLs[remoteURL] {
				continue
			}
			seenEnclosureURLs[remoteURL] = true
		}

		ext := path.Ext(strings.SplitN(remoteURL, "?", 2)[0])
		localURL := fmt.Sprintf("http://%s/%s/%s%s", hostPort, ms.Username, n.Slug, ext)

		createdAt, _ := time.Parse(time.RFC3339, n.CreatedAt)

		candidates[i] = podcast.EpisodeCandidate{
			Title:           n.Title,
			Description:     n.Description,
			Link:            localURL,
			Author:          ms.Username,
			PubDate:         createdAt,
			DurationSeconds: n.DurationSeconds,
			ImageURL:        n.ArtworkURL,
			Enclosure: podcast.Enclosure{
				LocalURL:  localURL,
				RemoteURL: remoteURL,
			},
		}
		needsHEAD = append(needsHEAD, i)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentHEAD)

	for _, idx := range needsHEAD {
		idx := idx
		cand := candidates[idx]
		if cand.Enclosure.RemoteURL == "" {
			continue
		}

		if exists, size, modTime, mimeType, ok := localExistsFromURL(localExists, cand); ok && exists {
			candidates[idx].Enclosure.LengthBytes = size
			candidates[idx].Enclosure.LastModified = modTime
			candidates[idx].Enclosure.MimeType = mimeType
			continue
		}

		g.Go(func() error {
			if err := c.sem.Acquire(gctx, 1); err != nil {
				return nil
			}
			defer c.sem.Release(1)

			probeCtx, cancel := context.WithTimeout(gctx, headProbeTimeout)
			defer cancel()

			length, modTime, mimeType, err := c.headProbe(probeCtx, cand.Enclosure.RemoteURL)
			if err != nil {
				return nil // asynchronous HEAD errors just leave LastModified unset; dropped later
			}
			candidates[idx].Enclosure.LengthBytes = length
			candidates[idx].Enclosure.LastModified = modTime
			candidates[idx].Enclosure.MimeType = mimeType
			return nil
		})
	}

	doneCh := make(chan error, 1)
	go func() { doneCh <- g.Wait() }()

	select {
	case err := <-doneCh:
		if err != nil {
			return nil, apperr.Remote("HEAD probe fan-out failed", err)
		}
	case <-time.After(2 * queryTimeout):
		return nil, apperr.Remote("HEAD probe fan-out did not finish in time", context.DeadlineExceeded)
	}

	out := make([]podcast.EpisodeCandidate, 0, len(candidates))
	for _, cand := range candidates {
		if cand.Title == "" && cand.Enclosure.RemoteURL == "" {
			continue // filtered out above (subscriber-exclusive, not playable, decode failure)
		}
		out = append(out, cand)
	}
	return out, nil
}

func localExistsFromURL(localExists localExistsFunc, cand podcast.EpisodeCandidate) (exists bool, size int64, modTime time.Time, mimeType string, ok bool) {
	if localExists == nil {
		return false, 0, time.Time{}, "", false
	}
	return localExists(cand.Enclosure.LocalURL)
}

// headProbe issues a HEAD request against remoteURL with a 10-second
// connect/read timeout (spec §4.4) and validates Content-Type/Content-Length/
// Last-Modified are all present and well-formed.
func (c *Client) headProbe(ctx context.Context, remoteURL string) (length int64, modTime time.Time, mimeType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, remoteURL, nil)
	if err != nil {
		return 0, time.Time{}, "", err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", remoteURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, time.Time{}, "", err
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	parsedType, _, _ := mime.ParseMediaType(contentType)
	if !strings.HasPrefix(parsedType, "audio/") && !strings.HasPrefix(parsedType, "video/") {
		return 0, time.Time{}, "", fmt.Errorf("remote: content-type %q is not audio/video", contentType)
	}
	if resp.ContentLength <= 0 {
		return 0, time.Time{}, "", fmt.Errorf("remote: missing Content-Length")
	}
	lastModifiedHeader := resp.Header.Get("Last-Modified")
	if lastModifiedHeader == "" {
		return 0, time.Time{}, "", fmt.Errorf("remote: missing Last-Modified")
	}
	lastModified, err := http.ParseTime(lastModifiedHeader)
	if err != nil {
		return 0, time.Time{}, "", fmt.Errorf("remote: unparsable Last-Modified: %w", err)
	}

	return resp.ContentLength, lastModified, parsedType, nil
}
