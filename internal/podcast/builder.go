package podcast

import "time"

// FeedMeta carries the channel-level metadata the remote client resolves
// via its separate profile/playlist query (spec §4.4's "feed-level
// metadata").
type FeedMeta struct {
	UserID             string
	Title              string
	Link               string
	Language           string
	Description        string
	AuthorAndOwnerName string
	ImageURL           string
}

// EpisodeCandidate is what the remote client hands the builder per item,
// already decoded and (where available) HEAD-resolved, but not yet filtered
// for completeness — that's Build's job.
type EpisodeCandidate struct {
	Title           string
	Description     string
	Link            string
	Author          string
	PubDate         time.Time
	DurationSeconds int64
	ImageURL        string
	Enclosure       Enclosure
}

// Build assembles feed-level and per-episode metadata into a Podcast value
// (component E). Candidates whose enclosure LastModified is still zero
// (asynchronous HEAD probes that never completed, spec §3/§4.4) are
// dropped rather than published with missing metadata.
func Build(meta FeedMeta, createdAt time.Time, candidates []EpisodeCandidate) Podcast {
	p := Podcast{
		UserID:             meta.UserID,
		Title:              meta.Title,
		Link:               meta.Link,
		Language:           meta.Language,
		Description:        meta.Description,
		AuthorAndOwnerName: meta.AuthorAndOwnerName,
		ImageURL:           meta.ImageURL,
		CreatedAt:          createdAt,
	}

	for _, c := range candidates {
		if c.Enclosure.LastModified.IsZero() {
			continue
		}
		p.Episodes = append(p.Episodes, Episode{
			Title:           c.Title,
			Description:     c.Description,
			Link:            c.Link,
			PubDate:         c.PubDate,
			Author:          c.Author,
			DurationSeconds: c.DurationSeconds,
			ImageURL:        c.ImageURL,
			Enclosure:       c.Enclosure,
		})
	}
	return p
}
