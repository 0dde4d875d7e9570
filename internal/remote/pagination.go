package remote

import (
	"context"

	"podrelay/internal/podcast"
)

// rawEpisodeNode is the subset of a GraphQL edge's node this client reads.
// It mirrors the remote's schema closely enough to decode, not the whole
// shape.
type rawEpisodeNode struct {
	Title               string `json:"title"`
	Slug                string `json:"slug"`
	Description         string `json:"description"`
	CreatedAt           string `json:"createdAt"`
	DurationSeconds     int64  `json:"durationSeconds"`
	ArtworkURL          string `json:"artworkUrl"`
	SubscriberExclusive bool   `json:"isSubscriberExclusive"`
	Playable            bool   `json:"isPlayable"`
	StreamInfo          struct {
		URL string `json:"url"`
	} `json:"streamInfo"`
}

type edgesPage struct {
	Edges []struct {
		Cursor string         `json:"cursor"`
		Node   rawEpisodeNode `json:"node"`
	} `json:"edges"`
	PageInfo struct {
		HasNextPage bool   `json:"hasNextPage"`
		EndCursor   string `json:"endCursor"`
	} `json:"pageInfo"`
}

const pageQuery = `
query MusicPage($username: String!, $musicType: MusicType!, $playlistSlug: String, $first: Int!, $after: String) {
  musicSet(username: $username, musicType: $musicType, playlistSlug: $playlistSlug) {
    edges(first: $first, after: $after) {
      edges { cursor node { title slug description createdAt durationSeconds artworkUrl isSubscriberExclusive isPlayable streamInfo { url } } }
      pageInfo { hasNextPage endCursor }
    }
  }
}`

type pageQueryData struct {
	MusicSet struct {
		Edges edgesPage `json:"edges"`
	} `json:"musicSet"`
}

// paginate walks cursor-paginated edges pageSize items per page, stopping
// when either hasNextPage is false or episodeMaxCount is reached (spec
// §4.4). episodeMaxCount <= 0 means unlimited.
func (c *Client) paginate(ctx context.Context, ms podcast.MusicSet, episodeMaxCount int) ([]rawEpisodeNode, error) {
	var (
		out    []rawEpisodeNode
		cursor string
	)

	for {
		var data pageQueryData
		variables := map[string]any{
			"username":     ms.Username,
			"musicType":    string(ms.MusicType),
			"playlistSlug": ms.PlaylistSlug,
			"first":        pageSize,
			"after":        cursor,
		}
		if err := c.do(ctx, pageQuery, variables, &data); err != nil {
			return nil, err
		}

		for _, e := range data.MusicSet.Edges.Edges {
			out = append(out, e.Node)
			if episodeMaxCount > 0 && len(out) >= episodeMaxCount {
				return out, nil
			}
		}

		if !data.MusicSet.Edges.PageInfo.HasNextPage {
			return out, nil
		}
		cursor = data.MusicSet.Edges.PageInfo.EndCursor
	}
}
