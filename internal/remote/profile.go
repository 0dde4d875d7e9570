package remote

import (
	"context"
	"fmt"
	"strings"

	"podrelay/internal/podcast"
)

const profileQuery = `
query Profile($username: String!) {
  user(username: $username) {
    displayName
    imageUrl
    sponsorshipPriceCents
    location
    bio
  }
}`

const playlistQuery = `
query Playlist($username: String!, $slug: String!) {
  playlist(username: $username, slug: $slug) {
    title
    imageUrl
    owner { displayName imageUrl }
  }
}`

type profileQueryData struct {
	User struct {
		DisplayName           string `json:"displayName"`
		ImageURL              string `json:"imageUrl"`
		SponsorshipPriceCents int64  `json:"sponsorshipPriceCents"`
		Location              string `json:"location"`
		Bio                   string `json:"bio"`
	} `json:"user"`
}

type playlistQueryData struct {
	Playlist struct {
		Title    string `json:"title"`
		ImageURL string `json:"imageUrl"`
		Owner    struct {
			DisplayName string `json:"displayName"`
			ImageURL    string `json:"imageUrl"`
		} `json:"owner"`
	} `json:"playlist"`
}

// fetchFeedMeta resolves the channel-level metadata for ms (spec §4.4's
// "feed-level metadata"): a profile query for stream/shows/favorites/
// history, or a playlist query (falling back to the owner's picture when
// the playlist has none) for playlists.
func (c *Client) fetchFeedMeta(ctx context.Context, ms podcast.MusicSet, subscribedUsernames map[string]bool) (podcast.FeedMeta, error) {
	if ms.MusicType == podcast.MusicTypePlaylist {
		return c.fetchPlaylistMeta(ctx, ms)
	}
	return c.fetchProfileMeta(ctx, ms, subscribedUsernames)
}

func (c *Client) fetchProfileMeta(ctx context.Context, ms podcast.MusicSet, subscribedUsernames map[string]bool) (podcast.FeedMeta, error) {
	var data profileQueryData
	if err := c.do(ctx, profileQuery, map[string]any{"username": ms.Username}, &data); err != nil {
		return podcast.FeedMeta{}, err
	}

	var descParts []string
	if data.User.SponsorshipPriceCents > 0 && !subscribedUsernames[ms.Username] {
		price := float64(data.User.SponsorshipPriceCents) / 100
		descParts = append(descParts, fmt.Sprintf("Support %s! Subscribe for $%.2f/month", data.User.DisplayName, price))
	}
	if data.User.Location != "" {
		descParts = append(descParts, data.User.Location)
	}
	if data.User.Bio != "" {
		descParts = append(descParts, data.User.Bio)
	}

	return podcast.FeedMeta{
		UserID:             ms.Username,
		Title:              fmt.Sprintf("%s's %s", data.User.DisplayName, ms.MusicType),
		Link:               fmt.Sprintf("%s/%s/%s/", c.webBase, ms.Username, ms.MusicType),
		Language:           "en-us",
		Description:        strings.Join(descParts, "\n"),
		AuthorAndOwnerName: data.User.DisplayName,
		ImageURL:           data.User.ImageURL,
	}, nil
}

func (c *Client) fetchPlaylistMeta(ctx context.Context, ms podcast.MusicSet) (podcast.FeedMeta, error) {
	var data playlistQueryData
	variables := map[string]any{"username": ms.Username, "slug": ms.PlaylistSlug}
	if err := c.do(ctx, playlistQuery, variables, &data); err != nil {
		return podcast.FeedMeta{}, err
	}

	imageURL := data.Playlist.ImageURL
	if imageURL == "" {
		imageURL = data.Playlist.Owner.ImageURL
	}

	return podcast.FeedMeta{
		UserID:             ms.Username,
		Title:              data.Playlist.Title,
		Link:               fmt.Sprintf("%s/%s/playlists/%s/", c.webBase, ms.Username, ms.PlaylistSlug),
		Language:           "en-us",
		Description:        data.Playlist.Title,
		AuthorAndOwnerName: data.Playlist.Owner.DisplayName,
		ImageURL:           imageURL,
	}, nil
}
