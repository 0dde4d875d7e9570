package remote

import (
	"context"

	"podrelay/internal/podcast"
)

const defaultViewQuery = `
query DefaultView($username: String!) {
  user(username: $username) {
    defaultMusicType
  }
}`

type defaultViewQueryData struct {
	User struct {
		DefaultMusicType string `json:"defaultMusicType"`
	} `json:"user"`
}

// ResolveDefaultView asks the remote which MusicType a bare username feed
// should resolve to (spec §4.3 step 1). Falls back to MusicTypeShows if the
// remote reports a type this client doesn't recognize.
func (c *Client) ResolveDefaultView(ctx context.Context, username string) (podcast.MusicType, error) {
	var data defaultViewQueryData
	if err := c.do(ctx, defaultViewQuery, map[string]any{"username": username}, &data); err != nil {
		return "", err
	}
	if mt, ok := podcast.ResolveMusicType(data.User.DefaultMusicType); ok {
		return mt, nil
	}
	return podcast.MusicTypeShows, nil
}
