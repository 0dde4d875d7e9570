package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podrelay/internal/podcast"
)

func TestResolveDefaultView(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"user": map[string]any{"defaultMusicType": "uploads"}},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	mt, err := c.ResolveDefaultView(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, podcast.MusicTypeShows, mt)
}

func TestResolveDefaultViewUnknownFallsBackToShows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"user": map[string]any{"defaultMusicType": "bogus"}},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	mt, err := c.ResolveDefaultView(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, podcast.MusicTypeShows, mt)
}
