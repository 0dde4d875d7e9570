package responders

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"podrelay/internal/config"
	"podrelay/internal/downloadqueue"
	"podrelay/internal/fsresolve"
	"podrelay/internal/httpresp"
	"podrelay/internal/podcast"
	"podrelay/internal/remote"
)

// testEnclosureKey mirrors internal/remote's unexported enclosureKey, since
// tests here can't reach across the package boundary to reuse it.
const testEnclosureKey = "pR3l@yXk9mQwZt2s"

func xorEncodeForTest(plain string) string {
	raw := []byte(plain)
	out := make([]byte, len(raw))
	for i, b := range raw {
		out[i] = b ^ testEnclosureKey[i%len(testEnclosureKey)]
	}
	return base64.StdEncoding.EncodeToString(out)
}

func containsSubstring(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

func newTestPodcastXML(t *testing.T, gqlURL string) (*PodcastXML, string) {
	t.Helper()
	dir := t.TempDir()
	resolver, err := fsresolve.New(dir)
	require.NoError(t, err)

	defaultViews, err := podcast.OpenDefaultViewStore(t.TempDir(), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = defaultViews.Close() })

	return &PodcastXML{
		Resolver:     resolver,
		Remote:       remote.New(gqlURL, "https://remote.example", "podrelay/1.0-test", rate.NewLimiter(rate.Inf, 1)),
		PodcastCache: podcast.NewCache[podcast.Podcast](time.Hour, nil),
		DefaultViews: defaultViews,
		Queue:        downloadqueue.New(2, false, "podrelay/1.0-test", noopFreshenerForTests{}),
		Settings:     config.New(),
	}, dir
}

type noopFreshenerForTests struct{}

func (noopFreshenerForTests) Touch(string) error                { return nil }
func (noopFreshenerForTests) AddWatch(string, string) error      { return nil }
func (noopFreshenerForTests) LastUsed(string) (time.Time, error) { return time.Time{}, nil }
func (noopFreshenerForTests) Watches(string) ([]string, error)   { return nil, nil }

func TestPodcastXMLRespondsWithRSS(t *testing.T) {
	audioSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mp4")
		w.Header().Set("Content-Length", "2048")
		w.Header().Set("Last-Modified", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Format(http.TimeFormat))
		w.WriteHeader(http.StatusOK)
	}))
	defer audioSrv.Close()

	encoded := xorEncodeForTest(audioSrv.URL + "/ep.m4a")

	gqlSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var resp map[string]any
		switch {
		case containsSubstring(req.Query, "Profile"):
			resp = map[string]any{"data": map[string]any{"user": map[string]any{"displayName": "Alice"}}}
		case containsSubstring(req.Query, "MusicPage"):
			resp = map[string]any{"data": map[string]any{"musicSet": map[string]any{"edges": map[string]any{
				"edges": []map[string]any{
					{
						"cursor": "c1",
						"node": map[string]any{
							"title": "episode one", "slug": "episode-one", "description": "d",
							"createdAt": "2026-01-01T00:00:00Z", "durationSeconds": 60,
							"isSubscriberExclusive": false, "isPlayable": true,
							"streamInfo": map[string]any{"url": encoded},
						},
					},
				},
				"pageInfo": map[string]any{"hasNextPage": false, "endCursor": ""},
			}}}}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer gqlSrv.Close()

	px, _ := newTestPodcastXML(t, gqlSrv.URL)
	req := parseTestRequest(t, "GET /alice/shows.xml HTTP/1.1\r\nHost: localhost:6499\r\n\r\n")
	buf := &bytes.Buffer{}
	w := httpresp.NewWriter(bufio.NewWriter(buf))

	require.NoError(t, px.Respond(context.Background(), req, w))
	out := buf.String()
	assert.Contains(t, out, "Content-Type: text/xml; charset=UTF-8\r\n")
	assert.Contains(t, out, "episode one")
}

func TestPodcastXMLReturnsNotFoundWhenNoEpisodes(t *testing.T) {
	gqlSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"user":     map[string]any{"displayName": "Bob"},
				"musicSet": map[string]any{"edges": map[string]any{"edges": []any{}, "pageInfo": map[string]any{"hasNextPage": false}}},
			},
		})
	}))
	defer gqlSrv.Close()

	px, _ := newTestPodcastXML(t, gqlSrv.URL)
	req := parseTestRequest(t, "GET /bob/shows.xml HTTP/1.1\r\nHost: localhost:6499\r\n\r\n")
	buf := &bytes.Buffer{}
	w := httpresp.NewWriter(bufio.NewWriter(buf))

	err := px.Respond(context.Background(), req, w)
	require.Error(t, err)
}
