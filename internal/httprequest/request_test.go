package httprequest

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasicGet(t *testing.T) {
	raw := "GET /alice/shows.xml HTTP/1.1\r\nHost: localhost:6499\r\nUser-Agent: Overcast/1.0\r\n\r\n"
	req, err := Parse(bufio.NewReader(strings.NewReader(raw)))
	require.NoError(t, err)
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/alice/shows.xml", req.Path)
	assert.Equal(t, "localhost:6499", req.Host())
	assert.False(t, req.IsHead())
	assert.True(t, req.IsFromKnownPodcastAgent())
}

func TestParseRejectsBadMethod(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nHost: x\r\n\r\n"
	_, err := Parse(bufio.NewReader(strings.NewReader(raw)))
	require.Error(t, err)
}

func TestParseRejectsHTTP2(t *testing.T) {
	raw := "GET / HTTP/2\r\nHost: x\r\n\r\n"
	_, err := Parse(bufio.NewReader(strings.NewReader(raw)))
	require.Error(t, err)
}

func TestParseRequiresHost(t *testing.T) {
	raw := "GET / HTTP/1.1\r\n\r\n"
	_, err := Parse(bufio.NewReader(strings.NewReader(raw)))
	require.Error(t, err)
}

func TestHeaderContinuationFolding(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nHost: x\r\nX-Long: first\r\n  second\r\n\r\n"
	req, err := Parse(bufio.NewReader(strings.NewReader(raw)))
	require.NoError(t, err)
	assert.Equal(t, "first second", req.Header("X-Long"))
}

func TestDerivePathStripsHostAndQuery(t *testing.T) {
	raw := "GET http://example.com/alice/stream?foo=bar HTTP/1.1\r\nHost: example.com\r\n\r\n"
	req, err := Parse(bufio.NewReader(strings.NewReader(raw)))
	require.NoError(t, err)
	assert.Equal(t, "/alice/stream", req.Path)
}

func TestDerivePathPercentDecodesSlashes(t *testing.T) {
	raw := "GET /alice%2Fstream HTTP/1.1\r\nHost: x\r\n\r\n"
	req, err := Parse(bufio.NewReader(strings.NewReader(raw)))
	require.NoError(t, err)
	assert.Equal(t, "/alice/stream", req.Path)
}
