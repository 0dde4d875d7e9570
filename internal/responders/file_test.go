package responders

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podrelay/internal/fsresolve"
	"podrelay/internal/httpresp"
)

type fakeFreshener struct{ touched []string }

func (f *fakeFreshener) Touch(path string) error {
	f.touched = append(f.touched, path)
	return nil
}
func (f *fakeFreshener) AddWatch(string, string) error      { return nil }
func (f *fakeFreshener) LastUsed(string) (time.Time, error) { return time.Time{}, nil }
func (f *fakeFreshener) Watches(string) ([]string, error)   { return nil, nil }

func newFileResponder(t *testing.T, dir string) (*File, string) {
	t.Helper()
	resolver, err := fsresolve.New(dir)
	require.NoError(t, err)
	return &File{Resolver: resolver, Freshener: &fakeFreshener{}, PodcastXML: &PodcastXML{}}, dir
}

func TestFileServesWholeFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "alice"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice", "test.mp3"), []byte("audio bytes"), 0o644))

	f, _ := newFileResponder(t, dir)
	req := parseTestRequest(t, "GET /alice/test.mp3 HTTP/1.1\r\nHost: localhost\r\n\r\n")
	buf := &bytes.Buffer{}
	w := httpresp.NewWriter(bufio.NewWriter(buf))

	require.NoError(t, f.Respond(context.Background(), req, w))
	out := buf.String()
	assert.Contains(t, out, "HTTP/1.1 200 OK\r\n")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("audio bytes")))
}

func TestFileServesPartialRange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "alice"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice", "test.mp3"), []byte("0123456789"), 0o644))

	f, _ := newFileResponder(t, dir)
	req := parseTestRequest(t, "GET /alice/test.mp3 HTTP/1.1\r\nHost: localhost\r\nRange: bytes=2-4\r\n\r\n")
	buf := &bytes.Buffer{}
	w := httpresp.NewWriter(bufio.NewWriter(buf))

	require.NoError(t, f.Respond(context.Background(), req, w))
	out := buf.String()
	assert.Contains(t, out, "HTTP/1.1 206 Partial Content\r\n")
	assert.Contains(t, out, "Content-Range: bytes 2-4/10\r\n")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("234")))
}

func TestFileMissingReturnsNotFoundError(t *testing.T) {
	dir := t.TempDir()
	f, _ := newFileResponder(t, dir)
	req := parseTestRequest(t, "GET /alice/missing.mp3 HTTP/1.1\r\nHost: localhost\r\n\r\n")
	buf := &bytes.Buffer{}
	w := httpresp.NewWriter(bufio.NewWriter(buf))

	err := f.Respond(context.Background(), req, w)
	require.Error(t, err)
}

func TestFileRedirectsDirectoryWithTrailingSlash(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "alice", "sub"), 0o755))

	f, _ := newFileResponder(t, dir)
	req := parseTestRequest(t, "GET /alice/sub HTTP/1.1\r\nHost: localhost\r\n\r\n")
	buf := &bytes.Buffer{}
	w := httpresp.NewWriter(bufio.NewWriter(buf))

	require.NoError(t, f.Respond(context.Background(), req, w))
	out := buf.String()
	assert.Contains(t, out, "HTTP/1.1 301 Moved Permanently\r\n")
	assert.Contains(t, out, "Location: /alice/sub/\r\n")
}
