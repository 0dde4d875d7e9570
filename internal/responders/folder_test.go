package responders

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podrelay/internal/fsresolve"
	"podrelay/internal/httpresp"
)

func newFolderResponder(t *testing.T, dir string) *Folder {
	t.Helper()
	resolver, err := fsresolve.New(dir)
	require.NoError(t, err)
	return &Folder{Resolver: resolver, PodcastXML: &PodcastXML{}}
}

func TestFolderRedirectsToFileWithoutTrailingSlash(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "alice"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice", "bonus.mp3"), []byte("x"), 0o644))

	folder := newFolderResponder(t, dir)
	req := parseTestRequest(t, "GET /alice/bonus.mp3/ HTTP/1.1\r\nHost: localhost\r\n\r\n")
	buf := &bytes.Buffer{}
	w := httpresp.NewWriter(bufio.NewWriter(buf))

	require.NoError(t, folder.Respond(context.Background(), req, w))
	out := buf.String()
	assert.Contains(t, out, "HTTP/1.1 301 Moved Permanently\r\n")
	assert.Contains(t, out, "Location: /alice/bonus.mp3\r\n")
}

func TestFolderRefusesListingExistingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "alice", "sub"), 0o755))

	folder := newFolderResponder(t, dir)
	req := parseTestRequest(t, "GET /alice/sub/ HTTP/1.1\r\nHost: localhost\r\n\r\n")
	buf := &bytes.Buffer{}
	w := httpresp.NewWriter(bufio.NewWriter(buf))

	err := folder.Respond(context.Background(), req, w)
	require.Error(t, err)
}

func TestFolderReturnsNotFoundForUnknownPath(t *testing.T) {
	dir := t.TempDir()
	folder := newFolderResponder(t, dir)
	req := parseTestRequest(t, "GET /alice/ghost/ HTTP/1.1\r\nHost: localhost\r\n\r\n")
	buf := &bytes.Buffer{}
	w := httpresp.NewWriter(bufio.NewWriter(buf))

	err := folder.Respond(context.Background(), req, w)
	require.Error(t, err)
}
