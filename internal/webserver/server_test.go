package webserver

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podrelay/internal/fsresolve"
	"podrelay/internal/responders"
)

func TestServeRespondsToBannerRequest(t *testing.T) {
	router := &Router{
		Banner:  &responders.Banner{Version: "1.0"},
		Favicon: &responders.Favicon{},
	}
	srv, err := Listen("127.0.0.1:0", router)
	require.NoError(t, err)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Serve(ctx) }()

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("GET / HTTP/1.1\r\nHost: localhost\r\n\r\n"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "close", resp.Header.Get("Connection"))
}

func TestServeRespondsWithErrorForMissingFile(t *testing.T) {
	resolver, err := fsresolve.New(t.TempDir())
	require.NoError(t, err)

	router := &Router{
		Banner:  &responders.Banner{Version: "1.0"},
		Favicon: &responders.Favicon{},
		File:    &responders.File{Resolver: resolver, Freshener: noopFreshener{}},
	}
	srv, err := Listen("127.0.0.1:0", router)
	require.NoError(t, err)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Serve(ctx) }()

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("GET /alice/missing.mp3 HTTP/1.1\r\nHost: localhost\r\n\r\n"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type noopFreshener struct{}

func (noopFreshener) Touch(string) error                 { return nil }
func (noopFreshener) AddWatch(string, string) error       { return nil }
func (noopFreshener) LastUsed(string) (time.Time, error) { return time.Time{}, nil }
func (noopFreshener) Watches(string) ([]string, error)   { return nil, nil }
