package responders

import (
	"bufio"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podrelay/internal/httpresp"
)

func TestFaviconServesIconBytes(t *testing.T) {
	req := parseTestRequest(t, "GET /favicon.ico HTTP/1.1\r\nHost: localhost\r\n\r\n")
	buf := &bytes.Buffer{}
	w := httpresp.NewWriter(bufio.NewWriter(buf))

	f := &Favicon{}
	require.NoError(t, f.Respond(context.Background(), req, w))

	out := buf.String()
	assert.Contains(t, out, "Content-Type: image/x-icon\r\n")
}
