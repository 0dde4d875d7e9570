// Package webserver implements components H (server) and I (per-connection
// request worker): a raw TCP accept loop over a bounded worker pool, and the
// routing table spec §4.3 defines on top of the parsed httprequest.Request.
package webserver

import (
	"context"
	"strings"

	"podrelay/internal/httprequest"
	"podrelay/internal/httpresp"
	"podrelay/internal/responders"
)

// Router dispatches a parsed request to the right responder by the rules in
// spec §4.3: normalize to lowercase for the decision, but pass the original
// request through untouched.
type Router struct {
	Banner     *responders.Banner
	Favicon    *responders.Favicon
	Folder     *responders.Folder
	File       *responders.File
	PodcastXML *responders.PodcastXML
}

func (rt *Router) route(path string) responders.Responder {
	lower := strings.ToLower(path)
	switch {
	case lower == "/":
		return rt.Banner
	case strings.HasSuffix(lower, ".xml"):
		return rt.PodcastXML
	case strings.HasSuffix(lower, "/favicon.ico"):
		return rt.Favicon
	case strings.HasSuffix(lower, "/"):
		return rt.Folder
	default:
		return rt.File
	}
}

// Dispatch picks and runs the responder for req.
func (rt *Router) Dispatch(ctx context.Context, req *httprequest.Request, w *httpresp.Writer) error {
	return rt.route(req.Path).Respond(ctx, req, w)
}
