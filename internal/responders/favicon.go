package responders

import (
	"context"

	"podrelay/internal/httprequest"
	"podrelay/internal/httpresp"
	"podrelay/internal/resources"
)

// Favicon serves the bundled icon at any path ending "/favicon.ico" (spec
// §4.3).
type Favicon struct{}

func (f *Favicon) Respond(ctx context.Context, req *httprequest.Request, w *httpresp.Writer) error {
	body, lastModified, err := resources.Favicon()
	if err != nil {
		return err
	}
	if notMod, perr := httpresp.NotModifiedSince(req.Header("If-Modified-Since"), lastModified); perr == nil && notMod {
		return w.NotModified()
	}
	if err := w.WriteOK(lastModified, "image/x-icon", int64(len(body)), nil); err != nil {
		return err
	}
	if req.IsHead() {
		return w.Flush()
	}
	return w.WriteBytes(body)
}
