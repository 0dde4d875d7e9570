package responders

import (
	"context"

	"podrelay/internal/httprequest"
	"podrelay/internal/httpresp"
	"podrelay/internal/resources"
)

// Banner serves the "/" landing page (spec §4.3).
type Banner struct {
	Version string
}

func (b *Banner) Respond(ctx context.Context, req *httprequest.Request, w *httpresp.Writer) error {
	body, lastModified, err := resources.Banner(b.Version)
	if err != nil {
		return err
	}
	if notMod, perr := httpresp.NotModifiedSince(req.Header("If-Modified-Since"), lastModified); perr == nil && notMod {
		return w.NotModified()
	}
	if err := w.WriteOK(lastModified, "text/html; charset=UTF-8", int64(len(body)), [][2]string{
		{"Cache-Control", "no-cache"},
	}); err != nil {
		return err
	}
	if req.IsHead() {
		return w.Flush()
	}
	return w.WriteBytes(body)
}
