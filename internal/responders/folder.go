package responders

import (
	"context"
	"os"
	"strings"

	"podrelay/internal/apperr"
	"podrelay/internal/fsresolve"
	"podrelay/internal/httprequest"
	"podrelay/internal/httpresp"
)

// Folder handles any path ending in "/" (spec §4.3): delegate to the
// podcast responder if the shape matches, else redirect to the bare file if
// one exists, else refuse to list the directory.
type Folder struct {
	Resolver   *fsresolve.Resolver
	PodcastXML *PodcastXML
}

func (f *Folder) Respond(ctx context.Context, req *httprequest.Request, w *httpresp.Writer) error {
	if ms, ok := shapeToMusicSet(req.Path); ok {
		return f.PodcastXML.respondToMusicSet(ctx, req, w, ms)
	}

	trimmed := strings.TrimSuffix(req.Path, "/")
	localPath, withinRoot, err := f.Resolver.GetLocalPath(trimmed)
	if err != nil {
		return err
	}
	if !withinRoot {
		return apperr.Forbidden("path escapes music directory")
	}

	if info, statErr := os.Stat(localPath); statErr == nil && !info.IsDir() {
		return w.MovedPermanently(trimmed, req.IsHead())
	}
	if _, statErr := os.Stat(localPath); statErr == nil {
		return apperr.Forbidden("directory listing is not available")
	}
	return apperr.NotFound("not found")
}
