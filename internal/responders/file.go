package responders

import (
	"context"
	"errors"
	"io"
	"mime"
	"os"
	"path/filepath"
	"syscall"

	"podrelay/internal/apperr"
	"podrelay/internal/applog"
	"podrelay/internal/freshen"
	"podrelay/internal/fsresolve"
	"podrelay/internal/httprequest"
	"podrelay/internal/httpresp"
)

const streamBufferSize = 64 * 1024

// File serves a single file beneath the music directory (spec §4.3).
type File struct {
	Resolver   *fsresolve.Resolver
	Freshener  freshen.Freshener
	PodcastXML *PodcastXML
}

func (f *File) Respond(ctx context.Context, req *httprequest.Request, w *httpresp.Writer) error {
	if ms, ok := shapeToMusicSet(req.Path); ok {
		return f.PodcastXML.respondToMusicSet(ctx, req, w, ms)
	}

	localPath, withinRoot, err := f.Resolver.GetLocalPath(req.Path)
	if err != nil {
		return err
	}
	if !withinRoot {
		return apperr.Forbidden("path escapes music directory")
	}

	info, statErr := os.Stat(localPath)
	if statErr == nil && info.IsDir() {
		return w.MovedPermanently(req.Path+"/", req.IsHead())
	}

	if statErr == nil {
		_ = f.Freshener.Touch(localPath)
	}
	if os.IsNotExist(statErr) {
		return apperr.NotFound("file not found")
	}
	if statErr != nil {
		return apperr.LocalIO("failed to stat file", statErr)
	}

	if notMod, perr := httpresp.NotModifiedSince(req.Header("If-Modified-Since"), info.ModTime()); perr == nil && notMod {
		return w.NotModified()
	}

	file, err := os.Open(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			return apperr.NotFound("file not found")
		}
		return apperr.LocalIO("failed to open file", err)
	}
	defer file.Close()

	return f.serve(ctx, req, w, file, info, localPath)
}

func (f *File) serve(ctx context.Context, req *httprequest.Request, w *httpresp.Writer, file *os.File, info os.FileInfo, localPath string) error {
	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	logicalRange, err := httprequest.ParseRange(req.Header("Range"))
	if err != nil {
		return err
	}
	byteRange, err := httprequest.Translate(logicalRange, info.Size())
	if err != nil {
		return err
	}

	var body io.Reader
	if byteRange != nil {
		if err := w.WritePartial(info.ModTime(), contentType, byteRange.Start, byteRange.End, info.Size()); err != nil {
			return err
		}
		if req.IsHead() {
			return w.Flush()
		}
		if _, err := file.Seek(byteRange.Start, io.SeekStart); err != nil {
			return apperr.LocalIO("failed to seek file", err)
		}
		body = io.LimitReader(file, byteRange.End-byteRange.Start+1)
	} else {
		if err := w.WriteOK(info.ModTime(), contentType, info.Size(), nil); err != nil {
			return err
		}
		if req.IsHead() {
			return w.Flush()
		}
		body = file
	}

	_, err = w.WriteBodyBuffered(body, streamBufferSize)
	if err != nil && isBrokenPipeFromKnownAgent(err, req) {
		applog.FromContext(ctx).Info().Err(err).Str("path", localPath).Msg("client disconnected mid-stream")
		return nil
	}
	return err
}

// isBrokenPipeFromKnownAgent reports whether err looks like a client hangup
// (broken pipe/connection reset) from a User-Agent known to abandon
// connections mid-stream in benign ways (spec §4.3 step 7).
func isBrokenPipeFromKnownAgent(err error, req *httprequest.Request) bool {
	if !req.IsFromKnownPodcastAgent() {
		return false
	}
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}
