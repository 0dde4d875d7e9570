package webserver

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"strconv"

	"podrelay/internal/apperr"
	"podrelay/internal/applog"
	"podrelay/internal/httprequest"
	"podrelay/internal/httpresp"
	"podrelay/internal/metrics"
	"podrelay/internal/resources"
)

// handleConnection is the per-connection request worker (spec §4.7): parse
// one request, route it, and in all cases close the connection afterward
// (no keep-alive — every response carries Connection: close).
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	writer := httpresp.NewWriter(bufio.NewWriter(conn))

	req, err := httprequest.Parse(reader)
	if err != nil {
		s.logAndEmit(ctx, writer, nil, err)
		return
	}

	if err := s.Router.Dispatch(ctx, req, writer); err != nil {
		s.logAndEmit(ctx, writer, req, err)
		return
	}
	metrics.HTTPRequestsTotal.WithLabelValues(req.Path, strconv.Itoa(writer.StatusCode())).Inc()
}

// logAndEmit logs err at the level spec §4.7 step 4 specifies (HTTP errors
// below 500 at INFO, everything else at ERROR) and emits the matching error
// response. A failure while emitting that response is itself logged and
// swallowed, never propagated back to the caller.
func (s *Server) logAndEmit(ctx context.Context, w *httpresp.Writer, req *httprequest.Request, err error) {
	logger := applog.FromContext(ctx)

	status := http.StatusInternalServerError
	explanation := err.Error()
	if ae, ok := apperr.As(err); ok {
		status = ae.Status
		explanation = ae.Explanation
	}

	event := logger.Error()
	if status < 500 {
		event = logger.Info()
	}
	path := ""
	if req != nil {
		path = req.Path
	}
	event.Err(err).Int("status", status).Str("path", path).Msg("request failed")

	htmlBody, htmlErr := resources.ErrorHTML(status, http.StatusText(status), explanation)
	if htmlErr != nil {
		htmlBody = nil
	}

	isHead := req != nil && req.IsHead()
	if emitErr := w.Error(status, explanation, htmlBody, isHead); emitErr != nil {
		logger.Error().Err(emitErr).Msg("failed to emit error response")
	}
	metrics.HTTPRequestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
}
