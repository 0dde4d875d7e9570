package webserver

import (
	"context"
	"errors"
	"net"
	"time"

	"podrelay/internal/applog"
	"podrelay/internal/workerpool"
)

const (
	minWorkers  = 3
	maxWorkers  = 300
	idleTimeout = 30 * time.Second
)

// Server accepts TCP connections and submits each to a bounded worker pool
// (spec §4.7). Accept errors are logged and the loop continues; the
// listener itself is the only thing that can stop it.
type Server struct {
	Router *Router

	listener net.Listener
	pool     *workerpool.Pool
}

// Listen binds hostPort and returns a Server ready to Serve.
func Listen(hostPort string, router *Router) (*Server, error) {
	ln, err := net.Listen("tcp", hostPort)
	if err != nil {
		return nil, err
	}
	return &Server{
		Router:   router,
		listener: ln,
		pool:     workerpool.New(minWorkers, maxWorkers, idleTimeout),
	}, nil
}

// Addr returns the bound listener address, mainly for tests that bind an
// ephemeral port.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve runs the accept loop until ctx is canceled or the listener closes.
func (s *Server) Serve(ctx context.Context) error {
	logger := applog.FromContext(ctx)

	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			logger.Error().Err(err).Msg("accept failed")
			continue
		}
		s.pool.Submit(func() {
			s.handleConnection(ctx, conn)
		})
	}
}

// Close stops accepting new connections. Safe to call after ctx has already
// canceled Serve's own listener-close goroutine — a redundant close of an
// already-closed listener is not reported as an error.
func (s *Server) Close() error {
	s.pool.Close()
	if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
