package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/sirupsen/logrus"
)

type Server struct {
	addr    string
	handler http.Handler
	log     *logrus.Entry

	// ready receives the bound address once the listener is up.
	ready chan net.Addr
}

func New(logger *logrus.Logger, addr string, handler http.Handler) *Server {
	return &Server{
		addr:    addr,
		handler: handler,
		log:     logger.WithField("component", "http_server"),
		ready:   make(chan net.Addr, 1),
	}
}

// Run binds the listener and serves until ctx is done. Shutdown closes the
// server immediately; in-flight requests are not drained. A nil error means
// the server stopped because ctx ended.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}

	srv := &http.Server{Handler: s.handler}
	s.log.WithField("addr", ln.Addr().String()).Info("Starting HTTP server")
	s.ready <- ln.Addr()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		s.log.Info("Stopping HTTP server")
		if err := srv.Close(); err != nil {
			s.log.WithError(err).Warn("HTTP server close error")
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	}
}

// Ready yields the listener address after Run has bound it.
func (s *Server) Ready() <-chan net.Addr {
	return s.ready
}
