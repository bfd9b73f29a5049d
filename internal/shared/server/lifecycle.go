package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"reclamala-backend/internal/shared/telemetry"
)

// ShutdownFunc releases a component once the HTTP server has stopped.
type ShutdownFunc func(ctx context.Context) error

// Server wraps http.Server with graceful shutdown.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration

	mu            sync.Mutex
	shutdownFuncs []ShutdownFunc
}

// NewServer builds a Server listening on addr.
func NewServer(handler http.Handler, addr string, readTimeout, writeTimeout, shutdownTimeout time.Duration) *Server {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      writeTimeout,
		},
		shutdownTimeout: shutdownTimeout,
	}
}

// OnShutdown registers fn to run after the HTTP server stops, last registered first.
func (s *Server) OnShutdown(name string, fn ShutdownFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdownFuncs = append(s.shutdownFuncs, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			telemetry.Error("shutdown.component.failed", map[string]any{"name": name, "err": err.Error()})
			return err
		}
		telemetry.Info("shutdown.component.stopped", map[string]any{"name": name})
		return nil
	})
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	serverErr := make(chan error, 1)
	go func() {
		telemetry.Info("server.starting", map[string]any{"addr": ln.Addr().String()})
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
		telemetry.Info("server.shutdown.signal", nil)
		return s.shutdown()
	}
}

func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.httpServer.SetKeepAlivesEnabled(false)
	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		telemetry.Error("server.shutdown.failed", map[string]any{"err": err.Error()})
		errs = append(errs, err)
	}

	s.mu.Lock()
	funcs := s.shutdownFuncs
	s.mu.Unlock()
	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	telemetry.Info("server.stopped", nil)
	return nil
}
