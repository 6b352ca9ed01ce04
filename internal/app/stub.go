package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/utafrali/productreview/internal/catalog/catalogstub"
	"github.com/utafrali/productreview/pkg/middleware"
)

// StubServer serves the seeded in-memory catalog over HTTP.
type StubServer struct {
	logger     *slog.Logger
	store      *catalogstub.Store
	httpServer *http.Server
}

// NewStubServer creates a catalog stub listening on addr, seeded relative
// to now.
func NewStubServer(addr string, now time.Time, logger *slog.Logger) *StubServer {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store := catalogstub.NewSeededStore(now)
	router := catalogstub.NewRouter(store, logger,
		catalogstub.WithMetrics(middleware.NewHTTPMetrics(reg, "catalog_stub")),
		catalogstub.WithMetricsEndpoint(reg),
	)

	return &StubServer{
		logger: logger,
		store:  store,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Store returns the backing catalog.
func (s *StubServer) Store() *catalogstub.Store { return s.store }

// Run listens on the configured address and serves until ctx is canceled.
func (s *StubServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully.
func (s *StubServer) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("starting catalog stub",
			slog.String("addr", ln.Addr().String()),
			slog.Int("products", s.store.Len()),
		)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown catalog stub: %w", err)
	}
	<-errCh
	s.logger.Info("catalog stub stopped")
	return nil
}
