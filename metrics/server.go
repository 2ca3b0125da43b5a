package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Endpoint is the path the server answers on.
const Endpoint = "/metrics"

const shutdownTimeout = 5 * time.Second

// Server serves the /metrics endpoint for one gatherer.
type Server struct {
	server *http.Server
	log    zerolog.Logger
}

// Handler returns the exposition handler for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// NewServer creates a server listening on addr and responding only to
// Endpoint.
func NewServer(log zerolog.Logger, addr string, g prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	mux.Handle(Endpoint, Handler(g))
	return &Server{
		server: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		log:    log.With().Str("component", "metrics.server").Logger(),
	}
}

// Run serves until ctx is done, then shuts the server down.
// A clean shutdown returns nil.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("address", s.server.Addr).Str("endpoint", Endpoint).Msg("metrics server started")
		errc <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(sctx); err != nil {
		s.log.Err(err).Msg("error shutting down metrics server")
		return err
	}
	s.log.Debug().Msg("metrics server shutdown")
	return nil
}
