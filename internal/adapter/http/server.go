package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/sales-feed-service/internal/dashboard"
	"github.com/couchcryptid/sales-feed-service/internal/domain"
	"github.com/couchcryptid/sales-feed-service/internal/snapshot"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SnapshotProvider returns the current feed snapshot.
type SnapshotProvider interface {
	Get(ctx context.Context) (snapshot.Snapshot, error)
	sharedobs.ReadinessChecker
}

// ViewBuilder derives dashboard views from a list of sales.
type ViewBuilder interface {
	Build(ctx context.Context, sales []domain.Sale, r dashboard.DateRange) dashboard.View
}

// Server exposes health, readiness, metrics, and optionally dashboard HTTP endpoints.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	snapshots  SnapshotProvider
	views      ViewBuilder
	loc        *time.Location
	logger     *slog.Logger
}

// NewOpsServer creates an HTTP server with only /healthz, /readyz, and /metrics.
func NewOpsServer(addr string, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		mux:    mux,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// NewServer creates an ops server plus the /api/v1 dashboard routes.
// Readiness follows the snapshot provider. Date query parameters are read in loc.
func NewServer(addr string, snapshots SnapshotProvider, views ViewBuilder, loc *time.Location, logger *slog.Logger) *Server {
	s := NewOpsServer(addr, snapshots, logger)
	s.snapshots = snapshots
	s.views = views
	s.loc = loc

	s.mux.HandleFunc("GET /api/v1/snapshot", s.handleSnapshot)
	s.mux.HandleFunc("GET /api/v1/dashboard", s.handleDashboard)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshots.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	rng, err := s.parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	snap, err := s.snapshots.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	view := s.views.Build(r.Context(), snap.Sales, rng)
	sharedobs.WriteJSON(w, http.StatusOK, dashboardResponse{LoadedAt: snap.LoadedAt, View: view})
}

type dashboardResponse struct {
	LoadedAt time.Time `json:"loaded_at"`
	dashboard.View
}

func (s *Server) parseRange(r *http.Request) (dashboard.DateRange, error) {
	var rng dashboard.DateRange
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{{"from", &rng.From}, {"to", &rng.To}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		t, err := time.ParseInLocation(dashboard.DateLayout, v, s.loc)
		if err != nil {
			return dashboard.DateRange{}, fmt.Errorf("invalid %s date %q: want %s", p.name, v, dashboard.DateLayout)
		}
		*p.dst = t
	}
	if !rng.From.IsZero() && !rng.To.IsZero() && rng.To.Before(rng.From) {
		return dashboard.DateRange{}, fmt.Errorf("from %s is after to %s", q.Get("from"), q.Get("to"))
	}
	return rng, nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
