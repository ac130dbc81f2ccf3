package httpadmin

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gcmaps/gcm-server-go/internal/database"
	redisclient "github.com/gcmaps/gcm-server-go/internal/redis"
)

const dependencyCheckTimeout = 2 * time.Second

// Counters exposes live in-process gauges for the stats endpoint.
type Counters struct {
	Connections func() int
	Sessions    func() int
	Subscribers func() int
}

// Server is the HTTP sidecar for operators: health and stats only, no
// domain operations. The domain surface is the socket protocol.
type Server struct {
	db       *database.DB
	redis    *redisclient.Client
	counters Counters
}

func New(db *database.DB, redis *redisclient.Client, counters Counters) *Server {
	return &Server{db: db, redis: redis, counters: counters}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Get("/health", s.health)
	r.Get("/stats", s.stats)
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), dependencyCheckTimeout)
	defer cancel()

	status := http.StatusOK
	checks := map[string]string{"database": "ok", "redis": "ok"}

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		checks["redis"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status":    statusWord(status),
		"checks":    checks,
		"timestamp": time.Now().UnixMilli(),
	})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"connections":     s.counters.Connections(),
		"activeSessions":  s.counters.Sessions(),
		"pushSubscribers": s.counters.Subscribers(),
		"timestamp":       time.Now().UnixMilli(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusWord(status int) string {
	if status == http.StatusOK {
		return "ok"
	}
	return "degraded"
}
