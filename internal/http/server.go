// Package http exposes the REST API: login by name, profile and
// awareness persistence, monthly budget upserts, totals snapshots and
// keystroke logs.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/elishgi/moneyPlusMinus/internal/cache"
	"github.com/elishgi/moneyPlusMinus/internal/metrics"
	"github.com/elishgi/moneyPlusMinus/internal/middleware/ratelimit"
	"github.com/elishgi/moneyPlusMinus/internal/middleware/security"
	"github.com/elishgi/moneyPlusMinus/internal/middleware/trace"
	"github.com/elishgi/moneyPlusMinus/internal/storage"
)

// Store is the persistence surface the handlers need.
type Store interface {
	LoginByName(ctx context.Context, name string) (storage.UserProfile, error)
	GetProfile(ctx context.Context, userID string) (storage.UserProfile, error)
	SaveAwareness(ctx context.Context, userID string, data json.RawMessage, completed bool) error
	UpsertBudget(ctx context.Context, userID string, budget storage.BudgetRecord) error
	AppendSnapshot(ctx context.Context, s storage.Snapshot) (storage.Snapshot, error)
	AppendKeystrokes(ctx context.Context, log storage.KeystrokeLog) (storage.KeystrokeLog, error)
	ListKeystrokes(ctx context.Context, sessionID string) ([]storage.KeystrokeLog, error)
}

// SnapshotPublisher notifies the export worker about a new snapshot.
type SnapshotPublisher interface {
	PublishSnapshotExport(ctx context.Context, snapshotID string) error
}

// Options tunes optional server collaborators.
type Options struct {
	// Publisher may be nil; snapshots then wait for the worker sweep.
	Publisher SnapshotPublisher
	// AllowedOrigins for CORS; empty allows every origin.
	AllowedOrigins []string
	Metrics        *metrics.Metrics
}

// Server wires the REST handlers, middleware and caches around an
// embedded http.Server.
type Server struct {
	http.Server
	store        Store
	publisher    SnapshotPublisher
	metrics      *metrics.Metrics
	rateLimiter  *ratelimit.Limiter
	profileCache *cache.Cache[storage.UserProfile]
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a
// ready-to-run server.
func NewServer(addr string, store Store, opts Options) *Server {
	s := &Server{
		store:        store,
		publisher:    opts.Publisher,
		metrics:      opts.Metrics,
		rateLimiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		profileCache: cache.New[storage.UserProfile](5 * time.Minute),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/users/{userId}", s.handleGetProfile)
	mux.HandleFunc("PUT /api/users/{userId}/awareness", s.handleUpdateAwareness)
	mux.HandleFunc("PUT /api/users/{userId}/budgets", s.handleSaveBudget)
	mux.HandleFunc("POST /api/budgets", s.handleCreateSnapshot)
	mux.HandleFunc("POST /api/keystrokes", s.handleSaveKeystrokes)
	mux.HandleFunc("GET /api/keystrokes/{sessionId}", s.handleGetKeystrokes)
	mux.HandleFunc("GET /api/health", handleHealth)
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = s.writeLimit(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = security.CORS(opts.AllowedOrigins)(handler)
	handler = trace.NewMiddleware(opts.Metrics).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// writeLimit applies the per-client limiter to mutating methods only.
func (s *Server) writeLimit(next http.Handler) http.Handler {
	limited := s.rateLimiter.Middleware(trace.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		if s.metrics != nil {
			s.metrics.RateLimitedTotal.Inc()
		}
		w.Header().Set("Retry-After", "60")
		writeMessage(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			limited.ServeHTTP(w, r)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// Shutdown stops the server and its background collaborators.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{"ok"})
}
