// Package httpx assembles the HTTP surface: the GraphQL endpoint plus health
// and metrics.
package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/safar/marketplace/internal/auth"
	"github.com/safar/marketplace/internal/metrics"
	"go.uber.org/zap"
)

// Pinger reports whether a dependency is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	Schema         *graphql.Schema
	Tokens         *auth.Tokens
	DB             Pinger
	Registry       *prometheus.Registry
	Metrics        *metrics.HTTP
	Log            *zap.Logger
	RequestTimeout time.Duration
}

func NewRouter(opts Options) *chi.Mux {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	r.Use(requestLogger(opts.Log))
	r.Use(middleware.Recoverer)
	r.Use(instrument(opts.Metrics))
	r.Use(middleware.Timeout(timeout))

	r.Get("/healthz", health(opts.DB))
	r.Handle("/metrics", metrics.Handler(opts.Registry))

	r.Group(func(r chi.Router) {
		r.Use(opts.Tokens.Middleware(opts.Log))
		r.Method(http.MethodPost, "/graphql", &relay.Handler{Schema: opts.Schema})
	})

	return r
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status, body := http.StatusOK, map[string]string{"status": "ok"}
		if err := db.PingContext(ctx); err != nil {
			status, body = http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}
		}
		writeJSON(w, status, body)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
