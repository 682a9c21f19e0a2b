package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/safar/marketplace/internal/auth"
	"github.com/safar/marketplace/internal/config"
	"github.com/safar/marketplace/internal/metrics"
	"github.com/safar/marketplace/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type whoamiResolver struct{}

func (whoamiResolver) Whoami(ctx context.Context) string {
	if claims, ok := auth.FromContext(ctx); ok {
		return claims.Email
	}
	return "anonymous"
}

type fixture struct {
	router  http.Handler
	tokens  *auth.Tokens
	metrics *metrics.HTTP
}

func newFixture(t *testing.T, db Pinger) *fixture {
	t.Helper()

	reg := metrics.NewRegistry()
	m := metrics.NewHTTP(reg)
	tokens := auth.NewTokens(config.AuthConfig{Secret: "test-secret", TokenTTL: time.Hour, Issuer: "marketplace"})
	schema := graphql.MustParseSchema(`type Query { whoami: String! }`, &whoamiResolver{})

	return &fixture{
		router: NewRouter(Options{
			Schema:   schema,
			Tokens:   tokens,
			DB:       db,
			Registry: reg,
			Metrics:  m,
			Log:      zap.NewNop(),
		}),
		tokens:  tokens,
		metrics: m,
	}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		rec := newFixture(t, fakePinger{}).do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("database down", func(t *testing.T) {
		rec := newFixture(t, fakePinger{err: errors.New("connection refused")}).do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
	})
}

func TestGraphQLIdentity(t *testing.T) {
	f := newFixture(t, fakePinger{})
	query := `{"query":"{ whoami }"}`

	rec := f.do(httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(query)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"whoami":"anonymous"}}`, rec.Body.String())

	token, err := f.tokens.Issue(&models.User{ID: 7, Email: "vendor@example.com", Role: models.RoleVendor})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(query))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"whoami":"vendor@example.com"}}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(query))
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = f.do(req)
	assert.JSONEq(t, `{"data":{"whoami":"anonymous"}}`, rec.Body.String())
}

func TestGraphQLRejectsGet(t *testing.T) {
	rec := newFixture(t, fakePinger{}).do(httptest.NewRequest(http.MethodGet, "/graphql", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestMetrics(t *testing.T) {
	f := newFixture(t, fakePinger{})

	f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	f.do(httptest.NewRequest(http.MethodGet, "/nope/123", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.Requests.WithLabelValues(http.MethodGet, "/healthz", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Requests.WithLabelValues(http.MethodGet, "unmatched", "404")))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "marketplace_http_requests_total")
}
