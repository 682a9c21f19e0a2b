package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/safar/marketplace/internal/config"
	"github.com/safar/marketplace/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestTokens() *Tokens {
	return NewTokens(config.AuthConfig{Secret: "test-secret", TokenTTL: time.Hour, Issuer: "test"})
}

func TestIssueAndVerify(t *testing.T) {
	tokens := newTestTokens()
	user := &models.User{ID: 42, Email: "vendor@example.com", Role: models.RoleVendor}

	raw, err := tokens.Issue(user)
	require.NoError(t, err)

	claims, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "vendor@example.com", claims.Email)
	assert.Equal(t, models.RoleVendor, claims.Role)
}

func TestVerifyRejects(t *testing.T) {
	tokens := newTestTokens()
	user := &models.User{ID: 1, Email: "a@example.com", Role: models.RoleCustomer}

	t.Run("expired", func(t *testing.T) {
		expired := newTestTokens()
		expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		raw, err := expired.Issue(user)
		require.NoError(t, err)

		_, err = tokens.Verify(raw)
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokens(config.AuthConfig{Secret: "other", TokenTTL: time.Hour, Issuer: "test"})
		raw, err := other.Issue(user)
		require.NoError(t, err)

		_, err = tokens.Verify(raw)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Verify("not-a-token")
		assert.Error(t, err)
	})
}

func TestMiddleware(t *testing.T) {
	tokens := newTestTokens()
	raw, err := tokens.Issue(&models.User{ID: 7, Email: "c@example.com", Role: models.RoleCustomer})
	require.NoError(t, err)

	var got *Claims
	handler := tokens.Middleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		want   int64
	}{
		{"bearer", "Bearer " + raw, 7},
		{"bare token", raw, 7},
		{"missing", "", 0},
		{"invalid", "Bearer nope", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = nil
			req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if tt.want == 0 {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.UserID)
		})
	}
}

func TestPasswords(t *testing.T) {
	_, err := HashPassword("123")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	ok, err := CheckPassword(hash, "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong horse")
	require.NoError(t, err)
	assert.False(t, ok)
}
